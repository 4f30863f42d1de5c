package storage

import (
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"gorm.io/gorm"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

const (
	StorageLocationAlbums    = "/album"
	StorageLocationWatermark = "/watermark"
)

type Bucket struct {
	ID            uint64 `gorm:"primaryKey"`
	CreatedAt     int
	UpdatedAt     int
	Name          string `gorm:"type:varchar(200)"`
	StorageType   StorageType
	Path          string // Path on a drive or a prefix in a S3 bucket
	Endpoint      string `gorm:"type:varchar(300)"` // S3 only, e.g. https://s3.eu-central-1.amazonaws.com
	Region        string `gorm:"type:varchar(50)"`
	AuthDetails   string // Authentication details. In case of S3 bucket - "key:secret"
	SSEEncryption string `gorm:"type:varchar(20)"`
}

// Create persists the bucket and pre-creates locations on disk
func (b *Bucket) Create(tx *gorm.DB) error {
	err := tx.Create(b).Error
	if err != nil {
		return err
	}
	if b.StorageType == StorageTypeFile {
		if err = os.MkdirAll(b.Path+StorageLocationAlbums, 0777); err != nil {
			return err
		}
		if err = os.MkdirAll(b.Path+StorageLocationWatermark, 0777); err != nil {
			return err
		}
	}
	return nil
}

// GetRemotePath prefixes path with the bucket prefix (S3)
func (b *Bucket) GetRemotePath(path string) string {
	prefix := strings.Trim(b.Path, "/")
	if prefix == "" {
		return path
	}
	return prefix + "/" + path
}

func (b *Bucket) CreateSVC() *s3.S3 {
	key, secret, _ := strings.Cut(b.AuthDetails, ":")
	cfg := aws.NewConfig().
		WithRegion(b.Region).
		WithCredentials(credentials.NewStaticCredentials(key, secret, ""))
	if b.Endpoint != "" {
		cfg = cfg.WithEndpoint(b.Endpoint).WithS3ForcePathStyle(true)
	}
	return s3.New(session.Must(session.NewSession(cfg)))
}
