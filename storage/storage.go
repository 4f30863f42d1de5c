package storage

import (
	"fmt"
	"io"
	"log"

	"gorm.io/gorm"
)

type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Delete(path string) error
	GetFreeSpace() uint64
	GetBucket() *Bucket
}

type Storage struct {
	Bucket Bucket
}

func (s *Storage) GetBucket() *Bucket {
	return &s.Bucket
}

var (
	cachedStorage []StorageAPI
)

// Init loads all buckets and creates the default disk bucket if none exist yet
func Init(tx *gorm.DB, defaultBucketDir string) {
	var buckets []Bucket
	err := tx.Find(&buckets).Error
	if err != nil {
		panic(err)
	}
	if len(buckets) == 0 && defaultBucketDir != "" {
		bucket := Bucket{
			Name:        "default",
			StorageType: StorageTypeFile,
			Path:        defaultBucketDir,
		}
		if err = bucket.Create(tx); err != nil {
			panic(err)
		}
		buckets = append(buckets, bucket)
	}
	log.Printf("Storage Buckets found: %d\n", len(buckets))
	cachedStorage = []StorageAPI{}
	for i := range buckets {
		storage, err := NewStorage(&buckets[i])
		if err != nil {
			panic(err)
		}
		cachedStorage = append(cachedStorage, storage)
	}
}

// Register adds an already constructed storage (used by tests)
func Register(s StorageAPI) {
	cachedStorage = append(cachedStorage, s)
}

func NewStorage(bucket *Bucket) (StorageAPI, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		return NewS3Storage(bucket), nil
	}
	return nil, fmt.Errorf("storage type unavailable for Bucket %d", bucket.ID)
}

func StorageFrom(bucketID uint64) StorageAPI {
	for _, s := range cachedStorage {
		if s.GetBucket().ID == bucketID {
			return s
		}
	}
	return nil
}

// GetDefaultStorage prefers local disk buckets
func GetDefaultStorage() StorageAPI {
	for _, s := range cachedStorage {
		if s.GetBucket().StorageType == StorageTypeFile {
			return s
		}
	}
	for _, s := range cachedStorage {
		return s
	}
	return nil
}

func Buckets() []*Bucket {
	result := make([]*Bucket, 0, len(cachedStorage))
	for _, s := range cachedStorage {
		result = append(result, s.GetBucket())
	}
	return result
}
