package handlers

import (
	"log"
	"net/http"
	"strings"
	"studio/db"
	"studio/models"
	"studio/storage"

	"github.com/gin-gonic/gin"
)

type BucketSaveRequest struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name" binding:"required,max=200"`
	StorageType storage.StorageType `json:"storage_type"`
	Path        string              `json:"path"`
	Endpoint    string              `json:"endpoint"`
	Region      string              `json:"region"`
	S3Key       string              `json:"s3_key"`
	S3Secret    string              `json:"s3_secret"`
	SSE         string              `json:"sse_encryption"`
}

type BucketInfo struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	StorageType storage.StorageType `json:"storage_type"`
	Path        string              `json:"path"`
	Endpoint    string              `json:"endpoint"`
	Region      string              `json:"region"`
	FreeSpace   uint64              `json:"free_space"`
}

func hasWriteAccess(bucket *storage.Bucket) error {
	s, err := storage.NewStorage(bucket)
	if err != nil {
		return err
	}
	testPath := "tmp/path"
	if _, err = s.Save(testPath, strings.NewReader("some-content")); err != nil {
		log.Printf("Cannot save to bucket: %s", bucket.Name)
		return err
	}
	if err = s.Delete(testPath); err != nil {
		log.Printf("Cannot delete from bucket: %s", bucket.Name)
		return err
	}
	return nil
}

func cleanupPath(in *storage.Bucket) {
	for strings.Contains(in.Path, "..") {
		in.Path = strings.ReplaceAll(in.Path, "..", "")
	}
	for strings.Contains(in.Path, "//") {
		in.Path = strings.ReplaceAll(in.Path, "//", "/")
	}
}

func BucketSave(c *gin.Context, user *models.User) {
	r := BucketSaveRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	bucket := storage.Bucket{
		ID:            r.ID,
		Name:          r.Name,
		StorageType:   r.StorageType,
		Path:          r.Path,
		Endpoint:      r.Endpoint,
		Region:        r.Region,
		SSEEncryption: r.SSE,
	}
	cleanupPath(&bucket)

	if bucket.StorageType == storage.StorageTypeFile {
		if bucket.Path == "" {
			c.JSON(http.StatusBadRequest, Response{"Empty bucket path"})
			return
		}
		if bucket.Path[0] != '/' {
			c.JSON(http.StatusBadRequest, Response{"Path must be absolute and start with / (slash)"})
			return
		}
	} else if bucket.StorageType == storage.StorageTypeS3 {
		if r.S3Key == "" || r.S3Secret == "" {
			c.JSON(http.StatusBadRequest, Response{"'S3 Key' and 'S3 Secret' must be provided"})
			return
		}
		bucket.AuthDetails = r.S3Key + ":" + r.S3Secret
		if bucket.Region == "" {
			bucket.Region = "us-east-1"
		}
	} else {
		c.JSON(http.StatusBadRequest, Response{"'storage_type' must be 0 (file) or 1 (s3)"})
		return
	}
	if err := hasWriteAccess(&bucket); err != nil {
		c.JSON(http.StatusForbidden, Response{"No write access to bucket: " + err.Error()})
		return
	}
	var err error
	if bucket.ID == 0 {
		err = bucket.Create(db.Instance)
	} else {
		err = db.Instance.Save(&bucket).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{err.Error()})
		return
	}
	// Re-initialize storage
	storage.Init(db.Instance, "")
	c.JSON(http.StatusOK, OKResponse)
}

// BucketList never returns credentials
func BucketList(c *gin.Context, user *models.User) {
	result := []BucketInfo{}
	for _, b := range storage.Buckets() {
		info := BucketInfo{
			ID:          b.ID,
			Name:        b.Name,
			StorageType: b.StorageType,
			Path:        b.Path,
			Endpoint:    b.Endpoint,
			Region:      b.Region,
		}
		if s := storage.StorageFrom(b.ID); s != nil {
			info.FreeSpace = s.GetFreeSpace()
		}
		result = append(result, info)
	}
	c.JSON(http.StatusOK, result)
}
