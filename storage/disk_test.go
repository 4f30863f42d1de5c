package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorage_SaveLoadDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStorage(&Bucket{ID: 1, Path: dir})

	n, err := s.Save("album/3/10.jpg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.FileExists(t, filepath.Join(dir, "album", "3", "10.jpg"))

	var buf bytes.Buffer
	_, err = s.Load("album/3/10.jpg", &buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", buf.String())

	require.NoError(t, s.Delete("album/3/10.jpg"))
	_, err = s.Load("album/3/10.jpg", &buf)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStorage_StaysInsideBucket(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStorage(&Bucket{ID: 1, Path: dir}).(*DiskStorage)
	assert.Equal(t, filepath.Join(dir, "etc", "passwd"), s.getFullPath("../../etc/passwd"))
}

func TestStorageFrom(t *testing.T) {
	cachedStorage = nil
	assert.Nil(t, GetDefaultStorage())

	Register(NewS3Storage(&Bucket{ID: 5, StorageType: StorageTypeS3, Name: "remote", Region: "eu-central-1"}))
	Register(NewDiskStorage(&Bucket{ID: 6, StorageType: StorageTypeFile, Path: t.TempDir()}))

	assert.Equal(t, uint64(6), GetDefaultStorage().GetBucket().ID)
	assert.Equal(t, uint64(5), StorageFrom(5).GetBucket().ID)
	assert.Nil(t, StorageFrom(99))
	assert.Len(t, Buckets(), 2)
}

func TestBucket_GetRemotePath(t *testing.T) {
	assert.Equal(t, "album/1/2.jpg", (&Bucket{}).GetRemotePath("album/1/2.jpg"))
	assert.Equal(t, "studio/album/1/2.jpg", (&Bucket{Path: "/studio/"}).GetRemotePath("album/1/2.jpg"))
}
