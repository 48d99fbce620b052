package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "static/", 1024)
	require.NoError(t, err)
	assert.Equal(t, "/static", store.Prefix())

	url, err := store.Save(context.Background(), "photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/static/photo.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	// identical names overwrite
	_, err = store.Save(context.Background(), "photo.png", strings.NewReader("second"))
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalStoreUsesBaseName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/static", 0)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "../../etc/my receipt.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/static/my%20receipt.jpg", url)
	assert.FileExists(t, filepath.Join(dir, "my receipt.jpg"))

	url, err = store.Save(context.Background(), `C:\Users\me\scan.jpg`, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/static/scan.jpg", url)

	for _, bad := range []string{"", "..", "/", "dir/.."} {
		_, err := store.Save(context.Background(), bad, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestLocalStoreTooLarge(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/static", 8)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.txt", strings.NewReader("small"))
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "a.txt", bytes.NewReader(make([]byte, 9)))
	assert.ErrorIs(t, err, ErrTooLarge)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "small", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// exactly at the cap is accepted
	_, err = store.Save(context.Background(), "b.txt", bytes.NewReader(make([]byte, 8)))
	assert.NoError(t, err)
}

func TestS3ObjectURL(t *testing.T) {
	aws := &S3Store{opts: S3Options{Bucket: "tracker", Region: "eu-west-1", KeyPrefix: "/uploads/"}}
	assert.Equal(t, "https://tracker.s3.eu-west-1.amazonaws.com/uploads/a%20b.png", aws.objectURL(aws.objectKey("a b.png")))

	minio := &S3Store{opts: S3Options{Bucket: "tracker", Endpoint: "http://localhost:9000/"}}
	assert.Equal(t, "http://localhost:9000/tracker/x.png", minio.objectURL(minio.objectKey("x.png")))

	cdn := &S3Store{opts: S3Options{Bucket: "tracker", Endpoint: "http://localhost:9000", PublicBaseURL: "https://cdn.example.com/"}}
	assert.Equal(t, "https://cdn.example.com/x.png", cdn.objectURL("x.png"))
}
