package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectClient is the slice of the minio client the blob store uses,
// narrowed so tests can substitute a fake.
type ObjectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

const (
	defaultContentType = "application/octet-stream"
	urlExpiry          = 7 * 24 * time.Hour
)

// BlobStore writes photo blobs to an S3-compatible bucket and resolves
// presigned retrieval URLs for them.
type BlobStore struct {
	bucket string
	client ObjectClient
}

// NewBlobStore connects to the S3 endpoint and returns a store bound to the
// given bucket.
func NewBlobStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*BlobStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &BlobStore{bucket: bucket, client: client}, nil
}

// NewBlobStoreWithClient wires an existing client, used by tests.
func NewBlobStoreWithClient(client ObjectClient, bucket string) *BlobStore {
	return &BlobStore{bucket: bucket, client: client}
}

// Put uploads an object under key.
func (b *BlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := b.client.PutObject(ctx, b.bucket, key, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// URL returns a presigned GET URL for key.
func (b *BlobStore) URL(ctx context.Context, key string) (string, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition",
		fmt.Sprintf("inline; filename=%q", filepath.Base(key)))
	u, err := b.client.PresignedGetObject(ctx, b.bucket, key, urlExpiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}
