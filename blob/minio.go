package blob

import (
	"context"
	"io"
	"strings"

	minio "github.com/minio/minio-go/v7"
)

// MinIOUploader stores attachments in one bucket and joins the configured
// public base URL to build durable links
type MinIOUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOUploader wraps an open minio client
func NewMinIOUploader(client *minio.Client, bucket string, publicURL string) *MinIOUploader {
	return &MinIOUploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload puts the object and returns its public URL
func (u *MinIOUploader) Upload(ctx context.Context, path string, data io.Reader, size int64, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, u.bucket, path, data, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return "", err
	}
	return u.publicURL + "/" + u.bucket + "/" + path, nil
}
