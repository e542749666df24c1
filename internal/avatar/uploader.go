// Package avatar provides S3-compatible storage for user avatar images.
// When storage is not configured (empty bucket), the NoopUploader is used
// and avatar uploads are rejected with ErrNotConfigured.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/praxisapp/praxis/internal/config"
)

// ErrNotConfigured is returned when avatar storage is not configured.
var ErrNotConfigured = errors.New("avatar storage not configured")

// Uploader stores avatar images and returns their public URL.
type Uploader interface {
	// Upload stores the avatar bytes for the given user and returns the
	// URL the stored object is reachable at.
	Upload(ctx context.Context, userID string, contentType string, body io.Reader, size int64) (string, error)
}

// s3Client defines the minimal minio.Client operations used by S3Uploader.
// This interface enables testing with mock implementations.
type s3Client interface {
	PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) error
	EndpointURL() string
}

// minioClientWrapper wraps *minio.Client to satisfy the s3Client interface.
type minioClientWrapper struct {
	client *minio.Client
}

func (w *minioClientWrapper) PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := w.client.PutObject(ctx, bucket, objectName, reader, size, opts)
	return err
}

func (w *minioClientWrapper) EndpointURL() string {
	return w.client.EndpointURL().String()
}

// S3Uploader stores avatars in S3-compatible storage.
type S3Uploader struct {
	client s3Client
	bucket string
}

// Upload stores the avatar under a per-user key and returns its URL.
func (u *S3Uploader) Upload(ctx context.Context, userID string, contentType string, body io.Reader, size int64) (string, error) {
	key := objectKey(userID, contentType)
	if err := u.client.PutObject(ctx, u.bucket, key, body, size, contentType); err != nil {
		return "", fmt.Errorf("upload avatar to S3: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", u.client.EndpointURL(), u.bucket, key), nil
}

// objectKey builds the storage key for a user's avatar. One object per
// user; re-uploads overwrite.
func objectKey(userID, contentType string) string {
	ext := ".png"
	if contentType == "image/jpeg" {
		ext = ".jpg"
	}
	return "avatars/" + userID + ext
}

// NoopUploader is used when avatar storage is not configured.
type NoopUploader struct{}

// Upload returns ErrNotConfigured when storage is not configured.
func (u *NoopUploader) Upload(ctx context.Context, userID string, contentType string, body io.Reader, size int64) (string, error) {
	return "", ErrNotConfigured
}

// NewUploader creates the appropriate Uploader based on configuration.
// Returns NoopUploader when bucket is empty, S3Uploader otherwise.
func NewUploader(cfg config.AvatarConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return &NoopUploader{}, nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	return &S3Uploader{
		client: &minioClientWrapper{client: client},
		bucket: cfg.Bucket,
	}, nil
}
