// Package posters stores suggestion artwork in MinIO-compatible object
// storage. Suggestions hold only the object key; display goes through
// short-lived presigned URLs.
package posters

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Store struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
}

func New(endpoint, accessKey, secretKey, bucket string, useSSL bool, urlTTL time.Duration) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Store{client: client, bucket: bucket, urlTTL: urlTTL}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads poster bytes for a suggestion and returns the object key.
func (s *Store) Put(ctx context.Context, suggestionID, contentType string, body io.Reader, size int64) (string, error) {
	key := "posters/" + suggestionID
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put poster %s: %w", key, err)
	}
	return key, nil
}

// PresignedGet returns a time-limited display URL for a stored poster.
func (s *Store) PresignedGet(ctx context.Context, key string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlTTL, nil)
	if err != nil {
		return "", fmt.Errorf("presign poster %s: %w", key, err)
	}
	return url.String(), nil
}
