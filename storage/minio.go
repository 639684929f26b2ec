package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the settings for a MinIO server
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// Minio stores documents in a MinIO bucket
type Minio struct {
	client *minio.Client
	bucket string
	scheme string
	host   string
}

// NewMinio connects and creates the bucket if it is missing
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	return &Minio{client: client, bucket: cfg.Bucket, scheme: scheme, host: cfg.Endpoint}, nil
}

// Put uploads r as key
func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error) {
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload to minio: %w", err)
	}
	return Object{
		Key:         key,
		URL:         fmt.Sprintf("%s://%s/%s/%s", m.scheme, m.host, m.bucket, key),
		Size:        info.Size,
		ContentType: contentType,
	}, nil
}
