package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/config"
)

// Storage drivers
const (
	DriverLocal      = "local"
	DriverCloudinary = "cloudinary"
	DriverS3         = "s3"
	DriverMinio      = "minio"
)

// Open returns the Store selected by conf.StorageDriver
func Open(ctx context.Context, conf *config.Config) (Store, error) {
	switch conf.StorageDriver {
	case "", DriverLocal:
		zap.S().Infow("using local document storage", "dir", conf.UploadDir)
		return NewLocal(conf.UploadDir, conf.BaseURL)
	case DriverCloudinary:
		if conf.CloudinaryURL == "" {
			return nil, fmt.Errorf("storage: CLOUDINARY_URL is required for the %s driver", DriverCloudinary)
		}
		zap.S().Infow("using cloudinary document storage", "folder", conf.CloudinaryFolder)
		return NewCloudinary(conf.CloudinaryURL, conf.CloudinaryFolder)
	case DriverS3:
		if conf.S3Bucket == "" {
			return nil, fmt.Errorf("storage: S3_BUCKET is required for the %s driver", DriverS3)
		}
		zap.S().Infow("using s3 document storage", "bucket", conf.S3Bucket, "region", conf.S3Region)
		return NewS3(ctx, S3Config{
			Bucket:    conf.S3Bucket,
			Region:    conf.S3Region,
			Endpoint:  conf.S3Endpoint,
			AccessKey: conf.S3AccessKey,
			SecretKey: conf.S3SecretKey,
		})
	case DriverMinio:
		if conf.MinioEndpoint == "" {
			return nil, fmt.Errorf("storage: MINIO_ENDPOINT is required for the %s driver", DriverMinio)
		}
		zap.S().Infow("using minio document storage", "endpoint", conf.MinioEndpoint, "bucket", conf.MinioBucket)
		return NewMinio(ctx, MinioConfig{
			Endpoint:  conf.MinioEndpoint,
			AccessKey: conf.MinioAccessKey,
			SecretKey: conf.MinioSecretKey,
			Bucket:    conf.MinioBucket,
			Secure:    conf.MinioSecure,
		})
	}
	return nil, fmt.Errorf("storage: unknown driver %q", conf.StorageDriver)
}
