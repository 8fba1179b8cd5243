package storage

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/config"
)

// NewMinioClient initializes a MinIO client and ensures the bucket exists
// with versioning enabled.
func NewMinioClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*minio.Client, error) {
	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}

	exists, err := minioClient.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %s", cfg.MinioBucket)
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: ""}); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", cfg.MinioBucket)
		}
		log.Info("created bucket", zap.String("bucket", cfg.MinioBucket))
	}

	// Revision history depends on object versions.
	if err := minioClient.EnableVersioning(ctx, cfg.MinioBucket); err != nil {
		return nil, errors.Wrapf(err, "enable versioning on %s", cfg.MinioBucket)
	}
	return minioClient, nil
}
