package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore MinIO / S3 兼容对象存储；返回的路径为 "bucket/key"
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore 创建对象存储，桶不存在时自动创建
func NewMinioStore(ctx context.Context, cfg config.MinioStorageConfig) (*MinioStore, error) {
	bucket := strings.TrimSpace(cfg.BucketName)
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket name is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check minio bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create minio bucket: %w", err)
		}
	}
	logger.Infow("minio_store_ready", "endpoint", cfg.Endpoint, "bucket", bucket, "created", !exists)
	return &MinioStore{client: client, bucket: bucket}, nil
}

// Put 上传对象
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	normalized, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	if _, err := s.client.PutObject(ctx, s.bucket, normalized, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", err
	}
	return s.bucket + "/" + normalized, nil
}

// Delete 删除对象，对象不存在视为成功
func (s *MinioStore) Delete(ctx context.Context, path string) error {
	key := strings.TrimPrefix(strings.TrimSpace(path), s.bucket+"/")
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, normalized, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return err
	}
	return nil
}
