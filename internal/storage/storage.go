package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/constants"
)

// BlobStore 预订文件存储；Delete 对不存在的对象返回 nil
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

// New 根据配置创建存储实现
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", constants.StorageDriverLocal:
		return NewLocalStore(cfg.Local.Root, cfg.Local.URLPrefix), nil
	case constants.StorageDriverMinio:
		return NewMinioStore(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// normalizeKey 去掉首尾斜杠并拒绝路径穿越
func normalizeKey(key string) (string, error) {
	cleaned := strings.Trim(strings.ReplaceAll(strings.TrimSpace(key), "\\", "/"), "/")
	if cleaned == "" {
		return "", fmt.Errorf("empty storage key")
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid storage key: %s", key)
		}
	}
	return cleaned, nil
}
