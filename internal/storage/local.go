package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultLocalRoot   = "uploads"
	defaultLocalPrefix = "/uploads"
)

// LocalStore 本地磁盘存储，返回以 URLPrefix 开头的相对路径
type LocalStore struct {
	root   string
	prefix string
}

// NewLocalStore 创建本地存储
func NewLocalStore(root, urlPrefix string) *LocalStore {
	root = strings.TrimSpace(root)
	if root == "" {
		root = defaultLocalRoot
	}
	urlPrefix = "/" + strings.Trim(strings.TrimSpace(urlPrefix), "/")
	if urlPrefix == "/" {
		urlPrefix = defaultLocalPrefix
	}
	return &LocalStore{root: root, prefix: urlPrefix}
}

// Put 写入文件
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.root, filepath.FromSlash(normalized))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}
	return s.prefix + "/" + normalized, nil
}

// Delete 删除文件，文件不存在视为成功
func (s *LocalStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := strings.TrimPrefix(strings.TrimSpace(path), s.prefix)
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(normalized))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
