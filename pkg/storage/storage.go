package storage

import (
	"context"
	"fmt"
	"io"
	"picture-wall/pkg/config"
	"strings"
)

// Storage 按内容寻址保存上传文件，key 由调用方计算
type Storage interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}

// New 根据配置创建存储后端
func New(ctx context.Context, cfg config.UploadConfig) (Storage, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalStorage(cfg.Dir, cfg.PublicURL)
	case "s3":
		return NewS3Storage(ctx, cfg.S3, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
