package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"chat_server/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStore 对象存储实现
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore 创建客户端，桶不存在时创建
func NewMinioStore(ctx context.Context, conf *config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKeyID, conf.SecretAccessKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check minio bucket %s: %w", conf.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make minio bucket %s: %w", conf.Bucket, err)
		}
		zap.L().Info("minio bucket created", zap.String("bucket", conf.Bucket))
	}

	baseURL := strings.TrimRight(conf.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if conf.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, conf.Endpoint, conf.Bucket)
	}
	return &MinioStore{client: client, bucket: conf.Bucket, baseURL: baseURL}, nil
}

// Save 上传对象
func (s *MinioStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", name, err)
	}
	zap.L().Debug("avatar uploaded", zap.String("object", info.Key), zap.Int64("size", info.Size))
	return s.baseURL + "/" + name, nil
}
