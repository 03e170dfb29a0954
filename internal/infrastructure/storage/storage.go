// Package storage 头像等二进制文件的存储
// 启用 minio 时写入对象存储，否则落到本地静态目录，由 gin 静态路由对外提供
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"chat_server/internal/config"
	"chat_server/pkg/util/random"
)

// AvatarStore 头像存储接口
type AvatarStore interface {
	// Save 保存文件，返回可直接访问的 URL 或站内路径
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// New 按配置选择实现
func New(ctx context.Context, minioConf *config.MinioConfig, staticConf *config.StaticSrcConfig) (AvatarStore, error) {
	if minioConf.Enabled {
		return NewMinioStore(ctx, minioConf)
	}
	return NewLocalStore(staticConf.StaticAvatarPath, "/static/avatars")
}

// ObjectName 生成不重复的对象名，保留原扩展名
func ObjectName(userId, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return userId + "_" + random.GetNowAndLenRandomString(8) + ext
}
