// Package redis 定义缓存服务接口
// Service 层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
type CacheService interface {
	// ==================== String 操作 ====================

	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)

	// ==================== Key 操作 ====================

	// Delete 删除键（不存在时忽略）
	Delete(ctx context.Context, keys ...string) error
	// Exists 键是否存在
	Exists(ctx context.Context, key string) (bool, error)
	// Expire 设置过期时间
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// Incr 计数器加一，键不存在时从 0 开始
	Incr(ctx context.Context, key string) (int64, error)

	// ==================== Set 集合操作 ====================

	// AddToSet 向集合添加成员
	AddToSet(ctx context.Context, key string, members ...interface{}) error
	// GetSetMembers 获取集合中的所有成员
	GetSetMembers(ctx context.Context, key string) ([]string, error)
	// IsSetMember 成员是否在集合中
	IsSetMember(ctx context.Context, key string, member string) (bool, error)
	// AddToSetIfMatch guardKey 的当前值等于 guard（不存在视为空串）时才写入集合并设置过期时间
	// 整个判断与写入是原子的，返回是否写入
	AddToSetIfMatch(ctx context.Context, guardKey, guard, key string, ttl time.Duration, members ...interface{}) (bool, error)
}

// AsyncCacheService 异步缓存服务接口
// 提供异步任务提交能力，用于非阻塞的缓存回填
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步缓存任务，队列满时同步执行
	SubmitTask(action func())
}
