// Package testutil 提供 service / repository 测试共用的内存数据库、缓存与事件记录器
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	dao "chat_server/internal/dao/mysql"
	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/infrastructure/mq"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 内存 SQLite，单连接保证同一个库在整个测试内可见
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	conf := dao.NewGormConfig()
	conf.Logger = logger.Discard
	db, err := gorm.Open(sqlite.Open(":memory:"), conf)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dao.Migrate(db))
	return db
}

// NewRepositories 基于内存库的 Repositories
func NewRepositories(t testing.TB) *repository.Repositories {
	return repository.NewRepositories(NewDB(t))
}

// ==================== FakeCache ====================

// FakeCache 内存版缓存，忽略过期时间；SubmitTask 默认同步执行
type FakeCache struct {
	mu       sync.Mutex
	strings  map[string]string
	sets     map[string]map[string]struct{}
	deferred bool
	pending  []func()
}

func NewFakeCache() *FakeCache {
	return &FakeCache{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
	}
}

func (f *FakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strings[key] = value
	return nil
}

func (f *FakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strings[key], nil
}

func (f *FakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.strings, k)
		delete(f.sets, k)
	}
	return nil
}

func (f *FakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.strings[key]; ok {
		return true, nil
	}
	_, ok := f.sets[key]
	return ok, nil
}

func (f *FakeCache) Expire(context.Context, string, time.Duration) error {
	return nil
}

func (f *FakeCache) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(f.strings[key], 10, 64)
	n++
	f.strings[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *FakeCache) AddToSet(_ context.Context, key string, members ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addLocked(key, members)
	return nil
}

func (f *FakeCache) AddToSetIfMatch(_ context.Context, guardKey, guard, key string, _ time.Duration, members ...interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(members) == 0 || f.strings[guardKey] != guard {
		return false, nil
	}
	f.addLocked(key, members)
	return true, nil
}

func (f *FakeCache) addLocked(key string, members []interface{}) {
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	for _, m := range members {
		set[fmt.Sprint(m)] = struct{}{}
	}
}

func (f *FakeCache) GetSetMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

func (f *FakeCache) IsSetMember(_ context.Context, key string, member string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sets[key][member]
	return ok, nil
}

func (f *FakeCache) SubmitTask(action func()) {
	f.mu.Lock()
	if f.deferred {
		f.pending = append(f.pending, action)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	action()
}

// DeferTasks 之后提交的任务先排队，直到 RunPending 才执行，模拟 worker 积压
func (f *FakeCache) DeferTasks() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deferred = true
}

// RunPending 按提交顺序执行排队的任务并恢复同步模式
func (f *FakeCache) RunPending() {
	f.mu.Lock()
	tasks := f.pending
	f.pending = nil
	f.deferred = false
	f.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

// Has 测试断言用：键是否存在（字符串或集合）
func (f *FakeCache) Has(key string) bool {
	ok, _ := f.Exists(context.Background(), key)
	return ok
}

// ==================== RecordingPublisher ====================

// RecordingPublisher 记录所有发布的事件
type RecordingPublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, event mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// Events 已发布事件的副本
func (p *RecordingPublisher) Events() []mq.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mq.Event(nil), p.events...)
}

// Types 已发布事件的类型序列
func (p *RecordingPublisher) Types() []mq.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]mq.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
