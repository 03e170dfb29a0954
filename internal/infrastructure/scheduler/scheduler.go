// Package scheduler 定时任务：cron 负责触发，ants 协程池负责执行
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job 定时任务
type Job func(ctx context.Context) error

// Scheduler cron + 协程池
type Scheduler struct {
	cron *cron.Cron
	pool *ants.Pool
	ctx  context.Context
	stop context.CancelFunc
}

// New 创建调度器，poolSize 为并发执行任务的协程数
func New(poolSize int) (*Scheduler, error) {
	pool, err := ants.NewPool(poolSize, ants.WithExpiryDuration(5*time.Second), ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create ants pool: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(),
		pool: pool,
		ctx:  ctx,
		stop: cancel,
	}, nil
}

// AddJob 注册任务，spec 支持标准 cron 表达式与 @every 写法
// 上一次执行未结束时跳过本次触发
func (s *Scheduler) AddJob(spec, name string, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		done := make(chan struct{})
		err := s.pool.Submit(func() {
			defer close(done)
			s.run(name, job)
		})
		if err != nil {
			zap.L().Warn("scheduler pool busy, skip job", zap.String("job", name), zap.Error(err))
			return
		}
		<-done
	}))
	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("scheduled job panic", zap.String("job", name), zap.Any("recover", rec))
		}
	}()
	start := time.Now()
	if err := job(s.ctx); err != nil {
		zap.L().Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	zap.L().Debug("scheduled job done", zap.String("job", name), zap.Duration("cost", time.Since(start)))
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止触发并等待运行中的任务结束，ctx 到期后强制返回
func (s *Scheduler) Stop(ctx context.Context) {
	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
	}
	s.stop()
	s.pool.Release()
}
