package mq

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrPublisherClosed 发布器已关闭
var ErrPublisherClosed = errors.New("event publisher closed")

// ErrQueueFull 进程内队列已满，事件被丢弃
var ErrQueueFull = errors.New("event queue full")

// channelPublisher 进程内事件总线
type channelPublisher struct {
	events   chan Event
	handlers []Handler
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
}

// NewChannelPublisher 创建进程内发布器并启动分发协程
func NewChannelPublisher(size int, handlers ...Handler) Publisher {
	p := &channelPublisher{
		events:   make(chan Event, size),
		handlers: handlers,
		done:     make(chan struct{}),
	}
	go p.dispatch()
	return p
}

func (p *channelPublisher) dispatch() {
	defer close(p.done)
	for evt := range p.events {
		for _, h := range p.handlers {
			safeHandle(h, evt)
		}
	}
}

func safeHandle(h Handler, evt Event) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("event handler panic", zap.String("type", string(evt.Type)), zap.Any("recover", rec))
		}
	}()
	h(context.Background(), evt)
}

// Publish 非阻塞写入，队列满时丢弃并返回 ErrQueueFull
func (p *channelPublisher) Publish(ctx context.Context, evt Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Close 关闭通道并等待已入队事件分发完毕
func (p *channelPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	<-p.done
	return nil
}
