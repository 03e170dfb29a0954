// Package mq 领域事件投递
// messageMode=kafka 时事件写入 Kafka 主题并由消费者读取，
// messageMode=channel 时走进程内缓冲通道，由单个分发协程处理
package mq

import (
	"context"
	"time"
)

// EventType 事件类型
type EventType string

const (
	EventContactRequested EventType = "contact.requested"
	EventContactAccepted  EventType = "contact.accepted"
	EventContactRejected  EventType = "contact.rejected"
	EventContactRemoved   EventType = "contact.removed"

	EventMessageSent    EventType = "message.sent"
	EventMessageDeleted EventType = "message.deleted"

	EventGroupCreated       EventType = "group.created"
	EventGroupMemberJoined  EventType = "group.member_joined"
	EventGroupMemberRemoved EventType = "group.member_removed"
	EventGroupDeleted       EventType = "group.deleted"
)

// Event 领域事件
type Event struct {
	Type       EventType      `json:"type"`
	ActorId    string         `json:"actorId"`              // 触发者
	TargetId   string         `json:"targetId,omitempty"`   // 受影响的用户或群
	ResourceId string         `json:"resourceId,omitempty"` // 关系、消息或群 id
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// NewEvent 构造事件，时间取当前
func NewEvent(typ EventType, actorId, targetId, resourceId string) Event {
	return Event{
		Type:       typ,
		ActorId:    actorId,
		TargetId:   targetId,
		ResourceId: resourceId,
		OccurredAt: time.Now(),
	}
}

// Publisher 事件发布接口，Service 层只依赖它
type Publisher interface {
	// Publish 发布事件，失败不影响已提交的业务数据
	Publish(ctx context.Context, evt Event) error
	// Close 停止发布并释放资源
	Close() error
}

// Handler 事件消费回调
type Handler func(ctx context.Context, evt Event)

// nopPublisher 丢弃所有事件
type nopPublisher struct{}

// NewNopPublisher 不投递任何事件
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }
