// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储单聊和群聊消息
package model

import (
	"time"

	"gorm.io/datatypes"
)

// RecipientKind 接收方类型
type RecipientKind string

const (
	RecipientUser  RecipientKind = "User"
	RecipientGroup RecipientKind = "Group"
)

// Recipient 消息接收方：用户或群组
type Recipient struct {
	Kind RecipientKind
	ID   string
}

// ToUser 单聊接收方
func ToUser(userId string) Recipient {
	return Recipient{Kind: RecipientUser, ID: userId}
}

// ToGroup 群聊接收方
func ToGroup(groupId string) Recipient {
	return Recipient{Kind: RecipientGroup, ID: groupId}
}

// MessageType 消息类型
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	MessageVoice MessageType = "voice"
	MessageVideo MessageType = "video"
)

// Valid 是否为合法类型
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageVoice, MessageVideo:
		return true
	}
	return false
}

// MessageStatus 投递状态
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Message 消息模型
// 对应数据库 message 表；启用 MongoDB 时同结构存入 messages 集合
// 创建后只允许 sent -> read 的变化，删除为硬删除
type Message struct {
	// ID 自增主键，仅用于关系库内排序与取最新一条
	ID uint `gorm:"primaryKey;autoIncrement" json:"-" bson:"-"`

	// Uuid 雪花算法生成，字符串下发
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(32);not null;comment:消息雪花ID" json:"id" bson:"_id"`

	SenderId       string        `gorm:"column:sender_id;index;type:char(20);not null;comment:发送者uuid" json:"sender" bson:"sender"`
	RecipientId    string        `gorm:"column:recipient_id;index;type:char(20);not null;comment:接收者uuid" json:"recipient" bson:"recipient"`
	RecipientModel RecipientKind `gorm:"column:recipient_model;type:varchar(10);not null;comment:User/Group" json:"recipientModel" bson:"recipientModel"`

	Content  string            `gorm:"column:content;type:text;not null" json:"content" bson:"content"`
	Type     MessageType       `gorm:"column:type;type:varchar(10);not null" json:"type" bson:"type"`
	Status   MessageStatus     `gorm:"column:status;type:varchar(10);not null" json:"status" bson:"status"`
	IsRead   bool              `gorm:"column:is_read;not null;index" json:"isRead" bson:"isRead"`
	ReplyTo  *string           `gorm:"column:reply_to;type:varchar(32)" json:"replyTo,omitempty" bson:"replyTo,omitempty"`
	Metadata datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty" bson:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt" bson:"updatedAt"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}

// Target 以 Recipient 形式返回接收方
func (m *Message) Target() Recipient {
	return Recipient{Kind: m.RecipientModel, ID: m.RecipientId}
}

// SetTarget 写入接收方
func (m *Message) SetTarget(r Recipient) {
	m.RecipientModel = r.Kind
	m.RecipientId = r.ID
}

// InConversation 消息是否属于 userId 与 target 之间的会话；群消息只看群 id
func (m *Message) InConversation(userId string, target Recipient) bool {
	if m.RecipientModel != target.Kind {
		return false
	}
	if target.Kind == RecipientGroup {
		return m.RecipientId == target.ID
	}
	return (m.SenderId == userId && m.RecipientId == target.ID) ||
		(m.SenderId == target.ID && m.RecipientId == userId)
}

// ConversationSummary 最近会话聚合结果（按对端用户）
type ConversationSummary struct {
	PeerId      string
	LastMessage Message
	UnreadCount int64
}
