package respond

import (
	"chat_server/internal/model"
)

// ConversationRespond 会话消息，按时间正序
type ConversationRespond struct {
	Messages []model.Message `json:"messages"`
	Total    int64           `json:"total"`
}

// PeerBrief 会话对端的简要资料
type PeerBrief struct {
	Id       string           `json:"id"`
	Nickname string           `json:"nickname"`
	Avatar   string           `json:"avatar"`
	Email    string           `json:"email"`
	Status   model.UserStatus `json:"status"`
}

// RecentConversationItem 最近会话
type RecentConversationItem struct {
	PeerId      string        `json:"peerId"`
	User        PeerBrief     `json:"user"`
	LastMessage model.Message `json:"lastMessage"`
	UnreadCount int64         `json:"unreadCount"`
}

// RecentConversationsRespond 最近会话列表
type RecentConversationsRespond struct {
	Conversations []RecentConversationItem `json:"conversations"`
	Total         int                      `json:"total"`
}

// MarkReadRespond 标记已读结果
type MarkReadRespond struct {
	UpdatedCount int64 `json:"updatedCount"`
}
