package respond

import (
	"time"

	"chat_server/internal/model"
)

// ContactRespond 好友关系（不含每侧私有字段）
type ContactRespond struct {
	Id              string              `json:"id"`
	Requester       string              `json:"requester"`
	Recipient       string              `json:"recipient"`
	Status          model.ContactStatus `json:"status"`
	RequestMessage  string              `json:"requestMessage,omitempty"`
	RejectReason    string              `json:"rejectReason,omitempty"`
	LastInteraction time.Time           `json:"lastInteraction"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// NewContactRespond 由模型构造
func NewContactRespond(c *model.Contact) ContactRespond {
	return ContactRespond{
		Id:              c.Uuid,
		Requester:       c.RequesterId,
		Recipient:       c.RecipientId,
		Status:          c.Status,
		RequestMessage:  c.RequestMessage,
		RejectReason:    c.RejectReason,
		LastInteraction: c.LastInteraction,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// FriendItem 好友列表项，note/group/pinned 为调用者一侧的数据
type FriendItem struct {
	Id              string           `json:"id"`
	FriendId        string           `json:"friendId"`
	Nickname        string           `json:"nickname"`
	Avatar          string           `json:"avatar"`
	Email           string           `json:"email"`
	Status          model.UserStatus `json:"status"`
	Note            string           `json:"note"`
	Group           string           `json:"group"`
	Pinned          bool             `json:"pinned"`
	LastInteraction time.Time        `json:"lastInteraction"`
}

// FriendListRespond 好友列表
type FriendListRespond struct {
	Friends []FriendItem `json:"friends"`
	Total   int          `json:"total"`
}

// PendingRequestItem 待处理的好友申请
type PendingRequestItem struct {
	Id                string    `json:"id"`
	RequesterId       string    `json:"requesterId"`
	RequesterNickname string    `json:"requesterNickname"`
	RequesterAvatar   string    `json:"requesterAvatar"`
	RequesterEmail    string    `json:"requesterEmail"`
	RequestMessage    string    `json:"requestMessage"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PendingListRespond 待处理申请列表
type PendingListRespond struct {
	Requests []PendingRequestItem `json:"requests"`
	Total    int                  `json:"total"`
}
