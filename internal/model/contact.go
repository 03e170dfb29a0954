package model

import "time"

// ContactStatus 好友关系状态
// pending -> accepted / rejected；blocked 仅保留枚举值，没有状态迁移会进入
type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactAccepted ContactStatus = "accepted"
	ContactRejected ContactStatus = "rejected"
	ContactBlocked  ContactStatus = "blocked"
)

// Side 一条好友关系中调用者所在的一侧
type Side int8

const (
	SideNone Side = iota
	SideRequester
	SideRecipient
)

// SideField 每侧各自维护的字段
type SideField string

const (
	SideFieldNote   SideField = "note"
	SideFieldGroup  SideField = "group"
	SideFieldPinned SideField = "pinned"
)

// Column 返回该侧字段对应的列名，如 requester_note
func (s Side) Column(f SideField) string {
	switch s {
	case SideRequester:
		return "requester_" + string(f)
	case SideRecipient:
		return "recipient_" + string(f)
	}
	return ""
}

// Contact 好友关系（一条无向边，两个用户之间最多一条）
// 对应数据库 contact 表
type Contact struct {
	ID   uint   `gorm:"primaryKey"`
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:关系唯一id"`

	RequesterId string `gorm:"column:requester_id;type:char(20);not null;uniqueIndex:idx_contact_pair,priority:1;comment:申请人"`
	RecipientId string `gorm:"column:recipient_id;type:char(20);not null;uniqueIndex:idx_contact_pair,priority:2;index;comment:接收人"`

	// PairKey 两个用户 id 按字典序拼接，唯一索引保证无序对只有一条记录
	PairKey string `gorm:"column:pair_key;type:varchar(41);not null;uniqueIndex;comment:无序用户对"`

	Status ContactStatus `gorm:"column:status;type:varchar(10);not null;index;comment:状态"`

	RequesterNote   string `gorm:"column:requester_note;type:varchar(50)"`
	RecipientNote   string `gorm:"column:recipient_note;type:varchar(50)"`
	RequesterGroup  string `gorm:"column:requester_group;type:varchar(50)"`
	RecipientGroup  string `gorm:"column:recipient_group;type:varchar(50)"`
	RequesterPinned bool   `gorm:"column:requester_pinned;not null"`
	RecipientPinned bool   `gorm:"column:recipient_pinned;not null"`

	LastInteraction time.Time `gorm:"column:last_interaction"`
	RequestMessage  string    `gorm:"column:request_message;type:varchar(200)"`
	RejectReason    string    `gorm:"column:reject_reason;type:varchar(200)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (Contact) TableName() string {
	return "contact"
}

// PairKey 无序用户对的规范化键
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// SideOf 判断 userId 属于关系的哪一侧
func (c *Contact) SideOf(userId string) Side {
	switch userId {
	case c.RequesterId:
		return SideRequester
	case c.RecipientId:
		return SideRecipient
	}
	return SideNone
}

// PeerOf 返回关系中另一方的 id，userId 不是当事人时返回空串
func (c *Contact) PeerOf(userId string) string {
	switch c.SideOf(userId) {
	case SideRequester:
		return c.RecipientId
	case SideRecipient:
		return c.RequesterId
	}
	return ""
}

// SideView 某一侧的备注、分组、置顶
type SideView struct {
	Note   string
	Group  string
	Pinned bool
}

// View 读取某一侧的字段
func (c *Contact) View(s Side) SideView {
	switch s {
	case SideRequester:
		return SideView{Note: c.RequesterNote, Group: c.RequesterGroup, Pinned: c.RequesterPinned}
	case SideRecipient:
		return SideView{Note: c.RecipientNote, Group: c.RecipientGroup, Pinned: c.RecipientPinned}
	}
	return SideView{}
}

// IsParty userId 是否为当事人
func (c *Contact) IsParty(userId string) bool {
	return c.SideOf(userId) != SideNone
}
