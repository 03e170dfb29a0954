package model

import (
	"time"

	"gorm.io/datatypes"
)

// GroupType 群可见性
type GroupType string

const (
	GroupPublic  GroupType = "public"
	GroupPrivate GroupType = "private"
	GroupSecret  GroupType = "secret" // 仅成员可见
)

// GroupStatus 群状态，deleted 为软删除
type GroupStatus string

const (
	GroupActive   GroupStatus = "active"
	GroupInactive GroupStatus = "inactive"
	GroupDeleted  GroupStatus = "deleted"
)

// GroupSettings 群设置，以 setting_ 前缀内嵌到 group_info
// bool 列不设 default 标签，零值由代码显式写入
type GroupSettings struct {
	RequireApproval    bool `gorm:"not null" json:"requireApproval"`
	AllowMemberInvite  bool `gorm:"not null" json:"allowMemberInvite"`
	AllowMemberEdit    bool `gorm:"not null" json:"allowMemberEdit"`
	MaxMembers         int  `gorm:"not null" json:"maxMembers"`
	EnableAnnouncement bool `gorm:"not null" json:"enableAnnouncement"`
}

// GroupStats 群统计，memberCount 在每次成员变更的事务里按成员行重算
type GroupStats struct {
	MemberCount  int       `gorm:"not null" json:"memberCount"`
	MessageCount int64     `gorm:"not null" json:"messageCount"`
	LastActivity time.Time `gorm:"index" json:"lastActivity"`
}

// GroupInfo 群组
type GroupInfo struct {
	ID           uint                        `gorm:"primaryKey"`
	Uuid         string                      `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`
	Name         string                      `gorm:"column:name;type:varchar(50);not null;index;comment:群名称"`
	Description  string                      `gorm:"column:description;type:varchar(200)"`
	Avatar       string                      `gorm:"column:avatar;type:varchar(255)"`
	CreatorId    string                      `gorm:"column:creator_id;type:char(20);not null;index;comment:群主uuid"`
	Type         GroupType                   `gorm:"column:type;type:varchar(10);not null;index"`
	Status       GroupStatus                 `gorm:"column:status;type:varchar(10);not null;index"`
	Settings     GroupSettings               `gorm:"embedded;embeddedPrefix:setting_"`
	Announcement string                      `gorm:"column:announcement;type:varchar(1000)"`
	Tags         datatypes.JSONSlice[string] `gorm:"column:tags"`
	Stats        GroupStats                  `gorm:"embedded;embeddedPrefix:stats_"`
	InviteCode   string                      `gorm:"column:invite_code;type:varchar(32);uniqueIndex;comment:邀请码"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (GroupInfo) TableName() string {
	return "group_info"
}

// DefaultGroupSettings 新建群的默认设置
func DefaultGroupSettings(maxMembers int) GroupSettings {
	return GroupSettings{
		RequireApproval:    false,
		AllowMemberInvite:  true,
		AllowMemberEdit:    false,
		MaxMembers:         maxMembers,
		EnableAnnouncement: true,
	}
}
