package model

import "time"

// MemberRole 群内角色
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
	RoleOwner  MemberRole = "owner"
)

// GroupMember 群成员关联表，(group_uuid, user_uuid) 唯一
// 退群、踢人直接删除行
type GroupMember struct {
	ID        uint       `gorm:"primaryKey"`
	GroupUuid string     `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:idx_group_member,priority:1;comment:群组ID"`
	UserUuid  string     `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex:idx_group_member,priority:2;index;comment:用户ID"`
	Nickname  string     `gorm:"column:nickname;type:varchar(30);comment:群昵称"`
	Role      MemberRole `gorm:"column:role;type:varchar(10);not null;comment:member/admin/owner"`
	JoinedAt  time.Time  `gorm:"column:joined_at"`
	IsMuted   bool       `gorm:"column:is_muted;not null"`
	MuteUntil *time.Time `gorm:"column:mute_until;index"` // 为空表示永久禁言
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GroupMember) TableName() string {
	return "group_member"
}

// IsAdmin 管理员或群主
func (m *GroupMember) IsAdmin() bool {
	return m.Role == RoleAdmin || m.Role == RoleOwner
}

// MutedAt 判断 now 时刻是否处于禁言中，已过期的禁言视为未禁言
func (m *GroupMember) MutedAt(now time.Time) bool {
	if !m.IsMuted {
		return false
	}
	return m.MuteUntil == nil || now.Before(*m.MuteUntil)
}
