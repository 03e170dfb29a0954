package request

// CreateGroupRequest 创建群组
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=50"`
	Description string   `json:"description" binding:"omitempty,max=200"`
	IsPrivate   bool     `json:"isPrivate"`
	Tags        []string `json:"tags" binding:"omitempty,max=10,dive,max=20"`
	MaxMembers  int      `json:"maxMembers" binding:"omitempty,min=2,max=2000"`
}

// GroupSettingsPatch 群设置的部分更新
type GroupSettingsPatch struct {
	RequireApproval    *bool `json:"requireApproval"`
	AllowMemberInvite  *bool `json:"allowMemberInvite"`
	AllowMemberEdit    *bool `json:"allowMemberEdit"`
	MaxMembers         *int  `json:"maxMembers" binding:"omitempty,min=2,max=2000"`
	EnableAnnouncement *bool `json:"enableAnnouncement"`
}

// UpdateGroupRequest 修改群信息，未传的字段保持不变
type UpdateGroupRequest struct {
	Name         *string             `json:"name" binding:"omitempty,min=1,max=50"`
	Description  *string             `json:"description" binding:"omitempty,max=200"`
	Avatar       *string             `json:"avatar" binding:"omitempty,max=255"`
	Announcement *string             `json:"announcement" binding:"omitempty,max=1000"`
	Tags         []string            `json:"tags" binding:"omitempty,max=10,dive,max=20"`
	Settings     *GroupSettingsPatch `json:"settings"`
}

// InviteMembersRequest 邀请入群
type InviteMembersRequest struct {
	UserIds []string `json:"userIds" binding:"required,min=1,max=100,dive,required"`
}

// RemoveMemberRequest 踢出成员
type RemoveMemberRequest struct {
	UserId string `json:"userId" binding:"required"`
}

// UpdateRoleRequest 修改成员角色
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member admin owner"`
}

// MuteMemberRequest 禁言，不传时长表示永久
type MuteMemberRequest struct {
	DurationSeconds int `json:"durationSeconds" binding:"omitempty,min=1,max=31536000"`
}

// JoinByCodeRequest 通过邀请码入群
type JoinByCodeRequest struct {
	InviteCode string `json:"inviteCode" binding:"required,max=32"`
}

// SearchGroupsQuery 搜索群组
type SearchGroupsQuery struct {
	Q     string `form:"q" binding:"required,max=50"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200"`
}
