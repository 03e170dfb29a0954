package respond

import (
	"time"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/model"
)

// GroupSummary 群列表项
type GroupSummary struct {
	Id           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Avatar       string          `json:"avatar"`
	Type         model.GroupType `json:"type"`
	Tags         []string        `json:"tags"`
	MemberCount  int             `json:"memberCount"`
	LastActivity time.Time       `json:"lastActivity"`
}

// NewGroupSummary 由模型构造
func NewGroupSummary(g *model.GroupInfo) GroupSummary {
	tags := []string(g.Tags)
	if tags == nil {
		tags = []string{}
	}
	return GroupSummary{
		Id:           g.Uuid,
		Name:         g.Name,
		Description:  g.Description,
		Avatar:       g.Avatar,
		Type:         g.Type,
		Tags:         tags,
		MemberCount:  g.Stats.MemberCount,
		LastActivity: g.Stats.LastActivity,
	}
}

// GroupListRespond 群列表
type GroupListRespond struct {
	Groups []GroupSummary `json:"groups"`
	Total  int64          `json:"total"`
}

// GroupDetail 群详情，members 仅对成员返回
type GroupDetail struct {
	GroupSummary
	Creator      string                               `json:"creator"`
	Status       model.GroupStatus                    `json:"status"`
	Settings     model.GroupSettings                  `json:"settings"`
	Announcement string                               `json:"announcement"`
	Stats        model.GroupStats                     `json:"stats"`
	Admins       []string                             `json:"admins"`
	MyRole       model.MemberRole                     `json:"myRole,omitempty"`
	Members      []repository.GroupMemberWithUserInfo `json:"members,omitempty"`
	CreatedAt    time.Time                            `json:"createdAt"`
}

// InviteCodeRespond 邀请码
type InviteCodeRespond struct {
	InviteCode string `json:"inviteCode"`
}

// InviteRespond 邀请结果
type InviteRespond struct {
	Added       []string `json:"added"`
	MemberCount int64    `json:"memberCount"`
}
