// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 每个方法显式接收 ctx 与当前用户 id
package service

import (
	"context"
	"io"

	"chat_server/internal/dto/request"
	"chat_server/internal/dto/respond"
	"chat_server/internal/model"
)

// UserService 用户业务接口
// 处理注册、登录、资料管理与用户搜索
type UserService interface {
	// Register 邮箱注册，返回双 Token
	Register(ctx context.Context, req request.RegisterRequest) (*respond.AuthRespond, error)
	// Login 邮箱密码登录
	Login(ctx context.Context, req request.LoginRequest) (*respond.AuthRespond, error)
	// GetProfile 获取用户资料
	GetProfile(ctx context.Context, userId string) (*respond.UserProfile, error)
	// UpdateProfile 修改资料
	UpdateProfile(ctx context.Context, userId string, req request.UpdateProfileRequest) (*respond.UserProfile, error)
	// UploadAvatar 上传头像
	UploadAvatar(ctx context.Context, userId, filename, contentType string, size int64, r io.Reader) (*respond.UserProfile, error)
	// SearchUsers 搜索用户（排除自己）
	SearchUsers(ctx context.Context, userId, keyword string) ([]respond.UserSearchItem, error)
	// Exists 用户是否存在
	Exists(ctx context.Context, userId string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	// Refresh 用 Refresh Token 换取新的双 Token
	Refresh(ctx context.Context, refreshToken string) (*respond.RefreshRespond, error)
	// Logout 作废当前 Refresh Token
	Logout(ctx context.Context, userId string) error
}

// ContactService 好友关系业务接口
type ContactService interface {
	// SendRequest 按邮箱发送好友申请
	SendRequest(ctx context.Context, requesterId string, req request.FriendRequestRequest) (*respond.ContactRespond, error)
	// Accept 同意好友申请
	Accept(ctx context.Context, contactId, userId string) (*respond.ContactRespond, error)
	// Reject 拒绝好友申请
	Reject(ctx context.Context, contactId, userId, reason string) (*respond.ContactRespond, error)
	// ListFriends 好友列表
	ListFriends(ctx context.Context, userId string) (*respond.FriendListRespond, error)
	// ListPending 待处理的好友申请
	ListPending(ctx context.Context, userId string) (*respond.PendingListRespond, error)
	// UpdateNote 修改好友备注
	UpdateNote(ctx context.Context, contactId, userId, note string) (*respond.FriendItem, error)
	// UpdateGroupLabel 修改好友分组
	UpdateGroupLabel(ctx context.Context, contactId, userId, label string) (*respond.FriendItem, error)
	// SetPinned 置顶好友
	SetPinned(ctx context.Context, contactId, userId string, pinned bool) (*respond.FriendItem, error)
	// RemoveFriend 删除好友
	RemoveFriend(ctx context.Context, contactId, userId string) error
	// AreFriends 两人是否为好友
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	// FriendIds 用户所有好友 id
	FriendIds(ctx context.Context, userId string) ([]string, error)
}

// MessageService 消息业务接口
type MessageService interface {
	// Send 发送单聊或群聊消息
	Send(ctx context.Context, senderId string, req request.SendMessageRequest) (*model.Message, error)
	// GetConversation 私聊记录，同时标记已读
	GetConversation(ctx context.Context, userId, targetId string, page request.PageQuery) (*respond.ConversationRespond, error)
	// GetGroupConversation 群聊记录
	GetGroupConversation(ctx context.Context, userId, groupId string, page request.PageQuery) (*respond.ConversationRespond, error)
	// GetRecentConversations 最近会话
	GetRecentConversations(ctx context.Context, userId string) (*respond.RecentConversationsRespond, error)
	// MarkAsRead 将某人发来的消息标为已读
	MarkAsRead(ctx context.Context, userId, senderId string) (*respond.MarkReadRespond, error)
	// Delete 删除自己发送的消息
	Delete(ctx context.Context, messageId, userId string) error
}

// GroupService 群组业务接口
// 处理群组的创建、成员管理、禁言与邀请码
type GroupService interface {
	Create(ctx context.Context, creatorId string, req request.CreateGroupRequest) (*respond.GroupDetail, error)
	GetDetail(ctx context.Context, groupId, userId string) (*respond.GroupDetail, error)
	Update(ctx context.Context, groupId, actorId string, req request.UpdateGroupRequest) (*respond.GroupDetail, error)
	Delete(ctx context.Context, groupId, actorId string) error
	ListMyGroups(ctx context.Context, userId string) (*respond.GroupListRespond, error)
	ListPublicGroups(ctx context.Context, page request.PageQuery) (*respond.GroupListRespond, error)
	SearchGroups(ctx context.Context, query request.SearchGroupsQuery) (*respond.GroupListRespond, error)
	Join(ctx context.Context, groupId, userId string) (*respond.GroupDetail, error)
	JoinByInviteCode(ctx context.Context, userId, code string) (*respond.GroupDetail, error)
	Leave(ctx context.Context, groupId, userId string) error
	Invite(ctx context.Context, groupId, actorId string, userIds []string) (*respond.InviteRespond, error)
	RemoveMember(ctx context.Context, groupId, actorId, targetId string) error
	UpdateRole(ctx context.Context, groupId, actorId, targetId, role string) error
	MuteMember(ctx context.Context, groupId, actorId, targetId string, durationSeconds int) error
	UnmuteMember(ctx context.Context, groupId, actorId, targetId string) error
	GetInviteCode(ctx context.Context, groupId, actorId string) (*respond.InviteCodeRespond, error)
	ResetInviteCode(ctx context.Context, groupId, actorId string) (*respond.InviteCodeRespond, error)
	// ReleaseExpiredMutes 定时任务入口
	ReleaseExpiredMutes(ctx context.Context) (int64, error)
}
