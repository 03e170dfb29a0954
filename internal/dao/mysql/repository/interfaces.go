// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"time"

	"chat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	// FindByEmail 根据邮箱查找用户（大小写不敏感）
	FindByEmail(ctx context.Context, email string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
	// Search 按邮箱或昵称模糊搜索，排除指定用户
	Search(ctx context.Context, keyword, excludeUuid string, limit int) ([]model.UserInfo, error)
	// Exists 用户是否存在
	Exists(ctx context.Context, uuid string) (bool, error)
	// Create 创建新用户
	Create(ctx context.Context, user *model.UserInfo) error
	// UpdateFields 按列更新用户资料
	UpdateFields(ctx context.Context, uuid string, updates map[string]any) error
}

// ContactRepository 好友关系数据访问接口
type ContactRepository interface {
	// FindByUuid 根据关系 UUID 查找
	FindByUuid(ctx context.Context, uuid string) (*model.Contact, error)
	// FindBetween 查找两人之间的关系（任意方向）
	FindBetween(ctx context.Context, userA, userB string) (*model.Contact, error)
	// FindAcceptedByUser 查找用户所有已通过的关系
	FindAcceptedByUser(ctx context.Context, userId string) ([]model.Contact, error)
	// FindPendingByRecipient 查找发给用户的待处理申请
	FindPendingByRecipient(ctx context.Context, userId string) ([]model.Contact, error)
	// FriendIds 返回用户所有好友的 id
	FriendIds(ctx context.Context, userId string) ([]string, error)
	// Create 创建好友申请
	Create(ctx context.Context, contact *model.Contact) error
	// UpdateIfStatus 仅当当前状态为 status 时更新，返回是否命中
	UpdateIfStatus(ctx context.Context, uuid string, status model.ContactStatus, updates map[string]any) (bool, error)
	// Delete 硬删除关系
	Delete(ctx context.Context, uuid string) error
}

// GroupRepository 群组数据访问接口
// 除 FindByUuid 外，查询均排除已解散（deleted）的群
type GroupRepository interface {
	// FindByUuid 根据 UUID 查找群组（含已解散）
	FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error)
	// FindActive 查找未解散的群，已解散视为不存在
	FindActive(ctx context.Context, uuid string) (*model.GroupInfo, error)
	// FindByInviteCode 根据邀请码查找未解散的群
	FindByInviteCode(ctx context.Context, code string) (*model.GroupInfo, error)
	// FindActiveByUuids 批量查找，按最近活跃时间倒序
	FindActiveByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error)
	// ListPublic 分页获取公开群
	ListPublic(ctx context.Context, limit, skip int) ([]model.GroupInfo, int64, error)
	// Search 按名称、描述搜索非 secret 群
	Search(ctx context.Context, keyword string, limit int) ([]model.GroupInfo, error)
	// Create 创建新群组
	Create(ctx context.Context, group *model.GroupInfo) error
	// UpdateFields 按列更新群组信息
	UpdateFields(ctx context.Context, uuid string, updates map[string]any) error
	// SetMemberCount 写入成员数
	SetMemberCount(ctx context.Context, uuid string, count int64) error
	// TouchMessage 消息数 +1 并刷新最近活跃时间
	TouchMessage(ctx context.Context, uuid string, at time.Time) error
}

// GroupMemberWithUserInfo 群成员详细信息（含用户资料）
type GroupMemberWithUserInfo struct {
	UserId    string           `json:"userId"`
	Nickname  string           `json:"nickname"` // 群昵称为空时使用用户昵称
	Avatar    string           `json:"avatar"`
	Role      model.MemberRole `json:"role"`
	JoinedAt  time.Time        `json:"joinedAt"`
	IsMuted   bool             `json:"isMuted"`
	MuteUntil *time.Time       `json:"muteUntil,omitempty"`
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// Find 查找成员关系
	Find(ctx context.Context, groupUuid, userUuid string) (*model.GroupMember, error)
	// FindMembersWithUserInfo 查找群成员（含用户详细信息）
	FindMembersWithUserInfo(ctx context.Context, groupUuid string) ([]GroupMemberWithUserInfo, error)
	// GroupIdsByUser 用户加入的所有群
	GroupIdsByUser(ctx context.Context, userUuid string) ([]string, error)
	// ExistingUserIds 返回 userUuids 中已是成员的部分
	ExistingUserIds(ctx context.Context, groupUuid string, userUuids []string) ([]string, error)
	// Count 群成员数
	Count(ctx context.Context, groupUuid string) (int64, error)
	// Create 添加群成员
	Create(ctx context.Context, members ...*model.GroupMember) error
	// Delete 删除成员，不存在时返回 NotFound
	Delete(ctx context.Context, groupUuid, userUuid string) error
	// UpdateFields 按列更新成员
	UpdateFields(ctx context.Context, groupUuid, userUuid string, updates map[string]any) error
	// ReleaseExpiredMutes 解除 mute_until 已过期的禁言，返回影响行数
	ReleaseExpiredMutes(ctx context.Context, now time.Time) (int64, error)
}

// MessageRepository 消息数据访问接口
// 关系库与 MongoDB 各有一份实现
type MessageRepository interface {
	// Create 保存消息
	Create(ctx context.Context, msg *model.Message) error
	// FindByUuid 根据消息 id 查找
	FindByUuid(ctx context.Context, uuid string) (*model.Message, error)
	// Delete 硬删除消息
	Delete(ctx context.Context, uuid string) error
	// FindConversation 两人之间的私聊消息，新消息在前，返回总数
	FindConversation(ctx context.Context, userA, userB string, limit, skip int) ([]model.Message, int64, error)
	// FindGroupConversation 群消息，新消息在前，返回总数
	FindGroupConversation(ctx context.Context, groupId string, limit, skip int) ([]model.Message, int64, error)
	// MarkRead 将 sender -> recipient 的未读私聊消息标记为已读
	MarkRead(ctx context.Context, senderId, recipientId string) (int64, error)
	// RecentConversations 按对端聚合用户的私聊：最后一条消息与未读数
	RecentConversations(ctx context.Context, userId string) ([]model.ConversationSummary, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db          *gorm.DB
	opts        options
	User        UserRepository
	Group       GroupRepository
	GroupMember GroupMemberRepository
	Contact     ContactRepository
	Message     MessageRepository
}

type options struct {
	message MessageRepository
}

// Option 替换默认实现
type Option func(*options)

// WithMessageRepository 使用外部消息存储（如 MongoDB）
func WithMessageRepository(repo MessageRepository) Option {
	return func(o *options) {
		o.message = repo
	}
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB, opts ...Option) *Repositories {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return newRepositories(db, o)
}

func newRepositories(db *gorm.DB, o options) *Repositories {
	repos := &Repositories{
		db:          db,
		opts:        o,
		User:        NewUserRepository(db),
		Group:       NewGroupRepository(db),
		GroupMember: NewGroupMemberRepository(db),
		Contact:     NewContactRepository(db),
		Message:     NewMessageRepository(db),
	}
	if o.message != nil {
		repos.Message = o.message
	}
	return repos
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// 外部消息存储不参与关系库事务
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx, r.opts))
	})
}

// DB 底层连接，供健康检查与关闭使用
func (r *Repositories) DB() *gorm.DB {
	return r.db
}
