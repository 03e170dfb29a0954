package repository

import (
	"context"
	"sort"

	"chat_server/internal/model"
	"chat_server/pkg/constants"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建关系库消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 保存消息
func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapDBError(err, "保存消息")
	}
	return nil
}

// FindByUuid 根据消息 id 查找
func (r *messageRepository) FindByUuid(ctx context.Context, uuid string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).First(&msg, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%s", uuid)
	}
	return &msg, nil
}

// Delete 硬删除消息
func (r *messageRepository) Delete(ctx context.Context, uuid string) error {
	res := r.db.WithContext(ctx).Where("uuid = ?", uuid).Delete(&model.Message{})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除消息 uuid=%s", uuid)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "删除消息 uuid=%s", uuid)
	}
	return nil
}

// FindConversation 私聊消息，新消息在前
func (r *messageRepository) FindConversation(ctx context.Context, userA, userB string, limit, skip int) ([]model.Message, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("recipient_model = ?", model.RecipientUser).
			Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))", userA, userB, userB, userA)
	}
	return r.page(ctx, scope, limit, skip)
}

// FindGroupConversation 群消息，新消息在前
func (r *messageRepository) FindGroupConversation(ctx context.Context, groupId string, limit, skip int) ([]model.Message, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("recipient_model = ? AND recipient_id = ?", model.RecipientGroup, groupId)
	}
	return r.page(ctx, scope, limit, skip)
}

func (r *messageRepository) page(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit, skip int) ([]model.Message, int64, error) {
	limit, skip = normalizePage(limit, skip, constants.DEFAULT_PAGE_LIMIT, constants.MAX_PAGE_LIMIT)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计消息")
	}
	var msgs []model.Message
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(skip).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "查询消息")
	}
	return msgs, total, nil
}

// MarkRead 批量标记已读
func (r *messageRepository) MarkRead(ctx context.Context, senderId, recipientId string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("recipient_model = ? AND sender_id = ? AND recipient_id = ? AND is_read = ?",
			model.RecipientUser, senderId, recipientId, false).
		Updates(map[string]any{"is_read": true, "status": model.MessageRead})
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记已读 %s->%s", senderId, recipientId)
	}
	return res.RowsAffected, nil
}

// conversationRow 按对端聚合的中间结果
type conversationRow struct {
	PeerId      string
	LastId      uint
	UnreadCount int64
}

// RecentConversations 按对端分组：自增 id 最大的一条为最后一条消息
// 结果按最后一条消息时间倒序
func (r *messageRepository) RecentConversations(ctx context.Context, userId string) ([]model.ConversationSummary, error) {
	var rows []conversationRow
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select(`CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END AS peer_id,
			MAX(id) AS last_id,
			SUM(CASE WHEN recipient_id = ? AND is_read = ? THEN 1 ELSE 0 END) AS unread_count`,
			userId, userId, false).
		Where("recipient_model = ? AND (sender_id = ? OR recipient_id = ?)", model.RecipientUser, userId, userId).
		Group("peer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "聚合最近会话 user=%s", userId)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LastId)
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&msgs).Error; err != nil {
		return nil, wrapDBError(err, "查询最后一条消息")
	}
	byId := make(map[uint]model.Message, len(msgs))
	for _, m := range msgs {
		byId[m.ID] = m
	}

	result := make([]model.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		last, ok := byId[row.LastId]
		if !ok {
			continue
		}
		result = append(result, model.ConversationSummary{
			PeerId:      row.PeerId,
			LastMessage: last,
			UnreadCount: row.UnreadCount,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].LastMessage, result[j].LastMessage
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return result, nil
}
