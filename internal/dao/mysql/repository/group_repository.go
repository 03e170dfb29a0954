package repository

import (
	"context"
	"time"

	"chat_server/internal/model"
	"chat_server/pkg/constants"

	"gorm.io/gorm"
)

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建群组 Repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("status <> ?", model.GroupDeleted)
}

// FindByUuid 按 UUID 查找（含已解散）
func (r *groupRepository) FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.WithContext(ctx).First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindActive 已解散的群视为不存在
func (r *groupRepository) FindActive(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.active(ctx).First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindByInviteCode 按邀请码查找
func (r *groupRepository) FindByInviteCode(ctx context.Context, code string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.active(ctx).First(&group, "invite_code = ?", code).Error; err != nil {
		return nil, wrapDBError(err, "邀请码无效")
	}
	return &group, nil
}

// FindActiveByUuids 批量查找，最近活跃的在前
func (r *groupRepository) FindActiveByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var groups []model.GroupInfo
	err := r.active(ctx).Where("uuid IN ?", uuids).
		Order("stats_last_activity DESC").
		Find(&groups).Error
	if err != nil {
		return nil, wrapDBError(err, "批量查询群组")
	}
	return groups, nil
}

// ListPublic 分页获取公开群，成员多的在前
func (r *groupRepository) ListPublic(ctx context.Context, limit, skip int) ([]model.GroupInfo, int64, error) {
	limit, skip = normalizePage(limit, skip, constants.DEFAULT_PAGE_LIMIT, constants.MAX_PAGE_LIMIT)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.GroupInfo{}).
			Where("status = ? AND type = ?", model.GroupActive, model.GroupPublic)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "统计公开群")
	}
	var groups []model.GroupInfo
	err := base().Order("stats_member_count DESC").Order("id DESC").
		Limit(limit).Offset(skip).
		Find(&groups).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "查询公开群")
	}
	return groups, total, nil
}

// Search 名称或描述包含关键字，secret 群不参与搜索
func (r *groupRepository) Search(ctx context.Context, keyword string, limit int) ([]model.GroupInfo, error) {
	limit, _ = normalizePage(limit, 0, constants.USER_SEARCH_LIMIT, constants.MAX_PAGE_LIMIT)
	pattern := likePattern(keyword)
	var groups []model.GroupInfo
	err := r.db.WithContext(ctx).
		Where("status = ? AND type <> ?", model.GroupActive, model.GroupSecret).
		Where("(name LIKE ? "+likeEscape+" OR description LIKE ? "+likeEscape+")", pattern, pattern).
		Order("stats_member_count DESC").
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, wrapDBError(err, "搜索群组")
	}
	return groups, nil
}

// Create 创建群组
func (r *groupRepository) Create(ctx context.Context, group *model.GroupInfo) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

// UpdateFields 按列更新群组
func (r *groupRepository) UpdateFields(ctx context.Context, uuid string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.GroupInfo{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新群组 uuid=%s", uuid)
	}
	return nil
}

// SetMemberCount 写入成员数
func (r *groupRepository) SetMemberCount(ctx context.Context, uuid string, count int64) error {
	err := r.db.WithContext(ctx).Model(&model.GroupInfo{}).Where("uuid = ?", uuid).
		Updates(map[string]any{
			"stats_member_count":  count,
			"stats_last_activity": time.Now(),
		}).Error
	if err != nil {
		return wrapDBErrorf(err, "更新群成员数 uuid=%s", uuid)
	}
	return nil
}

// TouchMessage 群消息数 +1
func (r *groupRepository) TouchMessage(ctx context.Context, uuid string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.GroupInfo{}).Where("uuid = ?", uuid).
		Updates(map[string]any{
			"stats_message_count": gorm.Expr("stats_message_count + ?", 1),
			"stats_last_activity": at,
		}).Error
	if err != nil {
		return wrapDBErrorf(err, "更新群消息统计 uuid=%s", uuid)
	}
	return nil
}
