package repository

import (
	"context"
	"errors"

	"chat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.WithContext(ctx).First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByEmail 按邮箱查找用户，邮箱入库时已转小写
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.UserInfo, error) {
	var user model.UserInfo
	email = model.NormalizeEmail(email)
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 email=%s", email)
	}
	return &user, nil
}

// FindByUuids 按 UUID 列表查找用户
func (r *userRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var users []model.UserInfo
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// Search 邮箱或昵称包含关键字（不区分大小写），按注册时间倒序
func (r *userRepository) Search(ctx context.Context, keyword, excludeUuid string, limit int) ([]model.UserInfo, error) {
	query := r.db.WithContext(ctx).Where("uuid <> ?", excludeUuid)
	if keyword != "" {
		pattern := likePattern(model.NormalizeEmail(keyword))
		query = query.Where("(LOWER(email) LIKE ? "+likeEscape+" OR LOWER(nickname) LIKE ? "+likeEscape+")", pattern, pattern)
	}
	var users []model.UserInfo
	if err := query.Order("created_at DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "搜索用户")
	}
	return users, nil
}

// Exists 用户是否存在
func (r *userRepository) Exists(ctx context.Context, uuid string) (bool, error) {
	_, err := r.FindByUuid(ctx, uuid)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// Create 创建用户，邮箱重复时返回 Conflict
func (r *userRepository) Create(ctx context.Context, user *model.UserInfo) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// UpdateFields 按列更新用户资料
func (r *userRepository) UpdateFields(ctx context.Context, uuid string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.UserInfo{}).Where("uuid = ?", uuid).Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新用户 uuid=%s", uuid)
	}
	return nil
}
