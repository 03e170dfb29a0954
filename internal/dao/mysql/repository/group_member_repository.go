// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupMemberRepository 接口，处理群成员相关的数据库操作
package repository

import (
	"context"
	"time"

	"chat_server/internal/model"

	"gorm.io/gorm"
)

// groupMemberRepository GroupMemberRepository 接口的实现
type groupMemberRepository struct {
	db *gorm.DB
}

// NewGroupMemberRepository 创建 GroupMemberRepository 实例
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// Find 根据群组和用户查找成员关系
func (r *groupMemberRepository) Find(ctx context.Context, groupUuid, userUuid string) (*model.GroupMember, error) {
	var member model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		First(&member).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &member, nil
}

// FindMembersWithUserInfo 联表查询群成员及其用户资料
// 群主在前，其次管理员，同角色按入群时间
func (r *groupMemberRepository) FindMembersWithUserInfo(ctx context.Context, groupUuid string) ([]GroupMemberWithUserInfo, error) {
	var members []GroupMemberWithUserInfo
	err := r.db.WithContext(ctx).Table("group_member AS gm").
		Select(`gm.user_uuid AS user_id,
			CASE WHEN gm.nickname <> '' THEN gm.nickname ELSE u.nickname END AS nickname,
			u.avatar AS avatar, gm.role AS role, gm.joined_at AS joined_at,
			gm.is_muted AS is_muted, gm.mute_until AS mute_until`).
		Joins("JOIN user_info AS u ON u.uuid = gm.user_uuid AND u.deleted_at IS NULL").
		Where("gm.group_uuid = ?", groupUuid).
		Order("CASE gm.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END").
		Order("gm.joined_at ASC").
		Scan(&members).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询群成员详情 group_uuid=%s", groupUuid)
	}
	return members, nil
}

// GroupIdsByUser 用户加入的所有群
func (r *groupMemberRepository) GroupIdsByUser(ctx context.Context, userUuid string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("user_uuid = ?", userUuid).
		Pluck("group_uuid", &ids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在群 user_uuid=%s", userUuid)
	}
	return ids, nil
}

// ExistingUserIds userUuids 中已在群内的部分
func (r *groupMemberRepository) ExistingUserIds(ctx context.Context, groupUuid string, userUuids []string) ([]string, error) {
	if len(userUuids) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_uuid = ? AND user_uuid IN ?", groupUuid, userUuids).
		Pluck("user_uuid", &ids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询已有成员 group_uuid=%s", groupUuid)
	}
	return ids, nil
}

// Count 群成员数
func (r *groupMemberRepository) Count(ctx context.Context, groupUuid string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.GroupMember{}).Where("group_uuid = ?", groupUuid).Count(&n).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计群成员 group_uuid=%s", groupUuid)
	}
	return n, nil
}

// Create 添加群成员，重复加入返回 Conflict
func (r *groupMemberRepository) Create(ctx context.Context, members ...*model.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(members).Error; err != nil {
		return wrapDBError(err, "添加群成员")
	}
	return nil
}

// Delete 删除成员
func (r *groupMemberRepository) Delete(ctx context.Context, groupUuid, userUuid string) error {
	res := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Delete(&model.GroupMember{})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "删除群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return nil
}

// UpdateFields 按列更新成员
func (r *groupMemberRepository) UpdateFields(ctx context.Context, groupUuid, userUuid string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "更新群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return nil
}

// ReleaseExpiredMutes 解除已到期的禁言
func (r *groupMemberRepository) ReleaseExpiredMutes(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("is_muted = ? AND mute_until IS NOT NULL AND mute_until <= ?", true, now).
		Updates(map[string]any{"is_muted": false, "mute_until": nil})
	if res.Error != nil {
		return 0, wrapDBError(res.Error, "解除过期禁言")
	}
	return res.RowsAffected, nil
}
