package repository

import (
	"context"

	"chat_server/internal/model"

	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建好友关系 Repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// FindByUuid 按关系 UUID 查找
func (r *contactRepository) FindByUuid(ctx context.Context, uuid string) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).First(&contact, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 uuid=%s", uuid)
	}
	return &contact, nil
}

// FindBetween 通过 pair_key 查两人之间的关系，与方向无关
func (r *contactRepository) FindBetween(ctx context.Context, userA, userB string) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).First(&contact, "pair_key = ?", model.PairKey(userA, userB)).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友关系 %s<->%s", userA, userB)
	}
	return &contact, nil
}

// FindAcceptedByUser 用户作为任意一方的已通过关系
func (r *contactRepository) FindAcceptedByUser(ctx context.Context, userId string) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR recipient_id = ?)", model.ContactAccepted, userId, userId).
		Find(&contacts).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 user=%s", userId)
	}
	return contacts, nil
}

// FindPendingByRecipient 发给用户的待处理申请，新申请在前
func (r *contactRepository) FindPendingByRecipient(ctx context.Context, userId string) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("status = ? AND recipient_id = ?", model.ContactPending, userId).
		Order("created_at DESC").
		Find(&contacts).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询好友申请 user=%s", userId)
	}
	return contacts, nil
}

// FriendIds 用户所有好友的 id
func (r *contactRepository) FriendIds(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Select("CASE WHEN requester_id = ? THEN recipient_id ELSE requester_id END", userId).
		Where("status = ? AND (requester_id = ? OR recipient_id = ?)", model.ContactAccepted, userId, userId).
		Scan(&ids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询好友id user=%s", userId)
	}
	return ids, nil
}

// Create 创建关系，同一对用户重复创建返回 Conflict
func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	contact.PairKey = model.PairKey(contact.RequesterId, contact.RecipientId)
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return wrapDBError(err, "创建好友申请")
	}
	return nil
}

// UpdateIfStatus 条件更新，并发下只有一个请求能完成状态迁移
func (r *contactRepository) UpdateIfStatus(ctx context.Context, uuid string, status model.ContactStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("uuid = ? AND status = ?", uuid, status).
		Updates(updates)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "更新好友关系 uuid=%s", uuid)
	}
	return res.RowsAffected > 0, nil
}

// Delete 硬删除关系
func (r *contactRepository) Delete(ctx context.Context, uuid string) error {
	res := r.db.WithContext(ctx).Where("uuid = ?", uuid).Delete(&model.Contact{})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "删除好友关系 uuid=%s", uuid)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "删除好友关系 uuid=%s", uuid)
	}
	return nil
}
