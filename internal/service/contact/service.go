// Package contact 好友关系业务
// 一对用户之间只有一条关系记录，调用者所在的一侧由 Contact.SideOf 决定
package contact

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"chat_server/internal/dao/mysql/repository"
	myredis "chat_server/internal/dao/redis"
	"chat_server/internal/dto/request"
	"chat_server/internal/dto/respond"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/model"
	"chat_server/pkg/constants"
	"chat_server/pkg/errorx"
	"chat_server/pkg/util/random"
)

// userContactService 好友关系业务逻辑实现
type userContactService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher mq.Publisher
}

// NewContactService 构造函数
func NewContactService(repos *repository.Repositories, cache myredis.AsyncCacheService, publisher mq.Publisher) *userContactService {
	return &userContactService{repos: repos, cache: cache, publisher: publisher}
}

// SendRequest 按邮箱发送好友申请
func (u *userContactService) SendRequest(ctx context.Context, requesterId string, req request.FriendRequestRequest) (*respond.ContactRespond, error) {
	recipient, err := u.repos.User.FindByEmail(ctx, req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "该邮箱对应的用户不存在")
		}
		zap.L().Error("find recipient failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if recipient.Uuid == requesterId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能添加自己为好友")
	}

	// 两个方向都算已有关系
	existing, err := u.repos.Contact.FindBetween(ctx, requesterId, recipient.Uuid)
	if err == nil {
		return nil, existingRelationError(existing.Status)
	}
	if !errorx.IsNotFound(err) {
		zap.L().Error("find contact failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	contact := model.Contact{
		Uuid:            "C" + random.GetNowAndLenRandomString(11),
		RequesterId:     requesterId,
		RecipientId:     recipient.Uuid,
		Status:          model.ContactPending,
		RequesterGroup:  constants.DEFAULT_FRIEND_GROUP,
		RecipientGroup:  constants.DEFAULT_FRIEND_GROUP,
		LastInteraction: time.Now(),
		RequestMessage:  strings.TrimSpace(req.RequestMessage),
	}
	if err := u.repos.Contact.Create(ctx, &contact); err != nil {
		// 双方同时互加时由 pair_key 唯一索引拦下
		if errorx.IsConflict(err) {
			return nil, errorx.New(errorx.CodeConflict, "好友申请已发送，请等待对方处理")
		}
		zap.L().Error("create contact failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	mq.PublishAsync(ctx, u.publisher, mq.NewEvent(mq.EventContactRequested, requesterId, recipient.Uuid, contact.Uuid))
	rsp := respond.NewContactRespond(&contact)
	return &rsp, nil
}

func existingRelationError(status model.ContactStatus) error {
	switch status {
	case model.ContactAccepted:
		return errorx.New(errorx.CodeConflict, "你们已经是好友了")
	case model.ContactPending:
		return errorx.New(errorx.CodeConflict, "好友申请已发送，请等待对方处理")
	case model.ContactRejected:
		return errorx.New(errorx.CodeConflict, "好友申请已被拒绝")
	case model.ContactBlocked:
		return errorx.New(errorx.CodeConflict, "无法添加该用户")
	}
	return errorx.New(errorx.CodeConflict, "好友关系已存在")
}

// Accept 接收方同意申请
func (u *userContactService) Accept(ctx context.Context, contactId, userId string) (*respond.ContactRespond, error) {
	contact, err := u.pendingForRecipient(ctx, contactId, userId)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := u.transit(ctx, contact, map[string]any{
		"status":           model.ContactAccepted,
		"last_interaction": now,
	}); err != nil {
		return nil, err
	}
	contact.Status = model.ContactAccepted
	contact.LastInteraction = now

	u.evictFriendSets(ctx, contact.RequesterId, contact.RecipientId)
	mq.PublishAsync(ctx, u.publisher, mq.NewEvent(mq.EventContactAccepted, userId, contact.RequesterId, contact.Uuid))
	rsp := respond.NewContactRespond(contact)
	return &rsp, nil
}

// Reject 接收方拒绝申请
func (u *userContactService) Reject(ctx context.Context, contactId, userId, reason string) (*respond.ContactRespond, error) {
	contact, err := u.pendingForRecipient(ctx, contactId, userId)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := u.transit(ctx, contact, map[string]any{
		"status":        model.ContactRejected,
		"reject_reason": reason,
	}); err != nil {
		return nil, err
	}
	contact.Status = model.ContactRejected
	contact.RejectReason = reason

	mq.PublishAsync(ctx, u.publisher, mq.NewEvent(mq.EventContactRejected, userId, contact.RequesterId, contact.Uuid))
	rsp := respond.NewContactRespond(contact)
	return &rsp, nil
}

// pendingForRecipient 校验顺序：不存在 -> 非接收方 -> 非 pending
func (u *userContactService) pendingForRecipient(ctx context.Context, contactId, userId string) (*model.Contact, error) {
	contact, err := u.findContact(ctx, contactId)
	if err != nil {
		return nil, err
	}
	if contact.RecipientId != userId {
		return nil, errorx.New(errorx.CodeForbidden, "只有接收方可以处理该申请")
	}
	if contact.Status != model.ContactPending {
		return nil, errorx.New(errorx.CodeInvalidState, "该申请已处理")
	}
	return contact, nil
}

// transit 条件更新，并发处理同一申请时只有一方成功
func (u *userContactService) transit(ctx context.Context, contact *model.Contact, updates map[string]any) error {
	ok, err := u.repos.Contact.UpdateIfStatus(ctx, contact.Uuid, contact.Status, updates)
	if err != nil {
		zap.L().Error("update contact status failed", zap.String("contact_id", contact.Uuid), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if !ok {
		return errorx.New(errorx.CodeInvalidState, "该申请已处理")
	}
	return nil
}

// ListFriends 好友列表：置顶在前，其余按最近互动倒序
func (u *userContactService) ListFriends(ctx context.Context, userId string) (*respond.FriendListRespond, error) {
	contacts, err := u.repos.Contact.FindAcceptedByUser(ctx, userId)
	if err != nil {
		zap.L().Error("find friends failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	peerIds := make([]string, 0, len(contacts))
	for i := range contacts {
		peerIds = append(peerIds, contacts[i].PeerOf(userId))
	}
	users, err := u.usersById(ctx, peerIds)
	if err != nil {
		return nil, err
	}

	friends := make([]respond.FriendItem, 0, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		peer, ok := users[c.PeerOf(userId)]
		if !ok {
			continue
		}
		friends = append(friends, newFriendItem(c, userId, peer))
	}
	sort.SliceStable(friends, func(i, j int) bool {
		if friends[i].Pinned != friends[j].Pinned {
			return friends[i].Pinned
		}
		return friends[i].LastInteraction.After(friends[j].LastInteraction)
	})
	return &respond.FriendListRespond{Friends: friends, Total: len(friends)}, nil
}

// ListPending 发给我的待处理申请
func (u *userContactService) ListPending(ctx context.Context, userId string) (*respond.PendingListRespond, error) {
	contacts, err := u.repos.Contact.FindPendingByRecipient(ctx, userId)
	if err != nil {
		zap.L().Error("find pending requests failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	requesterIds := make([]string, 0, len(contacts))
	for i := range contacts {
		requesterIds = append(requesterIds, contacts[i].RequesterId)
	}
	users, err := u.usersById(ctx, requesterIds)
	if err != nil {
		return nil, err
	}

	requests := make([]respond.PendingRequestItem, 0, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		requester, ok := users[c.RequesterId]
		if !ok {
			continue
		}
		requests = append(requests, respond.PendingRequestItem{
			Id:                c.Uuid,
			RequesterId:       requester.Uuid,
			RequesterNickname: requester.DisplayName(),
			RequesterAvatar:   requester.Avatar,
			RequesterEmail:    requester.Email,
			RequestMessage:    c.RequestMessage,
			CreatedAt:         c.CreatedAt,
		})
	}
	return &respond.PendingListRespond{Requests: requests, Total: len(requests)}, nil
}

// UpdateNote 修改调用者一侧的备注
func (u *userContactService) UpdateNote(ctx context.Context, contactId, userId, note string) (*respond.FriendItem, error) {
	return u.updateSide(ctx, contactId, userId, model.SideFieldNote, strings.TrimSpace(note))
}

// UpdateGroupLabel 修改调用者一侧的分组
func (u *userContactService) UpdateGroupLabel(ctx context.Context, contactId, userId, label string) (*respond.FriendItem, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = constants.DEFAULT_FRIEND_GROUP
	}
	return u.updateSide(ctx, contactId, userId, model.SideFieldGroup, label)
}

// SetPinned 置顶或取消置顶
func (u *userContactService) SetPinned(ctx context.Context, contactId, userId string, pinned bool) (*respond.FriendItem, error) {
	return u.updateSide(ctx, contactId, userId, model.SideFieldPinned, pinned)
}

func (u *userContactService) updateSide(ctx context.Context, contactId, userId string, field model.SideField, value any) (*respond.FriendItem, error) {
	contact, err := u.acceptedForParty(ctx, contactId, userId)
	if err != nil {
		return nil, err
	}
	side := contact.SideOf(userId)
	ok, err := u.repos.Contact.UpdateIfStatus(ctx, contact.Uuid, model.ContactAccepted, map[string]any{
		side.Column(field): value,
	})
	if err != nil {
		zap.L().Error("update contact side failed", zap.String("contact_id", contact.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.New(errorx.CodeInvalidState, "你们已不是好友")
	}

	contact, err = u.findContact(ctx, contactId)
	if err != nil {
		return nil, err
	}
	peer, err := u.repos.User.FindByUuid(ctx, contact.PeerOf(userId))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "好友不存在")
		}
		zap.L().Error("find friend failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	item := newFriendItem(contact, userId, peer)
	return &item, nil
}

// RemoveFriend 删除好友，双方任一人可操作
func (u *userContactService) RemoveFriend(ctx context.Context, contactId, userId string) error {
	contact, err := u.acceptedForParty(ctx, contactId, userId)
	if err != nil {
		return err
	}
	if err := u.repos.Contact.Delete(ctx, contact.Uuid); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "好友关系不存在")
		}
		zap.L().Error("delete contact failed", zap.String("contact_id", contact.Uuid), zap.Error(err))
		return errorx.ErrServerBusy
	}
	u.evictFriendSets(ctx, contact.RequesterId, contact.RecipientId)
	mq.PublishAsync(ctx, u.publisher, mq.NewEvent(mq.EventContactRemoved, userId, contact.PeerOf(userId), contact.Uuid))
	return nil
}

// acceptedForParty 校验顺序：不存在 -> 非 accepted -> 非当事人
func (u *userContactService) acceptedForParty(ctx context.Context, contactId, userId string) (*model.Contact, error) {
	contact, err := u.findContact(ctx, contactId)
	if err != nil {
		return nil, err
	}
	if contact.Status != model.ContactAccepted {
		return nil, errorx.New(errorx.CodeInvalidState, "你们还不是好友")
	}
	if !contact.IsParty(userId) {
		return nil, errorx.New(errorx.CodeForbidden, "无权操作该好友关系")
	}
	return contact, nil
}

func (u *userContactService) findContact(ctx context.Context, contactId string) (*model.Contact, error) {
	contact, err := u.repos.Contact.FindByUuid(ctx, contactId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "好友关系不存在")
		}
		zap.L().Error("find contact failed", zap.String("contact_id", contactId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return contact, nil
}

// AreFriends 两人之间是否存在已通过的关系
func (u *userContactService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	if userA == userB {
		return false, nil
	}
	key := constants.CACHE_KEY_FRIEND_SET + userA
	if exists, err := u.cache.Exists(ctx, key); err == nil && exists {
		if member, err := u.cache.IsSetMember(ctx, key, userB); err == nil {
			return member, nil
		}
	}
	ids, err := u.loadFriendIds(ctx, userA)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, userB), nil
}

// FriendIds 用户所有好友 id，先读 Redis 集合
func (u *userContactService) FriendIds(ctx context.Context, userId string) ([]string, error) {
	key := constants.CACHE_KEY_FRIEND_SET + userId
	if exists, err := u.cache.Exists(ctx, key); err == nil && exists {
		if ids, err := u.cache.GetSetMembers(ctx, key); err == nil {
			return ids, nil
		}
	}
	return u.loadFriendIds(ctx, userId)
}

// loadFriendIds 查库并异步回填好友集合
// 查库前记下代数，回填时代数已变说明关系刚被修改，放弃回填
func (u *userContactService) loadFriendIds(ctx context.Context, userId string) ([]string, error) {
	genKey := constants.CACHE_KEY_FRIEND_GEN + userId
	gen, genErr := u.cache.Get(ctx, genKey)

	ids, err := u.repos.Contact.FriendIds(ctx, userId)
	if err != nil {
		zap.L().Error("load friend ids failed", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	// 空集合无法存入 Redis，下次仍查库
	if len(ids) == 0 || genErr != nil {
		return ids, nil
	}
	key := constants.CACHE_KEY_FRIEND_SET + userId
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	u.cache.SubmitTask(func() {
		written, err := u.cache.AddToSetIfMatch(context.Background(), genKey, gen, key, time.Minute*constants.REDIS_TIMEOUT, members...)
		if err != nil {
			zap.L().Warn("write friend set failed", zap.String("key", key), zap.Error(err))
			return
		}
		if !written {
			zap.L().Debug("friend set changed while loading, skip backfill", zap.String("key", key))
		}
	})
	return ids, nil
}

// evictFriendSets 关系变化后先推进双方代数，再删除好友集合
func (u *userContactService) evictFriendSets(ctx context.Context, userIds ...string) {
	keys := make([]string, 0, len(userIds))
	for _, id := range userIds {
		genKey := constants.CACHE_KEY_FRIEND_GEN + id
		if _, err := u.cache.Incr(ctx, genKey); err != nil {
			zap.L().Warn("bump friend set generation failed", zap.String("key", genKey), zap.Error(err))
		} else {
			_ = u.cache.Expire(ctx, genKey, constants.FRIEND_GEN_TIMEOUT)
		}
		keys = append(keys, constants.CACHE_KEY_FRIEND_SET+id)
	}
	if err := u.cache.Delete(ctx, keys...); err != nil {
		zap.L().Warn("evict friend sets failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (u *userContactService) usersById(ctx context.Context, ids []string) (map[string]*model.UserInfo, error) {
	users, err := u.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		zap.L().Error("find users failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	byId := make(map[string]*model.UserInfo, len(users))
	for i := range users {
		byId[users[i].Uuid] = &users[i]
	}
	return byId, nil
}

func newFriendItem(c *model.Contact, userId string, peer *model.UserInfo) respond.FriendItem {
	view := c.View(c.SideOf(userId))
	return respond.FriendItem{
		Id:              c.Uuid,
		FriendId:        peer.Uuid,
		Nickname:        peer.DisplayName(),
		Avatar:          peer.Avatar,
		Email:           peer.Email,
		Status:          peer.Status,
		Note:            view.Note,
		Group:           view.Group,
		Pinned:          view.Pinned,
		LastInteraction: c.LastInteraction,
	}
}
