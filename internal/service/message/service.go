package message

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/dto/request"
	"chat_server/internal/dto/respond"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/model"
	"chat_server/pkg/errorx"
	"chat_server/pkg/util/snowflake"
)

// FriendChecker 好友关系查询，由好友服务提供
type FriendChecker interface {
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	FriendIds(ctx context.Context, userId string) ([]string, error)
}

// messageService 消息业务逻辑实现
type messageService struct {
	repos     *repository.Repositories
	friends   FriendChecker
	publisher mq.Publisher
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories, friends FriendChecker, publisher mq.Publisher) *messageService {
	return &messageService{repos: repos, friends: friends, publisher: publisher}
}

// Send 发送单聊或群聊消息
func (m *messageService) Send(ctx context.Context, senderId string, req request.SendMessageRequest) (*model.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	msgType := model.MessageText
	if req.Type != "" {
		msgType = model.MessageType(req.Type)
	}
	if !msgType.Valid() {
		return nil, errorx.New(errorx.CodeInvalidParam, "不支持的消息类型")
	}

	target := model.ToUser(req.RecipientId)
	if req.RecipientModel == string(model.RecipientGroup) {
		target = model.ToGroup(req.RecipientId)
	}

	now := time.Now()
	switch target.Kind {
	case model.RecipientGroup:
		if err := m.checkGroupSender(ctx, target.ID, senderId, now); err != nil {
			return nil, err
		}
	default:
		if err := m.checkFriendTarget(ctx, senderId, target.ID); err != nil {
			return nil, err
		}
	}

	msg := model.Message{
		Uuid:     snowflake.GenerateIDString(),
		SenderId: senderId,
		Content:  req.Content,
		Type:     msgType,
		Status:   model.MessageSent,
	}
	msg.SetTarget(target)
	if req.ReplyTo != "" {
		// 只能回复同一会话内的消息，其他会话的消息按不存在处理
		reply, err := m.repos.Message.FindByUuid(ctx, req.ReplyTo)
		if err != nil && !errorx.IsNotFound(err) {
			zap.L().Error("find reply message failed", zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		if err != nil || !reply.InConversation(senderId, target) {
			return nil, errorx.New(errorx.CodeNotFound, "回复的消息不存在")
		}
		replyTo := req.ReplyTo
		msg.ReplyTo = &replyTo
	}
	if len(req.Metadata) > 0 {
		msg.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := m.repos.Message.Create(ctx, &msg); err != nil {
		zap.L().Error("save message failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if target.Kind == model.RecipientGroup {
		if err := m.repos.Group.TouchMessage(ctx, target.ID, now); err != nil {
			zap.L().Warn("update group stats failed", zap.String("group_id", target.ID), zap.Error(err))
		}
	}

	mq.PublishAsync(ctx, m.publisher, mq.NewEvent(mq.EventMessageSent, senderId, target.ID, msg.Uuid))
	return &msg, nil
}

// checkFriendTarget 单聊：接收者存在且双方为好友
func (m *messageService) checkFriendTarget(ctx context.Context, senderId, recipientId string) error {
	if err := m.ensureUser(ctx, recipientId, "接收者不存在"); err != nil {
		return err
	}
	ok, err := m.friends.AreFriends(ctx, senderId, recipientId)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.New(errorx.CodeForbidden, "只能给好友发送消息")
	}
	return nil
}

// checkGroupSender 群聊：群存在、发送者是成员且未被禁言
func (m *messageService) checkGroupSender(ctx context.Context, groupId, senderId string, now time.Time) error {
	if _, err := m.findActiveGroup(ctx, groupId); err != nil {
		return err
	}
	member, err := m.repos.GroupMember.Find(ctx, groupId, senderId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeForbidden, "你不是该群成员")
		}
		zap.L().Error("find group member failed", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if member.MutedAt(now) {
		return errorx.New(errorx.CodeForbidden, "你已被禁言")
	}
	return nil
}

// GetConversation 私聊记录，返回时按时间正序，并把对方发来的未读消息标为已读
func (m *messageService) GetConversation(ctx context.Context, userId, targetId string, page request.PageQuery) (*respond.ConversationRespond, error) {
	if err := m.checkFriendTarget(ctx, userId, targetId); err != nil {
		return nil, err
	}

	messages, total, err := m.repos.Message.FindConversation(ctx, userId, targetId, page.Limit, page.Skip)
	if err != nil {
		zap.L().Error("find conversation failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if _, err := m.repos.Message.MarkRead(ctx, targetId, userId); err != nil {
		zap.L().Error("mark conversation read failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	// 本页中对方发来的消息同步为已读
	for i := range messages {
		if messages[i].SenderId == targetId && !messages[i].IsRead {
			messages[i].IsRead = true
			messages[i].Status = model.MessageRead
		}
	}
	slices.Reverse(messages)
	return &respond.ConversationRespond{Messages: messages, Total: total}, nil
}

// GetGroupConversation 群消息记录，仅成员可见
func (m *messageService) GetGroupConversation(ctx context.Context, userId, groupId string, page request.PageQuery) (*respond.ConversationRespond, error) {
	if _, err := m.findActiveGroup(ctx, groupId); err != nil {
		return nil, err
	}
	if _, err := m.repos.GroupMember.Find(ctx, groupId, userId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeForbidden, "你不是该群成员")
		}
		zap.L().Error("find group member failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	messages, total, err := m.repos.Message.FindGroupConversation(ctx, groupId, page.Limit, page.Skip)
	if err != nil {
		zap.L().Error("find group conversation failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	slices.Reverse(messages)
	return &respond.ConversationRespond{Messages: messages, Total: total}, nil
}

// GetRecentConversations 按对端聚合的最近会话，只保留仍是好友的
func (m *messageService) GetRecentConversations(ctx context.Context, userId string) (*respond.RecentConversationsRespond, error) {
	summaries, err := m.repos.Message.RecentConversations(ctx, userId)
	if err != nil {
		zap.L().Error("aggregate recent conversations failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	friendIds, err := m.friends.FriendIds(ctx, userId)
	if err != nil {
		return nil, err
	}

	peerIds := make([]string, 0, len(summaries))
	for i := range summaries {
		if slices.Contains(friendIds, summaries[i].PeerId) {
			peerIds = append(peerIds, summaries[i].PeerId)
		}
	}
	users, err := m.repos.User.FindByUuids(ctx, peerIds)
	if err != nil {
		zap.L().Error("find conversation peers failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	peers := make(map[string]*model.UserInfo, len(users))
	for i := range users {
		peers[users[i].Uuid] = &users[i]
	}

	items := make([]respond.RecentConversationItem, 0, len(peerIds))
	for i := range summaries {
		s := &summaries[i]
		peer, ok := peers[s.PeerId]
		if !ok {
			continue
		}
		items = append(items, respond.RecentConversationItem{
			PeerId: s.PeerId,
			User: respond.PeerBrief{
				Id:       peer.Uuid,
				Nickname: peer.DisplayName(),
				Avatar:   peer.Avatar,
				Email:    peer.Email,
				Status:   peer.Status,
			},
			LastMessage: s.LastMessage,
			UnreadCount: s.UnreadCount,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastMessage.CreatedAt.After(items[j].LastMessage.CreatedAt)
	})
	return &respond.RecentConversationsRespond{Conversations: items, Total: len(items)}, nil
}

// MarkAsRead 将 sender 发给 userId 的未读消息全部标为已读
func (m *messageService) MarkAsRead(ctx context.Context, userId, senderId string) (*respond.MarkReadRespond, error) {
	if err := m.ensureUser(ctx, senderId, "发送者不存在"); err != nil {
		return nil, err
	}
	n, err := m.repos.Message.MarkRead(ctx, senderId, userId)
	if err != nil {
		zap.L().Error("mark read failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.MarkReadRespond{UpdatedCount: n}, nil
}

// Delete 发送者删除自己的消息
func (m *messageService) Delete(ctx context.Context, messageId, userId string) error {
	msg, err := m.repos.Message.FindByUuid(ctx, messageId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		zap.L().Error("find message failed", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if msg.SenderId != userId {
		return errorx.New(errorx.CodeForbidden, "只能删除自己发送的消息")
	}
	if err := m.repos.Message.Delete(ctx, messageId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		zap.L().Error("delete message failed", zap.Error(err))
		return errorx.ErrServerBusy
	}
	mq.PublishAsync(ctx, m.publisher, mq.NewEvent(mq.EventMessageDeleted, userId, msg.RecipientId, messageId))
	return nil
}

func (m *messageService) ensureUser(ctx context.Context, userId, notFoundMsg string) error {
	exists, err := m.repos.User.Exists(ctx, userId)
	if err != nil {
		zap.L().Error("check user failed", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if !exists {
		return errorx.New(errorx.CodeUserNotExist, notFoundMsg)
	}
	return nil
}

func (m *messageService) findActiveGroup(ctx context.Context, groupId string) (*model.GroupInfo, error) {
	group, err := m.repos.Group.FindActive(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		zap.L().Error("find group failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return group, nil
}
