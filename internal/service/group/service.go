package group

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/dto/request"
	"chat_server/internal/dto/respond"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/model"
	"chat_server/pkg/constants"
	"chat_server/pkg/errorx"
	"chat_server/pkg/util/random"
)

// groupInfoService 群组业务逻辑实现
type groupInfoService struct {
	repos     *repository.Repositories
	publisher mq.Publisher
}

// newInviteCode 生成邀请码，测试中可替换
var newInviteCode = func() string {
	return random.GetInviteCode(constants.INVITE_CODE_LENGTH)
}

// createAttempts 群 id 或邀请码撞上唯一索引时的最大尝试次数
const createAttempts = 3

// NewGroupService 构造函数
func NewGroupService(repos *repository.Repositories, publisher mq.Publisher) *groupInfoService {
	return &groupInfoService{repos: repos, publisher: publisher}
}

// Create 创建群组，创建者是唯一的群主成员
func (g *groupInfoService) Create(ctx context.Context, creatorId string, req request.CreateGroupRequest) (*respond.GroupDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
	}
	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = constants.DEFAULT_MAX_MEMBERS
	}
	if maxMembers < constants.MIN_MAX_MEMBERS || maxMembers > constants.MAX_MAX_MEMBERS {
		return nil, errorx.New(errorx.CodeInvalidParam, "群人数上限需在 2 到 2000 之间")
	}
	groupType := model.GroupPublic
	if req.IsPrivate {
		groupType = model.GroupPrivate
	}

	now := time.Now()
	group := model.GroupInfo{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Avatar:      constants.DEFAULT_GROUP_AVATAR,
		CreatorId:   creatorId,
		Type:        groupType,
		Status:      model.GroupActive,
		Settings:    model.DefaultGroupSettings(maxMembers),
		Tags:        datatypes.JSONSlice[string](cleanTags(req.Tags)),
		Stats:       model.GroupStats{MemberCount: 1, LastActivity: now},
	}

	var err error
	for i := 0; i < createAttempts; i++ {
		group.Uuid = "G" + random.GetNowAndLenRandomString(11)
		group.InviteCode = newInviteCode()
		owner := model.GroupMember{
			GroupUuid: group.Uuid,
			UserUuid:  creatorId,
			Role:      model.RoleOwner,
			JoinedAt:  now,
		}
		err = g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			if err := tx.Group.Create(ctx, &group); err != nil {
				return err
			}
			if err := tx.GroupMember.Create(ctx, &owner); err != nil {
				return err
			}
			_, err := recount(ctx, tx, group.Uuid)
			return err
		})
		if !isStoreConflict(err) {
			break
		}
		zap.L().Warn("group id or invite code collided, retrying", zap.Int("attempt", i+1))
	}
	if err != nil {
		return nil, g.fail(err, "create group")
	}

	zap.L().Info("group created", zap.String("group_id", group.Uuid), zap.String("creator", creatorId))
	mq.PublishAsync(ctx, g.publisher, mq.NewEvent(mq.EventGroupCreated, creatorId, "", group.Uuid))
	return g.buildDetail(ctx, &group, creatorId)
}

// Invite 邀请用户入群，全部成功或全部失败
func (g *groupInfoService) Invite(ctx context.Context, groupId, actorId string, userIds []string) (*respond.InviteRespond, error) {
	group, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !group.Settings.AllowMemberInvite {
		return nil, errorx.New(errorx.CodeForbidden, "该群只允许管理员邀请")
	}

	ids := dedupe(userIds)
	if len(ids) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "邀请列表不能为空")
	}
	users, err := g.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		return nil, g.fail(err, "find invitees")
	}
	if len(users) != len(ids) {
		return nil, errorx.New(errorx.CodeUserNotExist, "被邀请的用户不存在")
	}

	var count int64
	now := time.Now()
	err = g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.GroupMember.ExistingUserIds(ctx, groupId, ids)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errorx.Newf(errorx.CodeConflict, "用户 %s 已在群中", existing[0])
		}
		current, err := tx.GroupMember.Count(ctx, groupId)
		if err != nil {
			return err
		}
		if int(current)+len(ids) > group.Settings.MaxMembers {
			return errorx.New(errorx.CodeInvalidState, "超出群人数上限")
		}
		members := make([]*model.GroupMember, 0, len(ids))
		for _, id := range ids {
			members = append(members, &model.GroupMember{
				GroupUuid: groupId,
				UserUuid:  id,
				Role:      model.RoleMember,
				JoinedAt:  now,
			})
		}
		if err := tx.GroupMember.Create(ctx, members...); err != nil {
			return err
		}
		count, err = recount(ctx, tx, groupId)
		return err
	})
	if err != nil {
		return nil, g.failMembership(err, "invite members")
	}

	evt := mq.NewEvent(mq.EventGroupMemberJoined, actorId, "", groupId)
	evt.Payload = map[string]any{"userIds": ids}
	mq.PublishAsync(ctx, g.publisher, evt)
	return &respond.InviteRespond{Added: ids, MemberCount: count}, nil
}

// RemoveMember 踢出成员：群主可踢除自己外任何人，管理员只能踢普通成员
func (g *groupInfoService) RemoveMember(ctx context.Context, groupId, actorId, targetId string) error {
	group, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return err
	}
	if targetId == group.CreatorId {
		return errorx.New(errorx.CodeInvalidParam, "不能移除群主")
	}
	target, err := g.findMember(ctx, groupId, targetId)
	if err != nil {
		return err
	}
	switch actor.Role {
	case model.RoleOwner:
	case model.RoleAdmin:
		if target.Role != model.RoleMember {
			return errorx.New(errorx.CodeForbidden, "管理员只能移除普通成员")
		}
	default:
		return errorx.New(errorx.CodeForbidden, "无权移除成员")
	}

	if err := g.deleteMember(ctx, groupId, targetId); err != nil {
		return err
	}
	mq.PublishAsync(ctx, g.publisher, mq.NewEvent(mq.EventGroupMemberRemoved, actorId, targetId, groupId))
	return nil
}

// UpdateRole 修改成员角色，只能在 member 与 admin 之间切换
func (g *groupInfoService) UpdateRole(ctx context.Context, groupId, actorId, targetId, role string) error {
	newRole := model.MemberRole(role)
	switch newRole {
	case model.RoleMember, model.RoleAdmin:
	case model.RoleOwner:
		return errorx.New(errorx.CodeInvalidParam, "不支持转让群主")
	default:
		return errorx.New(errorx.CodeInvalidParam, "无效的角色")
	}

	_, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return err
	}
	if actorId == targetId {
		return errorx.New(errorx.CodeForbidden, "不能修改自己的角色")
	}
	target, err := g.findMember(ctx, groupId, targetId)
	if err != nil {
		return err
	}
	if target.Role == model.RoleOwner {
		return errorx.New(errorx.CodeForbidden, "不能修改群主的角色")
	}
	switch actor.Role {
	case model.RoleOwner:
	case model.RoleAdmin:
		if target.Role != model.RoleMember {
			return errorx.New(errorx.CodeForbidden, "管理员只能修改普通成员的角色")
		}
	default:
		return errorx.New(errorx.CodeForbidden, "无权修改成员角色")
	}

	if err := g.repos.GroupMember.UpdateFields(ctx, groupId, targetId, map[string]any{"role": newRole}); err != nil {
		return g.fail(err, "update member role")
	}
	return nil
}

// Leave 主动退群，创建者只能解散群
func (g *groupInfoService) Leave(ctx context.Context, groupId, userId string) error {
	group, err := g.findGroup(ctx, groupId)
	if err != nil {
		return err
	}
	if _, err := g.findMember(ctx, groupId, userId); err != nil {
		return err
	}
	if userId == group.CreatorId {
		return errorx.New(errorx.CodeInvalidState, "群主不能退群，请解散群组")
	}
	if err := g.deleteMember(ctx, groupId, userId); err != nil {
		return err
	}
	mq.PublishAsync(ctx, g.publisher, mq.NewEvent(mq.EventGroupMemberRemoved, userId, userId, groupId))
	return nil
}

// Delete 群主解散群组（软删除）
func (g *groupInfoService) Delete(ctx context.Context, groupId, actorId string) error {
	group, err := g.findGroup(ctx, groupId)
	if err != nil {
		return err
	}
	if group.CreatorId != actorId {
		return errorx.New(errorx.CodeForbidden, "只有群主可以解散群组")
	}
	if err := g.repos.Group.UpdateFields(ctx, groupId, map[string]any{"status": model.GroupDeleted}); err != nil {
		return g.fail(err, "delete group")
	}
	zap.L().Info("group deleted", zap.String("group_id", groupId))
	mq.PublishAsync(ctx, g.publisher, mq.NewEvent(mq.EventGroupDeleted, actorId, "", groupId))
	return nil
}

// GetInviteCode 管理员可查看；允许成员邀请时普通成员也可查看
func (g *groupInfoService) GetInviteCode(ctx context.Context, groupId, actorId string) (*respond.InviteCodeRespond, error) {
	group, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !group.Settings.AllowMemberInvite {
		return nil, errorx.New(errorx.CodeForbidden, "无权查看邀请码")
	}
	return &respond.InviteCodeRespond{InviteCode: group.InviteCode}, nil
}

// ResetInviteCode 重新生成邀请码，旧码立即失效
func (g *groupInfoService) ResetInviteCode(ctx context.Context, groupId, actorId string) (*respond.InviteCodeRespond, error) {
	_, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, errorx.New(errorx.CodeForbidden, "只有群主或管理员可以重置邀请码")
	}
	// 邀请码撞上唯一索引时换一个重试
	for i := 0; i < createAttempts; i++ {
		code := newInviteCode()
		err = g.repos.Group.UpdateFields(ctx, groupId, map[string]any{"invite_code": code})
		if err == nil {
			return &respond.InviteCodeRespond{InviteCode: code}, nil
		}
		if !errorx.IsConflict(err) {
			break
		}
	}
	zap.L().Error("reset invite code failed", zap.String("group_id", groupId), zap.Error(err))
	return nil, errorx.ErrServerBusy
}

// JoinByInviteCode 通过邀请码入群
func (g *groupInfoService) JoinByInviteCode(ctx context.Context, userId, code string) (*respond.GroupDetail, error) {
	group, err := g.repos.Group.FindByInviteCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "邀请码无效")
		}
		return nil, g.fail(err, "find group by invite code")
	}
	if group.Status != model.GroupActive {
		return nil, errorx.New(errorx.CodeNotFound, "邀请码无效")
	}
	return g.addMember(ctx, group, userId)
}

// Join 直接加入无需审批的公开群
func (g *groupInfoService) Join(ctx context.Context, groupId, userId string) (*respond.GroupDetail, error) {
	group, err := g.findGroup(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if group.Type == model.GroupSecret {
		return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
	}
	if group.Type != model.GroupPublic || group.Settings.RequireApproval {
		return nil, errorx.New(errorx.CodeForbidden, "该群需要邀请才能加入")
	}
	return g.addMember(ctx, group, userId)
}

func (g *groupInfoService) addMember(ctx context.Context, group *model.GroupInfo, userId string) (*respond.GroupDetail, error) {
	err := g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.GroupMember.Find(ctx, group.Uuid, userId); err == nil {
			return errorx.New(errorx.CodeConflict, "你已是该群成员")
		} else if !errorx.IsNotFound(err) {
			return err
		}
		current, err := tx.GroupMember.Count(ctx, group.Uuid)
		if err != nil {
			return err
		}
		if int(current) >= group.Settings.MaxMembers {
			return errorx.New(errorx.CodeInvalidState, "群人数已满")
		}
		if err := tx.GroupMember.Create(ctx, &model.GroupMember{
			GroupUuid: group.Uuid,
			UserUuid:  userId,
			Role:      model.RoleMember,
			JoinedAt:  time.Now(),
		}); err != nil {
			return err
		}
		_, err = recount(ctx, tx, group.Uuid)
		return err
	})
	if err != nil {
		return nil, g.failMembership(err, "join group")
	}
	mq.PublishAsync(ctx, g.publisher, mq.NewEvent(mq.EventGroupMemberJoined, userId, userId, group.Uuid))
	return g.GetDetail(ctx, group.Uuid, userId)
}

// GetDetail 群详情，secret 群对非成员不可见，成员列表只返回给成员
func (g *groupInfoService) GetDetail(ctx context.Context, groupId, userId string) (*respond.GroupDetail, error) {
	group, err := g.findGroup(ctx, groupId)
	if err != nil {
		return nil, err
	}
	return g.buildDetail(ctx, group, userId)
}

func (g *groupInfoService) buildDetail(ctx context.Context, group *model.GroupInfo, userId string) (*respond.GroupDetail, error) {
	members, err := g.repos.GroupMember.FindMembersWithUserInfo(ctx, group.Uuid)
	if err != nil {
		return nil, g.fail(err, "find group members")
	}
	detail := respond.GroupDetail{
		GroupSummary: respond.NewGroupSummary(group),
		Creator:      group.CreatorId,
		Status:       group.Status,
		Settings:     group.Settings,
		Announcement: group.Announcement,
		Stats:        group.Stats,
		Admins:       []string{},
		CreatedAt:    group.CreatedAt,
	}
	isMember := false
	for _, m := range members {
		if m.Role == model.RoleOwner || m.Role == model.RoleAdmin {
			detail.Admins = append(detail.Admins, m.UserId)
		}
		if m.UserId == userId {
			isMember = true
			detail.MyRole = m.Role
		}
	}
	if !isMember && group.Type == model.GroupSecret {
		return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
	}
	if isMember {
		detail.Members = members
	}
	return &detail, nil
}

// ListMyGroups 我加入的群，最近活跃的在前
func (g *groupInfoService) ListMyGroups(ctx context.Context, userId string) (*respond.GroupListRespond, error) {
	groupIds, err := g.repos.GroupMember.GroupIdsByUser(ctx, userId)
	if err != nil {
		return nil, g.fail(err, "find my group ids")
	}
	groups, err := g.repos.Group.FindActiveByUuids(ctx, groupIds)
	if err != nil {
		return nil, g.fail(err, "find my groups")
	}
	return newGroupList(groups, int64(len(groups))), nil
}

// ListPublicGroups 分页浏览公开群
func (g *groupInfoService) ListPublicGroups(ctx context.Context, page request.PageQuery) (*respond.GroupListRespond, error) {
	groups, total, err := g.repos.Group.ListPublic(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, g.fail(err, "list public groups")
	}
	return newGroupList(groups, total), nil
}

// SearchGroups 按名称、描述搜索
func (g *groupInfoService) SearchGroups(ctx context.Context, query request.SearchGroupsQuery) (*respond.GroupListRespond, error) {
	keyword := strings.TrimSpace(query.Q)
	if keyword == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "搜索关键字不能为空")
	}
	groups, err := g.repos.Group.Search(ctx, keyword, query.Limit)
	if err != nil {
		return nil, g.fail(err, "search groups")
	}
	return newGroupList(groups, int64(len(groups))), nil
}

// Update 修改群资料；设置项只有群主和管理员能改
func (g *groupInfoService) Update(ctx context.Context, groupId, actorId string, req request.UpdateGroupRequest) (*respond.GroupDetail, error) {
	group, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !group.Settings.AllowMemberEdit {
		return nil, errorx.New(errorx.CodeForbidden, "无权修改群资料")
	}
	if req.Settings != nil && !actor.IsAdmin() {
		return nil, errorx.New(errorx.CodeForbidden, "只有群主或管理员可以修改群设置")
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Announcement != nil {
		updates["announcement"] = *req.Announcement
	}
	if req.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](cleanTags(req.Tags))
	}
	if s := req.Settings; s != nil {
		if s.RequireApproval != nil {
			updates["setting_require_approval"] = *s.RequireApproval
		}
		if s.AllowMemberInvite != nil {
			updates["setting_allow_member_invite"] = *s.AllowMemberInvite
		}
		if s.AllowMemberEdit != nil {
			updates["setting_allow_member_edit"] = *s.AllowMemberEdit
		}
		if s.EnableAnnouncement != nil {
			updates["setting_enable_announcement"] = *s.EnableAnnouncement
		}
		if s.MaxMembers != nil {
			if *s.MaxMembers < constants.MIN_MAX_MEMBERS || *s.MaxMembers > constants.MAX_MAX_MEMBERS {
				return nil, errorx.New(errorx.CodeInvalidParam, "群人数上限需在 2 到 2000 之间")
			}
			if *s.MaxMembers < group.Stats.MemberCount {
				return nil, errorx.New(errorx.CodeInvalidState, "群人数上限不能小于当前成员数")
			}
			updates["setting_max_members"] = *s.MaxMembers
		}
	}

	if err := g.repos.Group.UpdateFields(ctx, groupId, updates); err != nil {
		return nil, g.fail(err, "update group")
	}
	return g.GetDetail(ctx, groupId, actorId)
}

// MuteMember 禁言成员，durationSeconds 为 0 表示永久
func (g *groupInfoService) MuteMember(ctx context.Context, groupId, actorId, targetId string, durationSeconds int) error {
	if err := g.checkMuteAuthority(ctx, groupId, actorId, targetId); err != nil {
		return err
	}
	var muteUntil *time.Time
	if durationSeconds > 0 {
		until := time.Now().Add(time.Duration(durationSeconds) * time.Second)
		muteUntil = &until
	}
	if err := g.repos.GroupMember.UpdateFields(ctx, groupId, targetId, map[string]any{
		"is_muted":   true,
		"mute_until": muteUntil,
	}); err != nil {
		return g.fail(err, "mute member")
	}
	return nil
}

// UnmuteMember 解除禁言
func (g *groupInfoService) UnmuteMember(ctx context.Context, groupId, actorId, targetId string) error {
	if err := g.checkMuteAuthority(ctx, groupId, actorId, targetId); err != nil {
		return err
	}
	if err := g.repos.GroupMember.UpdateFields(ctx, groupId, targetId, map[string]any{
		"is_muted":   false,
		"mute_until": nil,
	}); err != nil {
		return g.fail(err, "unmute member")
	}
	return nil
}

// checkMuteAuthority 群主、管理员可操作；管理员不能禁言管理员和群主
func (g *groupInfoService) checkMuteAuthority(ctx context.Context, groupId, actorId, targetId string) error {
	_, actor, err := g.groupAndActor(ctx, groupId, actorId)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return errorx.New(errorx.CodeForbidden, "只有群主或管理员可以禁言")
	}
	if actorId == targetId {
		return errorx.New(errorx.CodeForbidden, "不能禁言自己")
	}
	target, err := g.findMember(ctx, groupId, targetId)
	if err != nil {
		return err
	}
	if target.Role == model.RoleOwner || (actor.Role == model.RoleAdmin && target.IsAdmin()) {
		return errorx.New(errorx.CodeForbidden, "无权禁言该成员")
	}
	return nil
}

// ReleaseExpiredMutes 定时任务：解除已到期的禁言
func (g *groupInfoService) ReleaseExpiredMutes(ctx context.Context) (int64, error) {
	n, err := g.repos.GroupMember.ReleaseExpiredMutes(ctx, time.Now())
	if err != nil {
		zap.L().Error("release expired mutes failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		zap.L().Info("released expired mutes", zap.Int64("count", n))
	}
	return n, nil
}

// ==================== 内部辅助 ====================

func (g *groupInfoService) findGroup(ctx context.Context, groupId string) (*model.GroupInfo, error) {
	group, err := g.repos.Group.FindActive(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
		}
		return nil, g.fail(err, "find group")
	}
	return group, nil
}

func (g *groupInfoService) findMember(ctx context.Context, groupId, userId string) (*model.GroupMember, error) {
	member, err := g.repos.GroupMember.Find(ctx, groupId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "该用户不是群成员")
		}
		return nil, g.fail(err, "find member")
	}
	return member, nil
}

// groupAndActor 群必须存在，操作者必须是成员
func (g *groupInfoService) groupAndActor(ctx context.Context, groupId, actorId string) (*model.GroupInfo, *model.GroupMember, error) {
	group, err := g.findGroup(ctx, groupId)
	if err != nil {
		return nil, nil, err
	}
	actor, err := g.repos.GroupMember.Find(ctx, groupId, actorId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, nil, errorx.New(errorx.CodeForbidden, "你不是该群成员")
		}
		return nil, nil, g.fail(err, "find actor")
	}
	return group, actor, nil
}

func (g *groupInfoService) deleteMember(ctx context.Context, groupId, userId string) error {
	err := g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.GroupMember.Delete(ctx, groupId, userId); err != nil {
			if errorx.IsNotFound(err) {
				return errorx.New(errorx.CodeNotFound, "该用户不是群成员")
			}
			return err
		}
		_, err := recount(ctx, tx, groupId)
		return err
	})
	if err != nil {
		return g.fail(err, "remove member")
	}
	return nil
}

// fail 业务错误原样返回，其余记录日志后返回服务繁忙
func (g *groupInfoService) fail(err error, action string) error {
	switch errorx.GetCode(err) {
	case errorx.CodeInvalidParam, errorx.CodeForbidden, errorx.CodeNotFound,
		errorx.CodeUserNotExist, errorx.CodeInvalidState:
		return err
	case errorx.CodeConflict:
		if !isStoreConflict(err) {
			return err
		}
	}
	zap.L().Error(action+" failed", zap.Error(err))
	return errorx.ErrServerBusy
}

// failMembership 写成员行时唯一索引冲突只可能来自并发入群
func (g *groupInfoService) failMembership(err error, action string) error {
	if isStoreConflict(err) {
		return errorx.New(errorx.CodeConflict, "用户已在群中")
	}
	return g.fail(err, action)
}

// isStoreConflict 由存储层唯一索引冲突转换来的 Conflict，业务层主动返回的不算
func isStoreConflict(err error) bool {
	var ce *errorx.CodeError
	return errors.As(err, &ce) && ce.Code == errorx.CodeConflict && ce.Unwrap() != nil
}

// recount 按成员行重算成员数，必须在事务内调用
func recount(ctx context.Context, tx *repository.Repositories, groupId string) (int64, error) {
	n, err := tx.GroupMember.Count(ctx, groupId)
	if err != nil {
		return 0, err
	}
	if err := tx.Group.SetMemberCount(ctx, groupId, n); err != nil {
		return 0, err
	}
	return n, nil
}

func newGroupList(groups []model.GroupInfo, total int64) *respond.GroupListRespond {
	items := make([]respond.GroupSummary, 0, len(groups))
	for i := range groups {
		items = append(items, respond.NewGroupSummary(&groups[i]))
	}
	return &respond.GroupListRespond{Groups: items, Total: total}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
