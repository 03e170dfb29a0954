package group

import (
	"context"
	"testing"
	"time"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/dto/request"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/model"
	"chat_server/internal/testutil"
	"chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *groupInfoService
	repos     *repository.Repositories
	publisher *testutil.RecordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	for _, id := range []string{"U_OWNER", "U_ADMIN", "U_ADMIN2", "U_M1", "U_M2", "U_OUT"} {
		require.NoError(t, repos.User.Create(ctx, &model.UserInfo{
			Uuid: id, Email: id + "@example.com", Nickname: id, RawPassword: "secret123",
		}))
	}
	publisher := &testutil.RecordingPublisher{}
	return &fixture{svc: NewGroupService(repos, publisher), repos: repos, publisher: publisher}
}

// setup 创建群并邀请成员，U_ADMIN 与 U_ADMIN2 提升为管理员
func (f *fixture) setup(t *testing.T, req request.CreateGroupRequest) string {
	t.Helper()
	ctx := context.Background()
	detail, err := f.svc.Create(ctx, "U_OWNER", req)
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, detail.Id, "U_OWNER", []string{"U_ADMIN", "U_ADMIN2", "U_M1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateRole(ctx, detail.Id, "U_OWNER", "U_ADMIN", "admin"))
	require.NoError(t, f.svc.UpdateRole(ctx, detail.Id, "U_OWNER", "U_ADMIN2", "admin"))
	return detail.Id
}

func code(err error) int {
	return errorx.GetCode(err)
}

func TestCreateMakesCreatorOwner(t *testing.T) {
	f := newFixture(t)
	detail, err := f.svc.Create(context.Background(), "U_OWNER", request.CreateGroupRequest{
		Name: "  gophers ", Tags: []string{" go ", "", "go", "chat"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gophers", detail.Name)
	assert.Equal(t, model.GroupPublic, detail.Type)
	assert.Equal(t, model.RoleOwner, detail.MyRole)
	assert.Equal(t, []string{"U_OWNER"}, detail.Admins)
	assert.Equal(t, []string{"go", "chat"}, detail.Tags)
	assert.NotEmpty(t, detail.Id)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, []mq.EventType{mq.EventGroupCreated}, f.publisher.Types())

	g, err := f.repos.Group.FindActive(context.Background(), detail.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Stats.MemberCount)
	assert.NotEmpty(t, g.InviteCode)
}

// stubInviteCodes 依次返回给定的邀请码，用完后重复最后一个
func stubInviteCodes(t *testing.T, codes ...string) {
	t.Helper()
	orig := newInviteCode
	t.Cleanup(func() { newInviteCode = orig })
	i := 0
	newInviteCode = func() string {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c
	}
}

func TestCreateRetriesOnInviteCodeCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stubInviteCodes(t, "TAKEN")
	first, err := f.svc.Create(ctx, "U_OWNER", request.CreateGroupRequest{Name: "first"})
	require.NoError(t, err)

	// 第一次生成的码已被占用，换码后成功
	stubInviteCodes(t, "TAKEN", "FRESH2")
	second, err := f.svc.Create(ctx, "U_M1", request.CreateGroupRequest{Name: "second"})
	require.NoError(t, err)

	g, err := f.repos.Group.FindActive(ctx, second.Id)
	require.NoError(t, err)
	assert.Equal(t, "FRESH2", g.InviteCode)
	assert.Equal(t, 1, g.Stats.MemberCount)
	assert.NotEqual(t, first.Id, second.Id)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stubInviteCodes(t, "TAKEN")
	_, err := f.svc.Create(ctx, "U_OWNER", request.CreateGroupRequest{Name: "first"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, "U_M1", request.CreateGroupRequest{Name: "second"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeServerBusy, code(err))

	my, err := f.svc.ListMyGroups(ctx, "U_M1")
	require.NoError(t, err)
	assert.Zero(t, my.Total)
}

func TestCreateValidatesMaxMembers(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), "U_OWNER", request.CreateGroupRequest{Name: "x", MaxMembers: 1})
	assert.Equal(t, errorx.CodeInvalidParam, code(err))
	_, err = f.svc.Create(context.Background(), "U_OWNER", request.CreateGroupRequest{Name: "   "})
	assert.Equal(t, errorx.CodeInvalidParam, code(err))
}

func TestInviteIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team", MaxMembers: 5})

	rsp, err := f.svc.Invite(ctx, groupId, "U_M1", []string{"U_M2", "U_M2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"U_M2"}, rsp.Added)
	assert.EqualValues(t, 5, rsp.MemberCount)

	_, err = f.svc.Invite(ctx, groupId, "U_OWNER", []string{"U_OUT", "U_M1"})
	assert.Equal(t, errorx.CodeConflict, code(err))

	_, err = f.svc.Invite(ctx, groupId, "U_OWNER", []string{"U_OUT"})
	assert.Equal(t, errorx.CodeInvalidState, code(err))

	_, err = f.svc.Invite(ctx, groupId, "U_OWNER", []string{"U_GHOST"})
	assert.Equal(t, errorx.CodeUserNotExist, code(err))

	_, err = f.svc.Invite(ctx, groupId, "U_OUT", []string{"U_OUT"})
	assert.Equal(t, errorx.CodeForbidden, code(err))

	n, err := f.repos.GroupMember.Count(ctx, groupId)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestInviteRespectsAllowMemberInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	off := false
	_, err := f.svc.Update(ctx, groupId, "U_ADMIN", request.UpdateGroupRequest{
		Settings: &request.GroupSettingsPatch{AllowMemberInvite: &off},
	})
	require.NoError(t, err)

	_, err = f.svc.Invite(ctx, groupId, "U_M1", []string{"U_M2"})
	assert.Equal(t, errorx.CodeForbidden, code(err))
	_, err = f.svc.GetInviteCode(ctx, groupId, "U_M1")
	assert.Equal(t, errorx.CodeForbidden, code(err))

	_, err = f.svc.Invite(ctx, groupId, "U_ADMIN", []string{"U_M2"})
	assert.NoError(t, err)
}

func TestRemoveMemberAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	assert.Equal(t, errorx.CodeInvalidParam, code(f.svc.RemoveMember(ctx, groupId, "U_OWNER", "U_OWNER")))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.RemoveMember(ctx, groupId, "U_ADMIN", "U_ADMIN2")))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.RemoveMember(ctx, groupId, "U_M1", "U_ADMIN")))
	assert.Equal(t, errorx.CodeNotFound, code(f.svc.RemoveMember(ctx, groupId, "U_OWNER", "U_OUT")))

	require.NoError(t, f.svc.RemoveMember(ctx, groupId, "U_ADMIN", "U_M1"))
	require.NoError(t, f.svc.RemoveMember(ctx, groupId, "U_OWNER", "U_ADMIN2"))

	g, err := f.repos.Group.FindActive(ctx, groupId)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Stats.MemberCount)
	assert.Contains(t, f.publisher.Types(), mq.EventGroupMemberRemoved)
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	assert.Equal(t, errorx.CodeInvalidParam, code(f.svc.UpdateRole(ctx, groupId, "U_OWNER", "U_M1", "owner")))
	assert.Equal(t, errorx.CodeInvalidParam, code(f.svc.UpdateRole(ctx, groupId, "U_OWNER", "U_M1", "root")))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.UpdateRole(ctx, groupId, "U_ADMIN", "U_ADMIN", "member")))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.UpdateRole(ctx, groupId, "U_ADMIN", "U_OWNER", "member")))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.UpdateRole(ctx, groupId, "U_ADMIN", "U_ADMIN2", "member")))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.UpdateRole(ctx, groupId, "U_M1", "U_ADMIN", "member")))

	require.NoError(t, f.svc.UpdateRole(ctx, groupId, "U_ADMIN", "U_M1", "admin"))
	detail, err := f.svc.GetDetail(ctx, groupId, "U_M1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, detail.MyRole)
	assert.ElementsMatch(t, []string{"U_OWNER", "U_ADMIN", "U_ADMIN2", "U_M1"}, detail.Admins)
}

func TestLeaveAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	assert.Equal(t, errorx.CodeInvalidState, code(f.svc.Leave(ctx, groupId, "U_OWNER")))
	assert.Equal(t, errorx.CodeNotFound, code(f.svc.Leave(ctx, groupId, "U_OUT")))
	require.NoError(t, f.svc.Leave(ctx, groupId, "U_M1"))

	assert.Equal(t, errorx.CodeForbidden, code(f.svc.Delete(ctx, groupId, "U_ADMIN")))
	require.NoError(t, f.svc.Delete(ctx, groupId, "U_OWNER"))

	_, err := f.svc.GetDetail(ctx, groupId, "U_OWNER")
	assert.Equal(t, errorx.CodeNotFound, code(err))

	mine, err := f.svc.ListMyGroups(ctx, "U_ADMIN")
	require.NoError(t, err)
	assert.Zero(t, mine.Total)
}

func TestJoinRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public, err := f.svc.Create(ctx, "U_OWNER", request.CreateGroupRequest{Name: "open", MaxMembers: 2})
	require.NoError(t, err)
	private, err := f.svc.Create(ctx, "U_OWNER", request.CreateGroupRequest{Name: "closed", IsPrivate: true})
	require.NoError(t, err)

	detail, err := f.svc.Join(ctx, public.Id, "U_M1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, detail.MyRole)
	assert.Len(t, detail.Members, 2)

	_, err = f.svc.Join(ctx, public.Id, "U_M1")
	assert.Equal(t, errorx.CodeConflict, code(err))
	_, err = f.svc.Join(ctx, public.Id, "U_M2")
	assert.Equal(t, errorx.CodeInvalidState, code(err))

	_, err = f.svc.Join(ctx, private.Id, "U_M2")
	assert.Equal(t, errorx.CodeForbidden, code(err))

	codeRsp, err := f.svc.GetInviteCode(ctx, private.Id, "U_OWNER")
	require.NoError(t, err)
	_, err = f.svc.JoinByInviteCode(ctx, "U_M2", " "+codeRsp.InviteCode+" ")
	require.NoError(t, err)

	reset, err := f.svc.ResetInviteCode(ctx, private.Id, "U_OWNER")
	require.NoError(t, err)
	assert.NotEqual(t, codeRsp.InviteCode, reset.InviteCode)
	_, err = f.svc.JoinByInviteCode(ctx, "U_OUT", codeRsp.InviteCode)
	assert.Equal(t, errorx.CodeNotFound, code(err))
}

func TestDetailHidesMembersFromOutsiders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	detail, err := f.svc.GetDetail(ctx, groupId, "U_OUT")
	require.NoError(t, err)
	assert.Empty(t, detail.Members)
	assert.Empty(t, detail.MyRole)

	require.NoError(t, f.repos.Group.UpdateFields(ctx, groupId, map[string]any{"type": model.GroupSecret}))
	_, err = f.svc.GetDetail(ctx, groupId, "U_OUT")
	assert.Equal(t, errorx.CodeNotFound, code(err))
	_, err = f.svc.Join(ctx, groupId, "U_OUT")
	assert.Equal(t, errorx.CodeNotFound, code(err))
}

func TestUpdateGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	name := "renamed"
	_, err := f.svc.Update(ctx, groupId, "U_M1", request.UpdateGroupRequest{Name: &name})
	assert.Equal(t, errorx.CodeForbidden, code(err))

	detail, err := f.svc.Update(ctx, groupId, "U_ADMIN", request.UpdateGroupRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", detail.Name)

	tooSmall := 2
	_, err = f.svc.Update(ctx, groupId, "U_OWNER", request.UpdateGroupRequest{
		Settings: &request.GroupSettingsPatch{MaxMembers: &tooSmall},
	})
	assert.Equal(t, errorx.CodeInvalidState, code(err))

	edit := true
	_, err = f.svc.Update(ctx, groupId, "U_OWNER", request.UpdateGroupRequest{
		Settings: &request.GroupSettingsPatch{AllowMemberEdit: &edit},
	})
	require.NoError(t, err)

	desc := "for gophers"
	detail, err = f.svc.Update(ctx, groupId, "U_M1", request.UpdateGroupRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "for gophers", detail.Description)
	assert.True(t, detail.Settings.AllowMemberEdit)

	_, err = f.svc.Update(ctx, groupId, "U_M1", request.UpdateGroupRequest{
		Settings: &request.GroupSettingsPatch{AllowMemberEdit: &edit},
	})
	assert.Equal(t, errorx.CodeForbidden, code(err))
}

func TestMuteAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	assert.Equal(t, errorx.CodeForbidden, code(f.svc.MuteMember(ctx, groupId, "U_M1", "U_ADMIN", 60)))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.MuteMember(ctx, groupId, "U_ADMIN", "U_ADMIN", 60)))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.MuteMember(ctx, groupId, "U_ADMIN", "U_ADMIN2", 60)))
	assert.Equal(t, errorx.CodeForbidden, code(f.svc.MuteMember(ctx, groupId, "U_ADMIN", "U_OWNER", 60)))

	require.NoError(t, f.svc.MuteMember(ctx, groupId, "U_OWNER", "U_ADMIN2", 0))
	m, err := f.repos.GroupMember.Find(ctx, groupId, "U_ADMIN2")
	require.NoError(t, err)
	assert.True(t, m.IsMuted)
	assert.Nil(t, m.MuteUntil)

	require.NoError(t, f.svc.MuteMember(ctx, groupId, "U_ADMIN", "U_M1", 3600))
	m, err = f.repos.GroupMember.Find(ctx, groupId, "U_M1")
	require.NoError(t, err)
	require.NotNil(t, m.MuteUntil)
	assert.True(t, m.MutedAt(time.Now()))

	require.NoError(t, f.svc.UnmuteMember(ctx, groupId, "U_ADMIN", "U_M1"))
	m, err = f.repos.GroupMember.Find(ctx, groupId, "U_M1")
	require.NoError(t, err)
	assert.False(t, m.IsMuted)
}

func TestReleaseExpiredMutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groupId := f.setup(t, request.CreateGroupRequest{Name: "team"})

	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.repos.GroupMember.UpdateFields(ctx, groupId, "U_M1", map[string]any{"is_muted": true, "mute_until": past}))

	n, err := f.svc.ReleaseExpiredMutes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestListAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "U_OWNER", request.CreateGroupRequest{Name: "golang"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "U_OWNER", request.CreateGroupRequest{Name: "go private", IsPrivate: true})
	require.NoError(t, err)

	public, err := f.svc.ListPublicGroups(ctx, request.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, public.Total)

	found, err := f.svc.SearchGroups(ctx, request.SearchGroupsQuery{Q: "go"})
	require.NoError(t, err)
	assert.Len(t, found.Groups, 2)

	_, err = f.svc.SearchGroups(ctx, request.SearchGroupsQuery{Q: "  "})
	assert.Equal(t, errorx.CodeInvalidParam, code(err))

	mine, err := f.svc.ListMyGroups(ctx, "U_OWNER")
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)
}
