package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/model"
	"chat_server/internal/testutil"
	"chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repos *repository.Repositories, uuid, email, nickname string) {
	t.Helper()
	u := &model.UserInfo{Uuid: uuid, Email: email, Nickname: nickname, RawPassword: "secret123"}
	require.NoError(t, repos.User.Create(context.Background(), u))
}

func TestUserCreateDuplicateEmailIsConflict(t *testing.T) {
	repos := testutil.NewRepositories(t)
	seedUser(t, repos, "U_A", "a@example.com", "alice")

	err := repos.User.Create(context.Background(), &model.UserInfo{Uuid: "U_B", Email: " A@Example.com ", RawPassword: "x"})
	require.Error(t, err)
	assert.True(t, errorx.IsConflict(err))
}

func TestUserFindByEmailIsCaseInsensitive(t *testing.T) {
	repos := testutil.NewRepositories(t)
	seedUser(t, repos, "U_A", "a@example.com", "alice")

	u, err := repos.User.FindByEmail(context.Background(), "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "U_A", u.Uuid)

	_, err = repos.User.FindByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errorx.IsNotFound(err))
}

func TestUserSearchExcludesCallerAndEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	seedUser(t, repos, "U_A", "alice@example.com", "alice")
	seedUser(t, repos, "U_B", "bob@example.com", "bob_100%")
	seedUser(t, repos, "U_C", "carol@example.com", "bobby")

	users, err := repos.User.Search(ctx, "bob", "U_A", 10)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repos.User.Search(ctx, "100%", "U_A", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "U_B", users[0].Uuid)

	users, err = repos.User.Search(ctx, "alice", "U_A", 10)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestContactPairIsUniqueInBothDirections(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)

	require.NoError(t, repos.Contact.Create(ctx, &model.Contact{
		Uuid: "C_1", RequesterId: "U_A", RecipientId: "U_B", Status: model.ContactPending,
	}))
	err := repos.Contact.Create(ctx, &model.Contact{
		Uuid: "C_2", RequesterId: "U_B", RecipientId: "U_A", Status: model.ContactPending,
	})
	require.Error(t, err)
	assert.True(t, errorx.IsConflict(err))

	c, err := repos.Contact.FindBetween(ctx, "U_B", "U_A")
	require.NoError(t, err)
	assert.Equal(t, "C_1", c.Uuid)
}

func TestContactUpdateIfStatusOnlyMovesOnce(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	require.NoError(t, repos.Contact.Create(ctx, &model.Contact{
		Uuid: "C_1", RequesterId: "U_A", RecipientId: "U_B", Status: model.ContactPending,
	}))

	ok, err := repos.Contact.UpdateIfStatus(ctx, "C_1", model.ContactPending, map[string]any{"status": model.ContactAccepted})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Contact.UpdateIfStatus(ctx, "C_1", model.ContactPending, map[string]any{"status": model.ContactRejected})
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := repos.Contact.FriendIds(ctx, "U_B")
	require.NoError(t, err)
	assert.Equal(t, []string{"U_A"}, ids)

	require.NoError(t, repos.Contact.Delete(ctx, "C_1"))
	assert.True(t, errorx.IsNotFound(repos.Contact.Delete(ctx, "C_1")))
}

func sendDirect(t *testing.T, repos *repository.Repositories, id, from, to string, at time.Time) {
	t.Helper()
	msg := &model.Message{
		Uuid: id, SenderId: from, Content: "hi " + id,
		Type: model.MessageText, Status: model.MessageSent, CreatedAt: at,
	}
	msg.SetTarget(model.ToUser(to))
	require.NoError(t, repos.Message.Create(context.Background(), msg))
}

func TestMessageConversationAndRead(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sendDirect(t, repos, "m1", "U_A", "U_B", base)
	sendDirect(t, repos, "m2", "U_B", "U_A", base.Add(time.Second))
	sendDirect(t, repos, "m3", "U_A", "U_B", base.Add(2*time.Second))
	sendDirect(t, repos, "m4", "U_A", "U_C", base.Add(3*time.Second))

	msgs, total, err := repos.Message.FindConversation(ctx, "U_B", "U_A", 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m3", msgs[0].Uuid)
	assert.Equal(t, "m2", msgs[1].Uuid)

	n, err := repos.Message.MarkRead(ctx, "U_A", "U_B")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repos.Message.MarkRead(ctx, "U_A", "U_B")
	require.NoError(t, err)
	assert.Zero(t, n)

	m, err := repos.Message.FindByUuid(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, m.IsRead)
	assert.Equal(t, model.MessageRead, m.Status)
}

func TestMessageRecentConversations(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sendDirect(t, repos, "m1", "U_B", "U_A", base)
	sendDirect(t, repos, "m2", "U_C", "U_A", base.Add(time.Second))
	sendDirect(t, repos, "m3", "U_B", "U_A", base.Add(2*time.Second))
	sendDirect(t, repos, "m4", "U_A", "U_C", base.Add(3*time.Second))

	summaries, err := repos.Message.RecentConversations(ctx, "U_A")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "U_C", summaries[0].PeerId)
	assert.Equal(t, "m4", summaries[0].LastMessage.Uuid)
	assert.EqualValues(t, 1, summaries[0].UnreadCount)

	assert.Equal(t, "U_B", summaries[1].PeerId)
	assert.Equal(t, "m3", summaries[1].LastMessage.Uuid)
	assert.EqualValues(t, 2, summaries[1].UnreadCount)
}

func seedGroup(t *testing.T, repos *repository.Repositories, uuid, name string, typ model.GroupType, members int) {
	t.Helper()
	require.NoError(t, repos.Group.Create(context.Background(), &model.GroupInfo{
		Uuid: uuid, Name: name, CreatorId: "U_OWNER", Type: typ, Status: model.GroupActive,
		Settings:   model.DefaultGroupSettings(10),
		Stats:      model.GroupStats{MemberCount: members},
		InviteCode: "code-" + uuid,
	}))
}

func TestGroupListPublicAndSearch(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	seedGroup(t, repos, "G_1", "golang fans", model.GroupPublic, 3)
	seedGroup(t, repos, "G_2", "go secret", model.GroupSecret, 9)
	seedGroup(t, repos, "G_3", "gophers", model.GroupPublic, 5)
	seedGroup(t, repos, "G_4", "go private", model.GroupPrivate, 1)
	require.NoError(t, repos.Group.UpdateFields(ctx, "G_3", map[string]any{"status": model.GroupDeleted}))

	groups, total, err := repos.Group.ListPublic(ctx, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, groups, 1)
	assert.Equal(t, "G_1", groups[0].Uuid)

	found, err := repos.Group.Search(ctx, "go", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "G_1", found[0].Uuid)
	assert.Equal(t, "G_4", found[1].Uuid)

	_, err = repos.Group.FindActive(ctx, "G_3")
	assert.True(t, errorx.IsNotFound(err))
	g, err := repos.Group.FindByUuid(ctx, "G_3")
	require.NoError(t, err)
	assert.Equal(t, model.GroupDeleted, g.Status)
}

func TestGroupMemberLifecycleInTransaction(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	seedGroup(t, repos, "G_1", "team", model.GroupPrivate, 0)

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for i := 0; i < 3; i++ {
			if err := tx.GroupMember.Create(ctx, &model.GroupMember{
				GroupUuid: "G_1", UserUuid: fmt.Sprintf("U_%d", i), Role: model.RoleMember, JoinedAt: time.Now(),
			}); err != nil {
				return err
			}
		}
		n, err := tx.GroupMember.Count(ctx, "G_1")
		if err != nil {
			return err
		}
		return tx.Group.SetMemberCount(ctx, "G_1", n)
	})
	require.NoError(t, err)

	g, err := repos.Group.FindActive(ctx, "G_1")
	require.NoError(t, err)
	assert.Equal(t, 3, g.Stats.MemberCount)

	err = repos.GroupMember.Create(ctx, &model.GroupMember{GroupUuid: "G_1", UserUuid: "U_0", Role: model.RoleMember})
	assert.True(t, errorx.IsConflict(err))

	existing, err := repos.GroupMember.ExistingUserIds(ctx, "G_1", []string{"U_0", "U_9"})
	require.NoError(t, err)
	assert.Equal(t, []string{"U_0"}, existing)

	require.NoError(t, repos.GroupMember.Delete(ctx, "G_1", "U_1"))
	assert.True(t, errorx.IsNotFound(repos.GroupMember.Delete(ctx, "G_1", "U_1")))
}

func TestGroupTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	seedGroup(t, repos, "G_1", "team", model.GroupPrivate, 0)

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.GroupMember.Create(ctx, &model.GroupMember{GroupUuid: "G_1", UserUuid: "U_1", Role: model.RoleMember}); err != nil {
			return err
		}
		return errorx.New(errorx.CodeInvalidState, "群成员已满")
	})
	require.Error(t, err)

	n, err := repos.GroupMember.Count(ctx, "G_1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReleaseExpiredMutes(t *testing.T) {
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Minute), now.Add(time.Hour)

	require.NoError(t, repos.GroupMember.Create(ctx,
		&model.GroupMember{GroupUuid: "G_1", UserUuid: "U_1", Role: model.RoleMember, IsMuted: true, MuteUntil: &past},
		&model.GroupMember{GroupUuid: "G_1", UserUuid: "U_2", Role: model.RoleMember, IsMuted: true, MuteUntil: &future},
		&model.GroupMember{GroupUuid: "G_1", UserUuid: "U_3", Role: model.RoleMember, IsMuted: true},
	))

	n, err := repos.GroupMember.ReleaseExpiredMutes(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	m, err := repos.GroupMember.Find(ctx, "G_1", "U_1")
	require.NoError(t, err)
	assert.False(t, m.IsMuted)
	assert.Nil(t, m.MuteUntil)

	m, err = repos.GroupMember.Find(ctx, "G_1", "U_3")
	require.NoError(t, err)
	assert.True(t, m.IsMuted)
}
