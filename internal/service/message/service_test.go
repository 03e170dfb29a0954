package message

import (
	"context"
	"testing"
	"time"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/dto/request"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/model"
	"chat_server/internal/service/contact"
	"chat_server/internal/testutil"
	"chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *messageService
	repos     *repository.Repositories
	publisher *testutil.RecordingPublisher
}

// newFixture A 与 B 是好友，C 与任何人都不是
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := testutil.NewRepositories(t)
	publisher := &testutil.RecordingPublisher{}
	for _, u := range []model.UserInfo{
		{Uuid: "U_A", Email: "a@example.com", Nickname: "alice", RawPassword: "secret123"},
		{Uuid: "U_B", Email: "b@example.com", Nickname: "bob", RawPassword: "secret123"},
		{Uuid: "U_C", Email: "c@example.com", Nickname: "carol", RawPassword: "secret123"},
	} {
		u := u
		require.NoError(t, repos.User.Create(ctx, &u))
	}

	contacts := contact.NewContactService(repos, testutil.NewFakeCache(), mq.NewNopPublisher())
	c, err := contacts.SendRequest(ctx, "U_A", request.FriendRequestRequest{Email: "b@example.com"})
	require.NoError(t, err)
	_, err = contacts.Accept(ctx, c.Id, "U_B")
	require.NoError(t, err)

	return &fixture{
		svc:       NewMessageService(repos, contacts, publisher),
		repos:     repos,
		publisher: publisher,
	}
}

func (f *fixture) send(t *testing.T, from, to, content string) *model.Message {
	t.Helper()
	msg, err := f.svc.Send(context.Background(), from, request.SendMessageRequest{RecipientId: to, Content: content})
	require.NoError(t, err)
	return msg
}

func TestSendDirectMessage(t *testing.T) {
	f := newFixture(t)
	msg := f.send(t, "U_A", "U_B", "hello")

	assert.NotEmpty(t, msg.Uuid)
	assert.Equal(t, model.RecipientUser, msg.RecipientModel)
	assert.Equal(t, model.MessageText, msg.Type)
	assert.Equal(t, model.MessageSent, msg.Status)
	assert.False(t, msg.IsRead)
	assert.Equal(t, []mq.EventType{mq.EventMessageSent}, f.publisher.Types())
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  request.SendMessageRequest
		code int
	}{
		{"blank content", request.SendMessageRequest{RecipientId: "U_B", Content: "   "}, errorx.CodeInvalidParam},
		{"bad type", request.SendMessageRequest{RecipientId: "U_B", Content: "x", Type: "sticker"}, errorx.CodeInvalidParam},
		{"unknown recipient", request.SendMessageRequest{RecipientId: "U_X", Content: "x"}, errorx.CodeUserNotExist},
		{"not a friend", request.SendMessageRequest{RecipientId: "U_C", Content: "x"}, errorx.CodeForbidden},
		{"reply to missing", request.SendMessageRequest{RecipientId: "U_B", Content: "x", ReplyTo: "404"}, errorx.CodeNotFound},
		{"missing group", request.SendMessageRequest{RecipientId: "G_X", Content: "x", RecipientModel: "Group"}, errorx.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Send(ctx, "U_A", tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, errorx.GetCode(err))
		})
	}
}

func TestSendReplyAndMetadata(t *testing.T) {
	f := newFixture(t)
	first := f.send(t, "U_A", "U_B", "photo?")

	msg, err := f.svc.Send(context.Background(), "U_B", request.SendMessageRequest{
		RecipientId: "U_A",
		Content:     "https://img.example.com/1.png",
		Type:        "image",
		ReplyTo:     first.Uuid,
		Metadata:    map[string]any{"width": 640},
	})
	require.NoError(t, err)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, first.Uuid, *msg.ReplyTo)
	assert.Equal(t, model.MessageImage, msg.Type)

	saved, err := f.repos.Message.FindByUuid(context.Background(), msg.Uuid)
	require.NoError(t, err)
	assert.EqualValues(t, 640, saved.Metadata["width"])
}

func TestReplyMustStayInConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	foreign := model.Message{Uuid: "M_FOREIGN", SenderId: "U_C", Content: "private", Type: model.MessageText, Status: model.MessageSent}
	foreign.SetTarget(model.ToUser("U_B"))
	require.NoError(t, f.repos.Message.Create(ctx, &foreign))

	_, err := f.svc.Send(ctx, "U_A", request.SendMessageRequest{RecipientId: "U_B", Content: "re", ReplyTo: "M_FOREIGN"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// B 是该消息的接收方，但回复的对象是 A，仍不在同一会话
	_, err = f.svc.Send(ctx, "U_B", request.SendMessageRequest{RecipientId: "U_A", Content: "re", ReplyTo: "M_FOREIGN"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	own := f.send(t, "U_B", "U_A", "mine")
	_, err = f.svc.Send(ctx, "U_B", request.SendMessageRequest{RecipientId: "U_A", Content: "re", ReplyTo: own.Uuid})
	assert.NoError(t, err)
}

func TestConversationIsOldestFirstAndMarksRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.send(t, "U_A", "U_B", "one")
	f.send(t, "U_B", "U_A", "two")
	f.send(t, "U_A", "U_B", "three")

	conv, err := f.svc.GetConversation(ctx, "U_B", "U_A", request.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, conv.Total)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "one", conv.Messages[0].Content)
	assert.Equal(t, "three", conv.Messages[2].Content)
	assert.True(t, conv.Messages[0].IsRead)
	assert.False(t, conv.Messages[1].IsRead, "B 自己发的消息不受影响")

	recent, err := f.svc.GetRecentConversations(ctx, "U_B")
	require.NoError(t, err)
	require.Len(t, recent.Conversations, 1)
	assert.Zero(t, recent.Conversations[0].UnreadCount)

	recent, err = f.svc.GetRecentConversations(ctx, "U_A")
	require.NoError(t, err)
	require.Len(t, recent.Conversations, 1)
	assert.EqualValues(t, 1, recent.Conversations[0].UnreadCount)
	assert.Equal(t, "bob", recent.Conversations[0].User.Nickname)
	assert.Equal(t, "three", recent.Conversations[0].LastMessage.Content)

	page, err := f.svc.GetConversation(ctx, "U_A", "U_B", request.PageQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "two", page.Messages[0].Content)
}

func TestRecentConversationsOnlyShowFriends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.send(t, "U_B", "U_A", "from friend")

	stranger := &model.Message{Uuid: "legacy-1", SenderId: "U_C", Content: "old", Type: model.MessageText, Status: model.MessageSent, CreatedAt: time.Now()}
	stranger.SetTarget(model.ToUser("U_A"))
	require.NoError(t, f.repos.Message.Create(ctx, stranger))

	recent, err := f.svc.GetRecentConversations(ctx, "U_A")
	require.NoError(t, err)
	require.Equal(t, 1, recent.Total)
	assert.Equal(t, "U_B", recent.Conversations[0].PeerId)

	_, err = f.svc.GetConversation(ctx, "U_A", "U_C", request.PageQuery{})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestMarkAsRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.send(t, "U_A", "U_B", "one")
	f.send(t, "U_A", "U_B", "two")

	rsp, err := f.svc.MarkAsRead(ctx, "U_B", "U_A")
	require.NoError(t, err)
	assert.EqualValues(t, 2, rsp.UpdatedCount)

	rsp, err = f.svc.MarkAsRead(ctx, "U_B", "U_A")
	require.NoError(t, err)
	assert.Zero(t, rsp.UpdatedCount)

	_, err = f.svc.MarkAsRead(ctx, "U_B", "U_X")
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))
}

func TestDeleteOnlyBySender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	msg := f.send(t, "U_A", "U_B", "oops")

	err := f.svc.Delete(ctx, msg.Uuid, "U_B")
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	require.NoError(t, f.svc.Delete(ctx, msg.Uuid, "U_A"))
	conv, err := f.svc.GetConversation(ctx, "U_B", "U_A", request.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, conv.Messages)
	assert.Zero(t, conv.Total)

	err = f.svc.Delete(ctx, msg.Uuid, "U_A")
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	assert.Contains(t, f.publisher.Types(), mq.EventMessageDeleted)
}

func TestGroupMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	future := time.Now().Add(time.Hour)
	require.NoError(t, f.repos.Group.Create(ctx, &model.GroupInfo{
		Uuid: "G_1", Name: "team", CreatorId: "U_A", Type: model.GroupPrivate, Status: model.GroupActive,
		Settings: model.DefaultGroupSettings(10), InviteCode: "invite-1",
	}))
	require.NoError(t, f.repos.GroupMember.Create(ctx,
		&model.GroupMember{GroupUuid: "G_1", UserUuid: "U_A", Role: model.RoleOwner},
		&model.GroupMember{GroupUuid: "G_1", UserUuid: "U_B", Role: model.RoleMember, IsMuted: true, MuteUntil: &future},
	))

	group := func(from, content string) error {
		_, err := f.svc.Send(ctx, from, request.SendMessageRequest{RecipientId: "G_1", RecipientModel: "Group", Content: content})
		return err
	}
	require.NoError(t, group("U_A", "first"))
	require.NoError(t, group("U_A", "second"))
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(group("U_B", "muted")))
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(group("U_C", "outsider")))

	g, err := f.repos.Group.FindActive(ctx, "G_1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, g.Stats.MessageCount)

	conv, err := f.svc.GetGroupConversation(ctx, "U_B", "G_1", request.PageQuery{})
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "first", conv.Messages[0].Content)

	_, err = f.svc.GetGroupConversation(ctx, "U_C", "G_1", request.PageQuery{})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}
