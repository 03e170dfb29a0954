package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContactSideSelector(t *testing.T) {
	c := &Contact{
		RequesterId:     "U_A",
		RecipientId:     "U_B",
		RequesterNote:   "b from work",
		RecipientGroup:  "Family",
		RecipientPinned: true,
	}

	assert.Equal(t, SideRequester, c.SideOf("U_A"))
	assert.Equal(t, SideRecipient, c.SideOf("U_B"))
	assert.Equal(t, SideNone, c.SideOf("U_C"))

	assert.Equal(t, "U_B", c.PeerOf("U_A"))
	assert.Equal(t, "U_A", c.PeerOf("U_B"))
	assert.Empty(t, c.PeerOf("U_C"))

	assert.Equal(t, SideView{Note: "b from work"}, c.View(SideRequester))
	assert.Equal(t, SideView{Group: "Family", Pinned: true}, c.View(SideRecipient))

	assert.Equal(t, "requester_note", SideRequester.Column(SideFieldNote))
	assert.Equal(t, "recipient_pinned", SideRecipient.Column(SideFieldPinned))
	assert.Empty(t, SideNone.Column(SideFieldGroup))
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("U_A", "U_B"), PairKey("U_B", "U_A"))
	assert.NotEqual(t, PairKey("U_A", "U_B"), PairKey("U_A", "U_C"))
}

func TestUserPasswordHashing(t *testing.T) {
	u := &UserInfo{Email: "  Alice@Example.COM ", RawPassword: "secret1"}
	assert.NoError(t, u.BeforeSave(nil))

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Empty(t, u.RawPassword)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, u.CheckPassword("secret1"))
	assert.False(t, u.CheckPassword("secret2"))
	assert.Equal(t, UserStatusAway, u.Status)
	assert.Equal(t, "alice", u.DisplayName())
}

func TestMemberMutedAt(t *testing.T) {
	now := time.Now()
	past, future := now.Add(-time.Minute), now.Add(time.Minute)

	assert.False(t, (&GroupMember{}).MutedAt(now))
	assert.True(t, (&GroupMember{IsMuted: true}).MutedAt(now))
	assert.True(t, (&GroupMember{IsMuted: true, MuteUntil: &future}).MutedAt(now))
	assert.False(t, (&GroupMember{IsMuted: true, MuteUntil: &past}).MutedAt(now))
}

func TestMessageTarget(t *testing.T) {
	var m Message
	m.SetTarget(ToGroup("G1"))
	assert.Equal(t, RecipientGroup, m.RecipientModel)
	assert.Equal(t, Recipient{Kind: RecipientGroup, ID: "G1"}, m.Target())
	assert.True(t, MessageVoice.Valid())
	assert.False(t, MessageType("sticker").Valid())
}

func TestMessageInConversation(t *testing.T) {
	direct := Message{SenderId: "U_A", RecipientId: "U_B", RecipientModel: RecipientUser}
	assert.True(t, direct.InConversation("U_A", ToUser("U_B")))
	assert.True(t, direct.InConversation("U_B", ToUser("U_A")))
	assert.False(t, direct.InConversation("U_C", ToUser("U_B")))
	assert.False(t, direct.InConversation("U_A", ToGroup("U_B")))

	group := Message{SenderId: "U_A", RecipientId: "G1", RecipientModel: RecipientGroup}
	assert.True(t, group.InConversation("U_C", ToGroup("G1")))
	assert.False(t, group.InConversation("U_A", ToGroup("G2")))
}
