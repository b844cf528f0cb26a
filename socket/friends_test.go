package socket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkpcodes/discord-clone-backend/models"
)

type stubFriends struct {
	pending map[string][]models.FriendInvitation
	sent    map[string][]models.FriendInvitation
	friends map[string][]models.UserSummary
}

func newStubFriends() *stubFriends {
	return &stubFriends{
		pending: make(map[string][]models.FriendInvitation),
		sent:    make(map[string][]models.FriendInvitation),
		friends: make(map[string][]models.UserSummary),
	}
}

func (s *stubFriends) PendingInvitations(ctx context.Context, receiverID string) ([]models.FriendInvitation, error) {
	return s.pending[receiverID], nil
}

func (s *stubFriends) SentInvitations(ctx context.Context, senderID string) ([]models.FriendInvitation, error) {
	return s.sent[senderID], nil
}

func (s *stubFriends) FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.friends[userID], nil
}

func (s *stubFriends) befriend(a, b models.UserSummary) {
	s.friends[a.UserID] = append(s.friends[a.UserID], b)
	s.friends[b.UserID] = append(s.friends[b.UserID], a)
}

func newPresenceFixture() (*PresenceManager, *Registry, *stubFriends) {
	registry := NewRegistry()
	friends := newStubFriends()
	return &PresenceManager{Registry: registry, Friends: friends}, registry, friends
}

var (
	alice = models.UserSummary{UserID: "u1", Username: "alice", Email: "alice@example.com"}
	bob   = models.UserSummary{UserID: "u2", Username: "bob", Email: "bob@example.com"}
)

func TestHandleNewConnectionPushesSnapshots(t *testing.T) {
	req := require.New(t)
	presence, registry, friends := newPresenceFixture()
	ctx := context.Background()

	friends.befriend(alice, bob)
	friends.pending["u1"] = []models.FriendInvitation{{InvitationID: "inv1", SenderID: "u3", ReceiverID: "u1"}}

	bobConn := newFakeEmitter("c-bob")
	registry.Register(bobConn, "u2", "desktop")

	aliceConn := newFakeEmitter("c-alice")
	registry.Register(aliceConn, "u1", "desktop")
	presence.HandleNewConnection(ctx, "u1")

	req.Len(aliceConn.received(models.EventFriendInvitations), 1)
	req.Len(aliceConn.received(models.EventFriendSentInvitations), 1)
	req.Len(aliceConn.received(models.EventFriendsList), 1)

	online := aliceConn.received(models.EventOnlineFriends)
	req.Len(online, 1)
	req.Equal([]string{"u2"}, online[0])

	// Bob learns alice came online
	notice := bobConn.received(models.EventOnlineFriendID)
	req.Len(notice, 1)
	req.Equal("u1", notice[0])
}

func TestHandleNewConnectionOfflineFriendGetsNothing(t *testing.T) {
	req := require.New(t)
	presence, registry, friends := newPresenceFixture()

	friends.befriend(alice, bob)

	aliceConn := newFakeEmitter("c-alice")
	registry.Register(aliceConn, "u1", "desktop")
	presence.HandleNewConnection(context.Background(), "u1")

	online := aliceConn.received(models.EventOnlineFriends)
	req.Len(online, 1)
	req.Empty(online[0])
}

func TestHandleDisconnectOnlyWhenLastConnectionCloses(t *testing.T) {
	req := require.New(t)
	presence, registry, friends := newPresenceFixture()
	ctx := context.Background()

	friends.befriend(alice, bob)

	bobConn := newFakeEmitter("c-bob")
	registry.Register(bobConn, "u2", "desktop")

	registry.Register(newFakeEmitter("c-a1"), "u1", "desktop")
	registry.Register(newFakeEmitter("c-a2"), "u1", "mobile")

	// First device closing: alice is still online, no notice goes out
	registry.Unregister("c-a1")
	presence.HandleDisconnect(ctx, "u1")
	req.Empty(bobConn.received(models.EventOfflineFriendID))

	registry.Unregister("c-a2")
	presence.HandleDisconnect(ctx, "u1")
	notices := bobConn.received(models.EventOfflineFriendID)
	req.Len(notices, 1)
	req.Equal("u1", notices[0])
}

func TestAfterAcceptRefreshesBothParties(t *testing.T) {
	req := require.New(t)
	presence, registry, friends := newPresenceFixture()

	friends.befriend(alice, bob)

	aliceConn := newFakeEmitter("c-alice")
	bobConn := newFakeEmitter("c-bob")
	registry.Register(aliceConn, "u1", "desktop")
	registry.Register(bobConn, "u2", "desktop")

	presence.AfterAccept(context.Background(), "u1", "u2")

	for _, conn := range []*fakeEmitter{aliceConn, bobConn} {
		req.Len(conn.received(models.EventFriendInvitations), 1)
		req.Len(conn.received(models.EventFriendSentInvitations), 1)
		req.Len(conn.received(models.EventFriendsList), 1)
		req.Len(conn.received(models.EventOnlineFriends), 1)
	}
}

func TestAfterInviteTargetsEachSide(t *testing.T) {
	req := require.New(t)
	presence, registry, friends := newPresenceFixture()

	friends.pending["u2"] = []models.FriendInvitation{{InvitationID: "inv1", SenderID: "u1", ReceiverID: "u2"}}
	friends.sent["u1"] = friends.pending["u2"]

	aliceConn := newFakeEmitter("c-alice")
	bobConn := newFakeEmitter("c-bob")
	registry.Register(aliceConn, "u1", "desktop")
	registry.Register(bobConn, "u2", "desktop")

	presence.AfterInvite(context.Background(), "u1", "u2")

	req.Len(bobConn.received(models.EventFriendInvitations), 1)
	req.Empty(bobConn.received(models.EventFriendSentInvitations))
	req.Len(aliceConn.received(models.EventFriendSentInvitations), 1)
	req.Empty(aliceConn.received(models.EventFriendInvitations))
}
