package socket

import (
	"context"
	"log"

	"github.com/samber/lo"

	"github.com/jkpcodes/discord-clone-backend/models"
)

// FriendDirectory is the slice of the friend service the fan-out needs
type FriendDirectory interface {
	PendingInvitations(ctx context.Context, receiverID string) ([]models.FriendInvitation, error)
	SentInvitations(ctx context.Context, senderID string) ([]models.FriendInvitation, error)
	FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error)
}

// PresenceManager pushes friend-graph and presence state through the
// registry. Snapshot pushes are full replacements and therefore safe to
// repeat; the online/offline notices are one-shot deltas with no replay.
type PresenceManager struct {
	Registry *Registry
	Friends  FriendDirectory
}

// HandleNewConnection fires whenever a connection registers, first or Nth.
// The user gets the four state snapshots; each friend already online gets a
// one-off "this friend is now online" notice.
func (m *PresenceManager) HandleNewConnection(ctx context.Context, userID string) {
	m.Registry.Deliver(userID,
		m.invitationsNotifier(ctx),
		m.sentInvitationsNotifier(ctx),
		m.friendsListNotifier(ctx),
		m.onlineFriendsNotifier(ctx),
	)
	m.announceOnline(ctx, userID)
}

// HandleDisconnect fires after a connection unregisters. Presence is
// connection-count-based: only the last connection closing makes the user
// offline, closing one of several produces no notification.
func (m *PresenceManager) HandleDisconnect(ctx context.Context, userID string) {
	if m.Registry.IsOnline(userID) {
		return
	}

	for _, friendID := range m.onlineFriendIDs(ctx, userID) {
		EmitTo(m.Registry.ConnectionsOf(friendID), models.EventOfflineFriendID, userID)
	}
}

// AfterInvite refreshes the invitation snapshots of both parties
func (m *PresenceManager) AfterInvite(ctx context.Context, senderID, receiverID string) {
	m.Registry.Deliver(receiverID, m.invitationsNotifier(ctx))
	m.Registry.Deliver(senderID, m.sentInvitationsNotifier(ctx))
}

// AfterInvitationRemoved refreshes invitation snapshots after a reject or
// cancel
func (m *PresenceManager) AfterInvitationRemoved(ctx context.Context, senderID, receiverID string) {
	m.Registry.Deliver(receiverID, m.invitationsNotifier(ctx), m.sentInvitationsNotifier(ctx))
	m.Registry.Deliver(senderID, m.invitationsNotifier(ctx), m.sentInvitationsNotifier(ctx))
}

// AfterAccept pushes the full post-accept state to both new friends
func (m *PresenceManager) AfterAccept(ctx context.Context, senderID, receiverID string) {
	for _, userID := range []string{receiverID, senderID} {
		m.Registry.Deliver(userID,
			m.invitationsNotifier(ctx),
			m.sentInvitationsNotifier(ctx),
			m.friendsListNotifier(ctx),
			m.onlineFriendsNotifier(ctx),
		)
	}
}

func (m *PresenceManager) invitationsNotifier(ctx context.Context) Notifier {
	return func(userID string, conns []*Connection) {
		invitations, err := m.Friends.PendingInvitations(ctx, userID)
		if err != nil {
			log.Printf("❌ Failed to load pending invitations for %s: %v", userID, err)
			return
		}
		EmitTo(conns, models.EventFriendInvitations, invitations)
	}
}

func (m *PresenceManager) sentInvitationsNotifier(ctx context.Context) Notifier {
	return func(userID string, conns []*Connection) {
		invitations, err := m.Friends.SentInvitations(ctx, userID)
		if err != nil {
			log.Printf("❌ Failed to load sent invitations for %s: %v", userID, err)
			return
		}
		EmitTo(conns, models.EventFriendSentInvitations, invitations)
	}
}

func (m *PresenceManager) friendsListNotifier(ctx context.Context) Notifier {
	return func(userID string, conns []*Connection) {
		friends, err := m.Friends.FriendsOf(ctx, userID)
		if err != nil {
			log.Printf("❌ Failed to load friends list for %s: %v", userID, err)
			return
		}
		EmitTo(conns, models.EventFriendsList, friends)
	}
}

// onlineFriendsNotifier pushes the online subset of the user's friends
func (m *PresenceManager) onlineFriendsNotifier(ctx context.Context) Notifier {
	return func(userID string, conns []*Connection) {
		EmitTo(conns, models.EventOnlineFriends, m.onlineFriendIDs(ctx, userID))
	}
}

// announceOnline sends the one-off online notice to each online friend's own
// connections
func (m *PresenceManager) announceOnline(ctx context.Context, userID string) {
	for _, friendID := range m.onlineFriendIDs(ctx, userID) {
		EmitTo(m.Registry.ConnectionsOf(friendID), models.EventOnlineFriendID, userID)
	}
}

func (m *PresenceManager) onlineFriendIDs(ctx context.Context, userID string) []string {
	friends, err := m.Friends.FriendsOf(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to load friends of %s: %v", userID, err)
		return []string{}
	}

	friendIDs := lo.Map(friends, func(friend models.UserSummary, _ int) string {
		return friend.UserID
	})
	return lo.Filter(m.Registry.OnlineUsers(), func(onlineID string, _ int) bool {
		return lo.Contains(friendIDs, onlineID)
	})
}
