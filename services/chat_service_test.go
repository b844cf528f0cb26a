package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jkpcodes/discord-clone-backend/models"
)

func newChatFixture(t *testing.T) (*ChatService, *fakeDynamo) {
	t.Helper()
	store, fake := newTestStore()
	profiles := &UserProfileService{Dynamo: store}
	svc := &ChatService{Dynamo: store, Profiles: profiles}

	ctx := context.Background()
	for _, user := range []models.UserProfile{
		{UserID: "u1", Username: "alice", Email: "alice@example.com"},
		{UserID: "u2", Username: "bob", Email: "bob@example.com"},
	} {
		require.NoError(t, profiles.CreateProfile(ctx, user))
	}
	return svc, fake
}

// sendOrdered spaces the writes out so every message gets a distinct sort key
func sendOrdered(t *testing.T, svc *ChatService, senderID, receiverID string, contents ...string) {
	t.Helper()
	for _, content := range contents {
		_, err := svc.SendDirectMessage(context.Background(), senderID, receiverID, content, models.MessageTypeDirect)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSendDirectMessageCreatesConversationOnce(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatFixture(t)
	ctx := context.Background()

	first, err := svc.SendDirectMessage(ctx, "u1", "u2", "hey", models.MessageTypeDirect)
	req.NoError(err)
	req.NotEmpty(first.ConversationID)
	req.ElementsMatch([]string{"u1", "u2"}, first.ParticipantIDs)
	req.Equal("hey", first.Message.Content)
	req.Equal("u1", first.Message.SenderID)

	time.Sleep(2 * time.Millisecond)

	// The reply from the other side lands in the same conversation
	second, err := svc.SendDirectMessage(ctx, "u2", "u1", "hi back", models.MessageTypeDirect)
	req.NoError(err)
	req.Equal(first.ConversationID, second.ConversationID)
}

func TestGetDirectMessagesChronologicalOrder(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatFixture(t)
	ctx := context.Background()

	sendOrdered(t, svc, "u1", "u2", "one", "two")
	sendOrdered(t, svc, "u2", "u1", "three")

	page, err := svc.GetDirectMessages(ctx, "u2", "u1", 0, 50)
	req.NoError(err)
	req.Len(page.Messages, 3)
	req.Equal("one", page.Messages[0].Content)
	req.Equal("two", page.Messages[1].Content)
	req.Equal("three", page.Messages[2].Content)
	req.False(page.Pagination.HasMore)
	req.Equal(3, page.Pagination.Skip)

	usernames := []string{page.Participants[0].Username, page.Participants[1].Username}
	req.ElementsMatch([]string{"alice", "bob"}, usernames)
}

func TestGetDirectMessagesPagination(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatFixture(t)
	ctx := context.Background()

	sendOrdered(t, svc, "u1", "u2", "m1", "m2", "m3", "m4", "m5")

	// First page: the two newest, still in chronological order
	page, err := svc.GetDirectMessages(ctx, "u1", "u2", 0, 2)
	req.NoError(err)
	req.Len(page.Messages, 2)
	req.Equal("m4", page.Messages[0].Content)
	req.Equal("m5", page.Messages[1].Content)
	req.True(page.Pagination.HasMore)
	req.Equal(2, page.Pagination.Skip)

	// Next page continues where the first left off
	page, err = svc.GetDirectMessages(ctx, "u1", "u2", page.Pagination.Skip, 2)
	req.NoError(err)
	req.Len(page.Messages, 2)
	req.Equal("m2", page.Messages[0].Content)
	req.Equal("m3", page.Messages[1].Content)
	req.True(page.Pagination.HasMore)

	// Last page comes back short
	page, err = svc.GetDirectMessages(ctx, "u1", "u2", 4, 2)
	req.NoError(err)
	req.Len(page.Messages, 1)
	req.Equal("m1", page.Messages[0].Content)
	req.False(page.Pagination.HasMore)

	// Skipping past the end yields an empty page
	page, err = svc.GetDirectMessages(ctx, "u1", "u2", 10, 2)
	req.NoError(err)
	req.Empty(page.Messages)
	req.False(page.Pagination.HasMore)
}

func TestGetDirectMessagesWithoutConversation(t *testing.T) {
	req := require.New(t)
	svc, _ := newChatFixture(t)

	page, err := svc.GetDirectMessages(context.Background(), "u1", "u2", 0, 0)
	req.NoError(err)
	req.Empty(page.Messages)
	req.Empty(page.ConversationID)
	req.Equal(50, page.Pagination.Take)
	req.False(page.Pagination.HasMore)
}

func TestSendDirectMessageAbortedTransaction(t *testing.T) {
	req := require.New(t)
	svc, fake := newChatFixture(t)
	ctx := context.Background()

	fake.transactErr = context.DeadlineExceeded
	_, err := svc.SendDirectMessage(ctx, "u1", "u2", "lost", models.MessageTypeDirect)
	req.Error(err)

	// Neither the message nor the conversation was persisted
	page, err := svc.GetDirectMessages(ctx, "u1", "u2", 0, 10)
	req.NoError(err)
	req.Empty(page.Messages)
	req.Empty(page.ConversationID)
}
