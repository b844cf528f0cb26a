package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// ChatService owns direct conversations and their messages
type ChatService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
}

// SendDirectMessage persists a message and its conversation link as a single
// atomic unit, then returns the payload to deliver. Nothing is pushed to
// either party until the transaction has committed; a storage failure leaves
// no partial message or conversation state behind.
func (s *ChatService) SendDirectMessage(ctx context.Context, senderID, receiverID, content, messageType string) (*models.MessagePayload, error) {
	if messageType != models.MessageTypeDirect && messageType != models.MessageTypeGroup {
		messageType = models.MessageTypeDirect
	}

	participantKey := models.FriendPairKey(senderID, receiverID)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	conversation, err := s.conversationByKey(ctx, participantKey)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, err
	}

	isNewConversation := conversation == nil
	if isNewConversation {
		conversation = &models.Conversation{
			ParticipantKey: participantKey,
			ConversationID: uuid.NewString(),
			ParticipantIDs: []string{senderID, receiverID},
			CreatedAt:      now,
			LastMessageAt:  now,
		}
	}

	message := models.Message{
		ConversationID: conversation.ConversationID,
		CreatedAt:      now,
		MessageID:      uuid.NewString(),
		SenderID:       senderID,
		Content:        content,
		Type:           messageType,
	}
	messageItem, err := attributevalue.MarshalMap(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName: aws.String(models.MessagesTable),
				Item:      messageItem,
			},
		},
	}
	if isNewConversation {
		conversationItem, err := attributevalue.MarshalMap(conversation)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal conversation: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(models.ConversationsTable),
				Item:                conversationItem,
				ConditionExpression: aws.String("attribute_not_exists(participantKey)"),
			},
		})
	} else {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:        aws.String(models.ConversationsTable),
				Key:              utils.StringKey("participantKey", participantKey),
				UpdateExpression: aws.String("SET lastMessageAt = :lastMessageAt"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":lastMessageAt": &types.AttributeValueMemberS{Value: now},
				},
				ConditionExpression: aws.String("attribute_exists(participantKey)"),
			},
		})
	}

	if err := s.Dynamo.TransactWriteItems(ctx, items); err != nil {
		log.Printf("❌ Message transaction aborted for %s: %v", participantKey, err)
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return &models.MessagePayload{
		ConversationID: conversation.ConversationID,
		ParticipantIDs: []string{senderID, receiverID},
		Message:        message,
	}, nil
}

// GetDirectMessages reads one page of the conversation between userID and
// peerID. Messages come back in chronological order. DynamoDB has no offset
// query, so skip is implemented as an over-fetch of the newest skip+take
// messages; hasMore is the page-came-back-full heuristic, not an exact count.
func (s *ChatService) GetDirectMessages(ctx context.Context, userID, peerID string, skip, take int) (*models.DirectMessagesPage, error) {
	if take <= 0 {
		take = 50
	}
	if skip < 0 {
		skip = 0
	}

	conversation, err := s.conversationByKey(ctx, models.FriendPairKey(userID, peerID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return &models.DirectMessagesPage{
				Messages:   []models.Message{},
				Pagination: models.Pagination{Skip: skip, Take: take, HasMore: false},
			}, nil
		}
		return nil, err
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable,
		"conversationId = :conversationId",
		map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: conversation.ConversationID},
		},
		int32(skip+take), true)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// Drop the skipped newest entries, then flip to chronological order
	if skip >= len(messages) {
		messages = nil
	} else {
		messages = messages[skip:]
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []models.Message{}
	}

	participants := make([]models.UserSummary, 0, len(conversation.ParticipantIDs))
	for _, participantID := range conversation.ParticipantIDs {
		profile, err := s.Profiles.GetProfile(ctx, participantID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		participants = append(participants, profile.Summary())
	}

	return &models.DirectMessagesPage{
		ConversationID: conversation.ConversationID,
		Participants:   participants,
		Messages:       messages,
		Pagination: models.Pagination{
			Skip:    skip + len(messages),
			Take:    take,
			HasMore: len(messages) == take,
		},
	}, nil
}

func (s *ChatService) conversationByKey(ctx context.Context, participantKey string) (*models.Conversation, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ConversationsTable, utils.StringKey("participantKey", participantKey))
	if err != nil {
		return nil, err
	}

	var conversation models.Conversation
	if err := attributevalue.UnmarshalMap(item, &conversation); err != nil {
		return nil, fmt.Errorf("failed to parse conversation: %w", err)
	}
	return &conversation, nil
}
