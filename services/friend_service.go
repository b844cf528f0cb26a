package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// Guard violations of the invitation state machine. These are terminal for
// the triggering request only and never broadcast.
var (
	ErrSelfInvite         = errors.New("friend invitation cannot be sent to yourself")
	ErrAlreadyFriends     = errors.New("friend already added, cannot send invitation again")
	ErrAlreadyInvited     = errors.New("friend invitation already sent")
	ErrPendingFromOther   = errors.New("you already have a pending friend invitation from this user")
	ErrInvitationNotFound = errors.New("friend invitation not found")
)

// FriendService owns the friend graph and the invitation records. Friendship
// is always mutual; both friends sets change in one transaction or not at all.
type FriendService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
}

// InviteFriend validates and creates a pending invitation from sender to the
// user registered under receiverEmail.
func (s *FriendService) InviteFriend(ctx context.Context, sender models.UserSummary, receiverEmail string) (*models.FriendInvitation, error) {
	targetEmail := strings.ToLower(strings.TrimSpace(receiverEmail))

	if targetEmail == strings.ToLower(strings.TrimSpace(sender.Email)) {
		return nil, ErrSelfInvite
	}

	receiver, err := s.Profiles.GetProfileByEmail(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	for _, friendID := range receiver.Friends {
		if friendID == sender.UserID {
			return nil, ErrAlreadyFriends
		}
	}

	// One invitation per unordered pair, in either direction
	existing, err := s.invitationForPair(ctx, sender.UserID, receiver.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.SenderID == sender.UserID {
			return nil, ErrAlreadyInvited
		}
		return nil, ErrPendingFromOther
	}

	invitation := models.FriendInvitation{
		InvitationID:     uuid.NewString(),
		PairKey:          models.FriendPairKey(sender.UserID, receiver.UserID),
		SenderID:         sender.UserID,
		ReceiverID:       receiver.UserID,
		SenderUsername:   sender.Username,
		SenderEmail:      sender.Email,
		ReceiverUsername: receiver.Username,
		ReceiverEmail:    receiver.Email,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Dynamo.PutItem(ctx, invitation.TableName(), invitation); err != nil {
		return nil, err
	}

	log.Printf("✅ Friend invitation created: %s -> %s", sender.UserID, receiver.UserID)
	return &invitation, nil
}

// AcceptInvitation commits the three accept mutations as one unit: both
// friends sets gain the other party and the invitation record is deleted.
// A concurrent accept of the same invitation fails its conditional delete
// and surfaces as ErrInvitationNotFound.
func (s *FriendService) AcceptInvitation(ctx context.Context, invitationID string) (*models.FriendInvitation, error) {
	invitation, err := s.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	tableName := invitation.TableName()
	err = s.Dynamo.TransactWriteItems(ctx, []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:        aws.String(models.UserProfilesTable),
				Key:              utils.StringKey("userId", invitation.ReceiverID),
				UpdateExpression: aws.String("ADD friends :friend"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":friend": utils.StringSetValue(invitation.SenderID),
				},
			},
		},
		{
			Update: &types.Update{
				TableName:        aws.String(models.UserProfilesTable),
				Key:              utils.StringKey("userId", invitation.SenderID),
				UpdateExpression: aws.String("ADD friends :friend"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":friend": utils.StringSetValue(invitation.ReceiverID),
				},
			},
		},
		{
			Delete: &types.Delete{
				TableName:           aws.String(tableName),
				Key:                 utils.StringKey("invitationId", invitationID),
				ConditionExpression: aws.String("attribute_exists(invitationId)"),
			},
		},
	})
	if err != nil {
		if IsConditionalCheckFailure(err) {
			return nil, ErrInvitationNotFound
		}
		log.Printf("❌ Accept transaction aborted for invitation %s: %v", invitationID, err)
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	log.Printf("✅ Friend invitation accepted: %s <-> %s", invitation.SenderID, invitation.ReceiverID)
	return invitation, nil
}

// DeleteInvitation removes a pending invitation (reject and cancel share this
// path; only the acknowledgement differs). A concurrent delete of the same
// record surfaces as ErrInvitationNotFound.
func (s *FriendService) DeleteInvitation(ctx context.Context, invitationID string) (*models.FriendInvitation, error) {
	invitation, err := s.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	err = s.Dynamo.DeleteItem(ctx, invitation.TableName(),
		utils.StringKey("invitationId", invitationID),
		"attribute_exists(invitationId)")
	if err != nil {
		if IsConditionalCheckFailure(err) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return invitation, nil
}

// GetInvitation fetches a single invitation by id
func (s *FriendService) GetInvitation(ctx context.Context, invitationID string) (*models.FriendInvitation, error) {
	item, err := s.Dynamo.GetItem(ctx, models.FriendInvitation{}.TableName(), utils.StringKey("invitationId", invitationID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}

	var invitation models.FriendInvitation
	if err := attributevalue.UnmarshalMap(item, &invitation); err != nil {
		return nil, fmt.Errorf("failed to parse invitation: %w", err)
	}
	return &invitation, nil
}

// PendingInvitations lists invitations awaiting the user's decision
func (s *FriendService) PendingInvitations(ctx context.Context, receiverID string) ([]models.FriendInvitation, error) {
	return s.queryInvitations(ctx, models.ReceiverIndex, "receiverId = :receiverId",
		map[string]types.AttributeValue{
			":receiverId": &types.AttributeValueMemberS{Value: receiverID},
		})
}

// SentInvitations lists invitations the user has sent and may still cancel
func (s *FriendService) SentInvitations(ctx context.Context, senderID string) ([]models.FriendInvitation, error) {
	return s.queryInvitations(ctx, models.SenderIndex, "senderId = :senderId",
		map[string]types.AttributeValue{
			":senderId": &types.AttributeValueMemberS{Value: senderID},
		})
}

// FriendsOf returns the display summaries of a user's friends
func (s *FriendService) FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error) {
	return s.Profiles.FriendsOf(ctx, userID)
}

func (s *FriendService) invitationForPair(ctx context.Context, userA, userB string) (*models.FriendInvitation, error) {
	invitations, err := s.queryInvitations(ctx, models.PairIndex, "pairKey = :pairKey",
		map[string]types.AttributeValue{
			":pairKey": &types.AttributeValueMemberS{Value: models.FriendPairKey(userA, userB)},
		})
	if err != nil {
		return nil, err
	}
	if len(invitations) == 0 {
		return nil, nil
	}
	return &invitations[0], nil
}

func (s *FriendService) queryInvitations(ctx context.Context, indexName, keyCondition string, values map[string]types.AttributeValue) ([]models.FriendInvitation, error) {
	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.FriendInvitation{}.TableName(), indexName, keyCondition, values, 0)
	if err != nil {
		return nil, err
	}

	invitations := make([]models.FriendInvitation, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &invitations); err != nil {
		return nil, fmt.Errorf("failed to parse invitations: %w", err)
	}
	return invitations, nil
}
