package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// ErrUserNotFound is returned when no profile matches the given id or email
var ErrUserNotFound = errors.New("user not found")

// UserProfileService reads and writes user profiles
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetProfile retrieves a profile by user id
func (s *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, utils.StringKey("userId", userID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse user profile: %w", err)
	}
	return &profile, nil
}

// GetProfileByEmail resolves a profile from an email address via the EmailIndex GSI
func (s *UserProfileService) GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.UserProfilesTable, models.EmailIndex,
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		}, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrUserNotFound
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(items[0], &profile); err != nil {
		return nil, fmt.Errorf("failed to parse user profile: %w", err)
	}
	return &profile, nil
}

// CreateProfile stores a new profile
func (s *UserProfileService) CreateProfile(ctx context.Context, profile models.UserProfile) error {
	return s.Dynamo.PutItem(ctx, models.UserProfilesTable, profile)
}

// FriendsOf returns the display summaries of a user's friends
func (s *UserProfileService) FriendsOf(ctx context.Context, userID string) ([]models.UserSummary, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(profile.Friends))
	for _, friendID := range profile.Friends {
		friend, err := s.GetProfile(ctx, friendID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				// friend profile gone; skip rather than fail the snapshot
				continue
			}
			return nil, err
		}
		summaries = append(summaries, friend.Summary())
	}
	return summaries, nil
}
