package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

// ErrServerNotFound is returned when no server matches the given id
var ErrServerNotFound = errors.New("server not found")

// ServerService manages servers, the member groups that voice channel
// occupancy updates fan out to
type ServerService struct {
	Dynamo *DynamoService
}

// CreateServer stores a new server with the creator as owner and sole member
func (s *ServerService) CreateServer(ctx context.Context, owner models.UserSummary, name string) (*models.Server, error) {
	server := models.Server{
		ServerID:  uuid.NewString(),
		Name:      name,
		OwnerID:   owner.UserID,
		Members:   []string{owner.UserID},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.ServersTable, server); err != nil {
		return nil, err
	}
	return &server, nil
}

// GetServer fetches a server by id
func (s *ServerService) GetServer(ctx context.Context, serverID string) (*models.Server, error) {
	item, err := s.Dynamo.GetItem(ctx, models.ServersTable, utils.StringKey("serverId", serverID))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrServerNotFound
		}
		return nil, err
	}

	var server models.Server
	if err := attributevalue.UnmarshalMap(item, &server); err != nil {
		return nil, fmt.Errorf("failed to parse server: %w", err)
	}
	return &server, nil
}

// Members returns the user ids belonging to a server
func (s *ServerService) Members(ctx context.Context, serverID string) ([]string, error) {
	server, err := s.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	return server.Members, nil
}

// ServersFor lists the servers the user is a member of
func (s *ServerService) ServersFor(ctx context.Context, userID string) ([]models.Server, error) {
	var servers []models.Server
	if err := s.Dynamo.ScanItems(ctx, models.ServersTable, &servers); err != nil {
		return nil, err
	}
	return lo.Filter(servers, func(server models.Server, _ int) bool {
		return lo.Contains(server.Members, userID)
	}), nil
}

// JoinServer adds the user to the server's member set
func (s *ServerService) JoinServer(ctx context.Context, serverID, userID string) error {
	_, err := s.Dynamo.UpdateItem(ctx, models.ServersTable,
		"ADD members :member",
		utils.StringKey("serverId", serverID),
		map[string]types.AttributeValue{
			":member": utils.StringSetValue(userID),
		},
		"attribute_exists(serverId)")
	if err != nil {
		if IsConditionalCheckFailure(err) {
			return ErrServerNotFound
		}
		return err
	}
	return nil
}
