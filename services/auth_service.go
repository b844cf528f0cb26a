package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jkpcodes/discord-clone-backend/models"
	"github.com/jkpcodes/discord-clone-backend/utils"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const tokenLifetime = 24 * time.Hour

// AuthService registers accounts and issues the tokens the socket handshake
// verifies
type AuthService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
}

// Register creates a profile with a bcrypt password hash and returns it with
// a fresh token
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.UserProfile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.Profiles.GetProfileByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	profile := models.UserProfile{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Profiles.CreateProfile(ctx, profile); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(profile.Summary(), tokenLifetime)
	if err != nil {
		return nil, "", err
	}
	return &profile, token, nil
}

// Login verifies the password for the account registered under email
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.UserProfile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.Profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(profile.Summary(), tokenLifetime)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}
