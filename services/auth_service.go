package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/repositories"
)

const tokenTTL = 72 * time.Hour

type RegisterInput struct {
	Username string  `json:"username"`
	Country  *string `json:"country,omitempty"`
	Pin      *string `json:"pin,omitempty"`
}

type LoginInput struct {
	Username string  `json:"username"`
	Pin      *string `json:"pin,omitempty"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
	IsNew bool         `json:"is_new"`
}

// AuthService is the registration scheme of this game: a username, an
// optional country, an optional PIN. New users enter the ledger at rank 1000.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret []byte) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates the user, or logs an existing one back in: a username
// that already exists is the same player returning, provided any stored PIN
// matches. The country is refreshed when the client sends a different one.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	user, err := s.userRepo.GetByUsername(ctx, nil, username)
	if err == nil {
		if err := verifyPin(user, input.Pin); err != nil {
			return nil, err
		}
		if input.Country != nil && (user.Country == nil || *user.Country != *input.Country) {
			if err := s.userRepo.UpdateCountry(ctx, nil, user.ID, *input.Country); err != nil {
				return nil, fmt.Errorf("failed to refresh country for %s: %w", username, err)
			}
			user.Country = input.Country
		}
		token, err := s.generateToken(user)
		if err != nil {
			return nil, err
		}
		return &AuthResult{User: user, Token: token, IsNew: false}, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		Username:    username,
		Country:     input.Country,
		Rank:        defaultRank,
		Wins:        0,
		GamesPlayed: 0,
	}
	if input.Pin != nil && *input.Pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Pin), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash pin: %w", err)
		}
		hashed := string(hash)
		user.PinHash = &hashed
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		// Two first-time registrations racing on the same name: the lookup
		// above saw nothing, the unique index caught the second insert.
		if errors.Is(err, repositories.ErrUserUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, IsNew: true}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	user, err := s.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Signals the client to register.
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := verifyPin(user, input.Pin); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, IsNew: false}, nil
}

func verifyPin(user *models.User, pin *string) error {
	if user.PinHash == nil {
		return nil
	}
	if pin == nil {
		return ErrInvalidPin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PinHash), []byte(*pin)); err != nil {
		return ErrInvalidPin
	}
	return nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.Username,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
