package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/repositories"
)

const leaderboardLimit = 100

type UserService interface {
	Leaderboard(ctx context.Context) ([]*models.User, error)
	Profile(ctx context.Context, username string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Leaderboard(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.ListTopByRank(ctx, nil, leaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return users, nil
}

func (s *userService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
