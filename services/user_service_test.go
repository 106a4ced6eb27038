package services

import (
	"context"
	"errors"
	"testing"

	"github.com/velmir/quizduel-server/models"
)

func TestLeaderboardOrdersByRank(t *testing.T) {
	userRepo := newStubUserRepository()
	userRepo.seed(models.User{Username: "ash", Rank: 900})
	userRepo.seed(models.User{Username: "misty", Rank: 1400})
	userRepo.seed(models.User{Username: "brock", Rank: 1100})
	svc := NewUserService(userRepo)

	users, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("leaderboard size = %d, want 3", len(users))
	}
	if users[0].Username != "misty" || users[1].Username != "brock" || users[2].Username != "ash" {
		t.Errorf("order = %s, %s, %s; want misty, brock, ash",
			users[0].Username, users[1].Username, users[2].Username)
	}
}

func TestProfile(t *testing.T) {
	userRepo := newStubUserRepository()
	userRepo.seed(models.User{Username: "ash", Rank: 1225, Wins: 4, GamesPlayed: 11})
	svc := NewUserService(userRepo)

	user, err := svc.Profile(context.Background(), "ash")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Rank != 1225 || user.Wins != 4 {
		t.Errorf("profile = %+v", user)
	}

	if _, err := svc.Profile(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
