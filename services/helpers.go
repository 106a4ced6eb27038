package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/realtime"
	"github.com/velmir/quizduel-server/repositories"
)

// Duel tuning. The increments are flat; there is no proportional rating
// formula.
const (
	startingHP         = 100
	damagePerHit       = 20
	scorePerHit        = 100
	maxPlayersPerMatch = 2

	winnerRankGain = 25
	loserRankLoss  = 10

	defaultRank    = 1000
	unknownCountry = "unknown"

	matchmakingRankWindow = 500
	candidateScanLimit    = 20

	codeLength  = 5
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func generateMatchCode() string {
	return randomString(codeLength)
}

func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(b)
}

// newMatchCode draws a join code, retrying a few times when the code already
// belongs to a live match. The space is small enough that collisions happen;
// after the retries the last candidate is used as-is.
func newMatchCode(ctx context.Context, exec repositories.SQLExecutor, matchRepo repositories.MatchRepository) (string, error) {
	code := generateMatchCode()
	for attempt := 0; attempt < 3; attempt++ {
		inUse, err := matchRepo.CodeInUse(ctx, exec, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			break
		}
		code = generateMatchCode()
	}
	return code, nil
}

// ledgerSnapshot reads the player's rank and country for use as matchmaking
// search keys. Unregistered players are legitimate guests and get defaults.
func ledgerSnapshot(ctx context.Context, exec repositories.SQLExecutor, userRepo repositories.UserRepository, playerName string) (int, string, error) {
	user, err := userRepo.GetByUsername(ctx, exec, playerName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return defaultRank, unknownCountry, nil
		}
		return 0, "", err
	}
	country := unknownCountry
	if user.Country != nil && *user.Country != "" {
		country = *user.Country
	}
	return user.Rank, country, nil
}

func newMatchPlayer(playerID, playerName, characterID string) models.MatchPlayer {
	return models.MatchPlayer{
		ID:          playerID,
		Name:        playerName,
		CharacterID: characterID,
		Score:       0,
		HP:          startingHP,
	}
}

func buildMatch(input CreateMatchInput, code string, rank int, country string) *models.Match {
	return &models.Match{
		Code:          code,
		MapID:         input.MapID,
		Status:        models.MatchStatusWaiting,
		Players:       []models.MatchPlayer{newMatchPlayer(input.PlayerID, input.PlayerName, input.CharacterID)},
		PublicRank:    &rank,
		PublicCountry: &country,
		Questions:     input.Questions,
		Participants:  []string{input.PlayerName},
	}
}

func broadcastMatch(hub *realtime.Hub, match *models.Match) {
	if hub == nil || match == nil {
		return
	}
	room := realtime.MatchRoom(match.ID)
	hub.BroadcastToRoom(room, realtime.Message{
		Type:    realtime.MessageTypeMatchUpdated,
		Payload: match,
		RoomID:  room,
	})
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
