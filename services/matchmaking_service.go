package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/realtime"
	"github.com/velmir/quizduel-server/repositories"
)

const (
	QuickMatchJoined  = "joined"
	QuickMatchCreated = "created"
)

type QuickMatchResult struct {
	MatchID int    `json:"match_id"`
	Code    string `json:"code"`
	Status  string `json:"status"`
}

// MatchmakingService finds an opponent for the requester or opens a fresh
// waiting match. There is no queue and no background worker: every call is a
// synchronous best-effort scan over a bounded candidate set.
type MatchmakingService interface {
	QuickMatch(ctx context.Context, input CreateMatchInput) (*QuickMatchResult, error)
}

type matchmakingService struct {
	tx        repositories.TxManager
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	hub       *realtime.Hub
	logger    *slog.Logger
}

func NewMatchmakingService(
	tx repositories.TxManager,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) MatchmakingService {
	return &matchmakingService{
		tx:        tx,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		hub:       hub,
		logger:    logger,
	}
}

// QuickMatch works through three tiers: waiting matches from the requester's
// country within 500 rank points, then any waiting match inside the ±500
// rank window, then any waiting match at all. The first candidate that still
// has room (and does not already hold the requester's name) wins; when every
// tier misses, a new match is created exactly as Create would.
func (s *matchmakingService) QuickMatch(ctx context.Context, input CreateMatchInput) (*QuickMatchResult, error) {
	if strings.TrimSpace(input.PlayerName) == "" {
		return nil, ErrPlayerNameRequired
	}
	if err := validateQuestionList(input.Questions); err != nil {
		return nil, err
	}

	var (
		result  *QuickMatchResult
		updated *models.Match
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		rank, country, err := ledgerSnapshot(ctx, exec, s.userRepo, input.PlayerName)
		if err != nil {
			return err
		}

		candidates, err := s.rankedCandidates(ctx, exec, rank, country, input.PlayerName)
		if err != nil {
			return err
		}

		for _, candidate := range candidates {
			// The candidate lists are unlocked snapshots; re-read under a row
			// lock and re-check before committing to the join.
			match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, candidate.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrMatchNotFound) {
					continue
				}
				return err
			}
			if !quickMatchEligible(match, input.PlayerName) {
				continue
			}

			match.Players = append(match.Players, newMatchPlayer(input.PlayerID, input.PlayerName, input.CharacterID))
			match.Participants = append(match.Participants, input.PlayerName)
			if err := s.matchRepo.Update(ctx, exec, match); err != nil {
				return err
			}
			result = &QuickMatchResult{MatchID: match.ID, Code: match.Code, Status: QuickMatchJoined}
			updated = match
			return nil
		}

		// Nobody to play against: open a new waiting match.
		code, err := newMatchCode(ctx, exec, s.matchRepo)
		if err != nil {
			return err
		}
		match := buildMatch(input, code, rank, country)
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		result = &QuickMatchResult{MatchID: match.ID, Code: match.Code, Status: QuickMatchCreated}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("quick match failed: %w", err)
	}
	broadcastMatch(s.hub, updated)
	return result, nil
}

// rankedCandidates builds the ordered list of joinable matches across the
// three tiers. Later tiers never demote an earlier hit; duplicates between
// tiers are dropped.
func (s *matchmakingService) rankedCandidates(ctx context.Context, exec repositories.SQLExecutor, rank int, country, playerName string) ([]*models.Match, error) {
	var (
		ordered []*models.Match
		seen    = make(map[int]bool)
	)
	add := func(matches []*models.Match) {
		for _, m := range matches {
			if !seen[m.ID] {
				seen[m.ID] = true
				ordered = append(ordered, m)
			}
		}
	}

	// Tier 1: same country, capped at 500 rank points of distance. Skipped
	// entirely for players whose country is unknown.
	if country != unknownCountry {
		matches, err := s.matchRepo.ListWaitingByCountry(ctx, exec, country, candidateScanLimit)
		if err != nil {
			return nil, err
		}
		tier := filterEligible(matches, playerName)
		sortByRankDistance(tier, rank)
		cutoff := 0
		for _, m := range tier {
			if rankDistance(m, rank) > matchmakingRankWindow {
				break
			}
			cutoff++
		}
		add(tier[:cutoff])
	}

	// Tier 2: any country inside the rank window, closest first.
	matches, err := s.matchRepo.ListWaitingByRankRange(ctx, exec, rank-matchmakingRankWindow, rank+matchmakingRankWindow, candidateScanLimit)
	if err != nil {
		return nil, err
	}
	tier := filterEligible(matches, playerName)
	sortByRankDistance(tier, rank)
	add(tier)

	// Tier 3: anyone waiting at all.
	matches, err = s.matchRepo.ListWaiting(ctx, exec, candidateScanLimit)
	if err != nil {
		return nil, err
	}
	add(filterEligible(matches, playerName))

	return ordered, nil
}

func quickMatchEligible(match *models.Match, playerName string) bool {
	return match.HasRoom() && match.PlayerByName(playerName) == nil
}

func filterEligible(matches []*models.Match, playerName string) []*models.Match {
	eligible := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if quickMatchEligible(m, playerName) {
			eligible = append(eligible, m)
		}
	}
	return eligible
}

func rankDistance(match *models.Match, rank int) int {
	other := defaultRank
	if match.PublicRank != nil {
		other = *match.PublicRank
	}
	d := other - rank
	if d < 0 {
		d = -d
	}
	return d
}

func sortByRankDistance(matches []*models.Match, rank int) {
	sort.SliceStable(matches, func(i, j int) bool {
		return rankDistance(matches[i], rank) < rankDistance(matches[j], rank)
	})
}
