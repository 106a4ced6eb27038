package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/realtime"
	"github.com/velmir/quizduel-server/repositories"
)

// AnswerOutcome is the result of one answer submission. AnswerNone means the
// call was a stale no-op (match gone, already resolved, or not playing).
type AnswerOutcome string

const (
	AnswerNone AnswerOutcome = ""
	AnswerMiss AnswerOutcome = "MISS"
	AnswerHit  AnswerOutcome = "HIT"
	AnswerWin  AnswerOutcome = "WIN"
)

type CreateMatchInput struct {
	PlayerName  string
	PlayerID    string
	CharacterID string
	MapID       *string
	Questions   []models.Question
}

type CreateMatchResult struct {
	MatchID int    `json:"match_id"`
	Code    string `json:"code"`
}

// CharacterResolver turns an opaque character reference into something a
// client can render. Built-in names, data URIs and URLs pass through.
type CharacterResolver interface {
	ResolveCharacter(ref string) string
}

// MatchService drives a duel from creation to resolution.
type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*CreateMatchResult, error)
	Join(ctx context.Context, code, playerName, playerID, characterID string) (int, error)
	Start(ctx context.Context, matchID int) error
	SubmitAnswer(ctx context.Context, matchID int, playerID string, answerIndex int) (AnswerOutcome, error)
	Get(ctx context.Context, matchID int) (*models.Match, error)
	GetByCode(ctx context.Context, code string) (*models.Match, error)
	History(ctx context.Context, playerName string, limit int) ([]*models.Match, error)
}

type matchService struct {
	tx        repositories.TxManager
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	bank      *QuestionBank
	resolver  CharacterResolver
	hub       *realtime.Hub
	logger    *slog.Logger
}

func NewMatchService(
	tx repositories.TxManager,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	bank *QuestionBank,
	resolver CharacterResolver,
	hub *realtime.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:        tx,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		bank:      bank,
		resolver:  resolver,
		hub:       hub,
		logger:    logger,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*CreateMatchResult, error) {
	if strings.TrimSpace(input.PlayerName) == "" {
		return nil, ErrPlayerNameRequired
	}
	if err := validateQuestionList(input.Questions); err != nil {
		return nil, err
	}

	var result *CreateMatchResult
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		rank, country, err := ledgerSnapshot(ctx, exec, s.userRepo, input.PlayerName)
		if err != nil {
			return err
		}
		code, err := newMatchCode(ctx, exec, s.matchRepo)
		if err != nil {
			return err
		}
		match := buildMatch(input, code, rank, country)
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		result = &CreateMatchResult{MatchID: match.ID, Code: match.Code}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return result, nil
}

func (s *matchService) Join(ctx context.Context, code, playerName, playerID, characterID string) (int, error) {
	if strings.TrimSpace(playerName) == "" {
		return 0, ErrPlayerNameRequired
	}
	code = strings.ToUpper(strings.TrimSpace(code))

	var (
		matchID int
		updated *models.Match
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByCodeForUpdate(ctx, exec, code)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		// Same display name, same identity: the player re-joining, nothing to
		// do. Same name, different identity: a second tab or an impostor.
		if existing := match.PlayerByName(playerName); existing != nil {
			if existing.ID != playerID {
				return ErrPlayerNameTaken
			}
			matchID = match.ID
			return nil
		}

		if match.Status != models.MatchStatusWaiting {
			return ErrMatchNotJoinable
		}
		if len(match.Players) >= maxPlayersPerMatch {
			return ErrMatchFull
		}

		match.Players = append(match.Players, newMatchPlayer(playerID, playerName, characterID))
		match.Participants = append(match.Participants, playerName)
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return err
		}
		matchID = match.ID
		updated = match
		return nil
	})
	if err != nil {
		return 0, err
	}
	broadcastMatch(s.hub, updated)
	return matchID, nil
}

func (s *matchService) Start(ctx context.Context, matchID int) error {
	var updated *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		q := drawQuestion(s.questionSource(match), "")
		match.Status = models.MatchStatusPlaying
		match.CurrentQuestion = &models.CurrentQuestion{
			Text:         q.Text,
			Code:         q.Code,
			Options:      q.Options,
			CorrectIndex: q.Correct,
			StartTime:    nowMillis(),
		}
		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return err
		}
		updated = match
		return nil
	})
	if err != nil {
		return err
	}
	broadcastMatch(s.hub, updated)
	return nil
}

// SubmitAnswer applies one answer to the active question. Calls against a
// missing, waiting or already finished match are silent no-ops: that is the
// expected shape of a client's last click racing a just-resolved duel.
//
// Damage applies to every player other than the answerer, which is only
// correct for exactly two players. The room capacity guarantees that.
func (s *matchService) SubmitAnswer(ctx context.Context, matchID int, playerID string, answerIndex int) (AnswerOutcome, error) {
	outcome := AnswerNone
	var updated *models.Match

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil
			}
			return err
		}
		if match.Status != models.MatchStatusPlaying || match.CurrentQuestion == nil {
			return nil
		}
		answerer := match.PlayerByID(playerID)
		if answerer == nil {
			return nil
		}

		question := match.CurrentQuestion
		if answerIndex != question.CorrectIndex {
			// Costs the answerer nothing and leaves the question open for
			// the opponent.
			outcome = AnswerMiss
			return nil
		}

		answerer.Score += scorePerHit
		defeated := false
		for i := range match.Players {
			p := &match.Players[i]
			if p.ID == playerID {
				continue
			}
			p.HP -= damagePerHit
			if p.HP <= 0 {
				p.HP = 0
				defeated = true
			}
		}

		if defeated {
			winnerID := playerID
			match.Status = models.MatchStatusFinished
			match.Winner = &winnerID
			match.CurrentQuestion = nil
			if err := s.applyMatchResult(ctx, exec, match, playerID); err != nil {
				return err
			}
			outcome = AnswerWin
		} else {
			next := drawQuestion(s.questionSource(match), question.Text)
			match.CurrentQuestion = &models.CurrentQuestion{
				Text:         next.Text,
				Code:         next.Code,
				Options:      next.Options,
				CorrectIndex: next.Correct,
				StartTime:    nowMillis(),
			}
			outcome = AnswerHit
		}

		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return err
		}
		updated = match
		return nil
	})
	if err != nil {
		return AnswerNone, err
	}
	broadcastMatch(s.hub, updated)
	return outcome, nil
}

// applyMatchResult adjusts the rank ledger at the WIN transition, inside the
// same transaction as the match resolution. Players without a ledger row are
// unranked guests; their update is skipped.
func (s *matchService) applyMatchResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerID string) error {
	for i := range match.Players {
		p := match.Players[i]
		user, err := s.userRepo.GetByUsernameForUpdate(ctx, exec, p.Name)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				continue
			}
			return err
		}

		rank := user.Rank
		wins := user.Wins
		if p.ID == winnerID {
			rank += winnerRankGain
			wins++
		} else {
			rank -= loserRankLoss
			if rank < 0 {
				rank = 0
			}
		}
		if err := s.userRepo.UpdateStats(ctx, exec, user.ID, rank, wins, user.GamesPlayed+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *matchService) Get(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	s.resolveAvatars(match)
	return match, nil
}

func (s *matchService) GetByCode(ctx context.Context, code string) (*models.Match, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	match, err := s.matchRepo.GetByCode(ctx, nil, code)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	s.resolveAvatars(match)
	return match, nil
}

func (s *matchService) History(ctx context.Context, playerName string, limit int) ([]*models.Match, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	matches, err := s.matchRepo.ListByParticipant(ctx, nil, playerName, limit)
	if err != nil {
		return nil, err
	}
	for _, match := range matches {
		s.resolveAvatars(match)
	}
	return matches, nil
}

func (s *matchService) questionSource(match *models.Match) []models.Question {
	if len(match.Questions) > 0 {
		return match.Questions
	}
	return s.bank.Questions()
}

func (s *matchService) resolveAvatars(match *models.Match) {
	if s.resolver == nil {
		return
	}
	for i := range match.Players {
		match.Players[i].CharacterID = s.resolver.ResolveCharacter(match.Players[i].CharacterID)
	}
}
