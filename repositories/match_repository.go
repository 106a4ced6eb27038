package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/velmir/quizduel-server/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRepository persists match documents. Methods take a SQLExecutor so a
// caller holding a transaction can run reads and writes on it; passing nil
// uses the plain connection pool. The ForUpdate variants lock the row until
// the surrounding transaction commits, which is how concurrent joins and
// answers against the same match serialize.
type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Match, error)
	GetByCodeForUpdate(ctx context.Context, exec SQLExecutor, code string) (*models.Match, error)
	CodeInUse(ctx context.Context, exec SQLExecutor, code string) (bool, error)
	ListWaiting(ctx context.Context, exec SQLExecutor, limit int) ([]*models.Match, error)
	ListWaitingByCountry(ctx context.Context, exec SQLExecutor, country string, limit int) ([]*models.Match, error)
	ListWaitingByRankRange(ctx context.Context, exec SQLExecutor, minRank, maxRank, limit int) ([]*models.Match, error)
	ListByParticipant(ctx context.Context, exec SQLExecutor, name string, limit int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) ex(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, code, map_id, status, players, current_question, winner,
	public_rank, public_country, questions, participants, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	playersJSON, err := json.Marshal(match.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	questionJSON, err := marshalCurrentQuestion(match.CurrentQuestion)
	if err != nil {
		return fmt.Errorf("failed to marshal current question: %w", err)
	}
	var questionsJSON *string
	if len(match.Questions) > 0 {
		b, err := json.Marshal(match.Questions)
		if err != nil {
			return fmt.Errorf("failed to marshal custom questions: %w", err)
		}
		s := string(b)
		questionsJSON = &s
	}

	query := `
		INSERT INTO matches
			(code, map_id, status, players, current_question, winner,
			 public_rank, public_country, questions, participants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err = r.ex(exec).QueryRowContext(ctx, query,
		match.Code,
		match.MapID,
		match.Status,
		string(playersJSON),
		questionJSON,
		match.Winner,
		match.PublicRank,
		match.PublicCountry,
		questionsJSON,
		pq.Array(match.Participants),
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanOne(r.ex(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.ex(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE code = $1 ORDER BY id DESC LIMIT 1`
	return r.scanOne(r.ex(exec).QueryRowContext(ctx, query, code))
}

func (r *postgresMatchRepository) GetByCodeForUpdate(ctx context.Context, exec SQLExecutor, code string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE code = $1 ORDER BY id DESC LIMIT 1 FOR UPDATE`
	return r.scanOne(r.ex(exec).QueryRowContext(ctx, query, code))
}

func (r *postgresMatchRepository) CodeInUse(ctx context.Context, exec SQLExecutor, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE code = $1 AND status <> $2)`
	var exists bool
	err := r.ex(exec).QueryRowContext(ctx, query, code, models.MatchStatusFinished).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code usage: %w", err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) ListWaiting(ctx context.Context, exec SQLExecutor, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE status = $1 ORDER BY id ASC LIMIT $2`
	return r.list(ctx, exec, query, models.MatchStatusWaiting, limit)
}

func (r *postgresMatchRepository) ListWaitingByCountry(ctx context.Context, exec SQLExecutor, country string, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = $1 AND public_country = $2 ORDER BY id ASC LIMIT $3`
	return r.list(ctx, exec, query, models.MatchStatusWaiting, country, limit)
}

func (r *postgresMatchRepository) ListWaitingByRankRange(ctx context.Context, exec SQLExecutor, minRank, maxRank, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = $1 AND public_rank BETWEEN $2 AND $3 ORDER BY id ASC LIMIT $4`
	return r.list(ctx, exec, query, models.MatchStatusWaiting, minRank, maxRank, limit)
}

func (r *postgresMatchRepository) ListByParticipant(ctx context.Context, exec SQLExecutor, name string, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE $1 = ANY(participants) ORDER BY id DESC LIMIT $2`
	return r.list(ctx, exec, query, name, limit)
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	playersJSON, err := json.Marshal(match.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	questionJSON, err := marshalCurrentQuestion(match.CurrentQuestion)
	if err != nil {
		return fmt.Errorf("failed to marshal current question: %w", err)
	}

	query := `
		UPDATE matches
		SET status = $1, players = $2, current_question = $3, winner = $4,
		    participants = $5
		WHERE id = $6`

	result, err := r.ex(exec).ExecContext(ctx, query,
		match.Status,
		string(playersJSON),
		questionJSON,
		match.Winner,
		pq.Array(match.Participants),
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.ex(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanOne(row *sql.Row) (*models.Match, error) {
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		match         models.Match
		playersJSON   []byte
		questionJSON  []byte
		questionsJSON []byte
	)

	err := row.Scan(
		&match.ID,
		&match.Code,
		&match.MapID,
		&match.Status,
		&playersJSON,
		&questionJSON,
		&match.Winner,
		&match.PublicRank,
		&match.PublicCountry,
		&questionsJSON,
		pq.Array(&match.Participants),
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match row: %w", err)
	}

	if err := json.Unmarshal(playersJSON, &match.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players for match %d: %w", match.ID, err)
	}
	if len(questionJSON) > 0 {
		match.CurrentQuestion = &models.CurrentQuestion{}
		if err := json.Unmarshal(questionJSON, match.CurrentQuestion); err != nil {
			return nil, fmt.Errorf("failed to unmarshal current question for match %d: %w", match.ID, err)
		}
	}
	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &match.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom questions for match %d: %w", match.ID, err)
		}
	}
	return &match, nil
}

// marshalCurrentQuestion keeps a NULL column for a cleared question instead
// of the JSON literal null. The text form matters: lib/pq hex-encodes raw
// byte slices, which a jsonb column rejects.
func marshalCurrentQuestion(q *models.CurrentQuestion) (*string, error) {
	if q == nil {
		return nil, nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
