package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/velmir/quizduel-server/models"
)

var ErrQuestionSetNotFound = errors.New("question set not found")

type QuestionSetRepository interface {
	Create(ctx context.Context, exec SQLExecutor, set *models.QuestionSet) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.QuestionSet, error)
	ListPublic(ctx context.Context, exec SQLExecutor, limit int) ([]*models.QuestionSet, error)
	SearchPublic(ctx context.Context, exec SQLExecutor, query string, limit int) ([]*models.QuestionSet, error)
}

type postgresQuestionSetRepository struct {
	db *sql.DB
}

func NewPostgresQuestionSetRepository(db *sql.DB) QuestionSetRepository {
	return &postgresQuestionSetRepository{db: db}
}

func (r *postgresQuestionSetRepository) ex(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const questionSetColumns = `id, title, author, language, description, questions, is_public, creator_id, created_at`

func (r *postgresQuestionSetRepository) Create(ctx context.Context, exec SQLExecutor, set *models.QuestionSet) error {
	questionsJSON, err := json.Marshal(set.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO question_sets (title, author, language, description, questions, is_public, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = r.ex(exec).QueryRowContext(ctx, query,
		set.Title,
		set.Author,
		set.Language,
		set.Description,
		string(questionsJSON),
		set.IsPublic,
		set.CreatorID,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert question set: %w", err)
	}
	return nil
}

func (r *postgresQuestionSetRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.QuestionSet, error) {
	query := `SELECT ` + questionSetColumns + ` FROM question_sets WHERE id = $1`
	row := r.ex(exec).QueryRowContext(ctx, query, id)

	set, err := scanQuestionSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionSetNotFound
		}
		return nil, err
	}
	return set, nil
}

func (r *postgresQuestionSetRepository) ListPublic(ctx context.Context, exec SQLExecutor, limit int) ([]*models.QuestionSet, error) {
	query := `SELECT ` + questionSetColumns + ` FROM question_sets
		WHERE is_public = true ORDER BY created_at DESC LIMIT $1`
	return r.list(ctx, exec, query, limit)
}

func (r *postgresQuestionSetRepository) SearchPublic(ctx context.Context, exec SQLExecutor, search string, limit int) ([]*models.QuestionSet, error) {
	query := `SELECT ` + questionSetColumns + ` FROM question_sets
		WHERE is_public = true AND (title ILIKE $1 OR author ILIKE $1)
		ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, exec, query, "%"+search+"%", limit)
}

func (r *postgresQuestionSetRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.QuestionSet, error) {
	rows, err := r.ex(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query question sets: %w", err)
	}
	defer rows.Close()

	sets := make([]*models.QuestionSet, 0)
	for rows.Next() {
		set, scanErr := scanQuestionSet(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during question set rows iteration: %w", err)
	}
	return sets, nil
}

func scanQuestionSet(row rowScanner) (*models.QuestionSet, error) {
	var (
		set           models.QuestionSet
		questionsJSON []byte
	)
	err := row.Scan(
		&set.ID,
		&set.Title,
		&set.Author,
		&set.Language,
		&set.Description,
		&questionsJSON,
		&set.IsPublic,
		&set.CreatorID,
		&set.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan question set row: %w", err)
	}
	if err := json.Unmarshal(questionsJSON, &set.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions for set %d: %w", set.ID, err)
	}
	return &set, nil
}
