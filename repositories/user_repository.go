package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/velmir/quizduel-server/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("username already taken")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error)
	GetByUsernameForUpdate(ctx context.Context, exec SQLExecutor, username string) (*models.User, error)
	UpdateCountry(ctx context.Context, exec SQLExecutor, id int, country string) error
	UpdateStats(ctx context.Context, exec SQLExecutor, id int, rank, wins, gamesPlayed int) error
	ListTopByRank(ctx context.Context, exec SQLExecutor, limit int) ([]*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) ex(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `id, username, pin_hash, country, rank, wins, games_played, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		INSERT INTO users (username, pin_hash, country, rank, wins, games_played)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.ex(exec).QueryRowContext(ctx, query,
		user.Username,
		user.PinHash,
		user.Country,
		user.Rank,
		user.Wins,
		user.GamesPlayed,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_username_key" {
				return ErrUserUsernameConflict
			}
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.ex(exec).QueryRowContext(ctx, query, username))
}

func (r *postgresUserRepository) GetByUsernameForUpdate(ctx context.Context, exec SQLExecutor, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 FOR UPDATE`
	return r.scanOne(r.ex(exec).QueryRowContext(ctx, query, username))
}

func (r *postgresUserRepository) UpdateCountry(ctx context.Context, exec SQLExecutor, id int, country string) error {
	query := `UPDATE users SET country = $1 WHERE id = $2`
	result, err := r.ex(exec).ExecContext(ctx, query, country, id)
	if err != nil {
		return fmt.Errorf("failed to update country for user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateStats(ctx context.Context, exec SQLExecutor, id int, rank, wins, gamesPlayed int) error {
	query := `UPDATE users SET rank = $1, wins = $2, games_played = $3 WHERE id = $4`
	result, err := r.ex(exec).ExecContext(ctx, query, rank, wins, gamesPlayed, id)
	if err != nil {
		return fmt.Errorf("failed to update stats for user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListTopByRank(ctx context.Context, exec SQLExecutor, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY rank DESC, id ASC LIMIT $1`
	rows, err := r.ex(exec).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var user models.User
		if scanErr := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PinHash,
			&user.Country,
			&user.Rank,
			&user.Wins,
			&user.GamesPlayed,
			&user.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", scanErr)
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during user rows iteration: %w", err)
	}
	return users, nil
}

func (r *postgresUserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PinHash,
		&user.Country,
		&user.Rank,
		&user.Wins,
		&user.GamesPlayed,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
