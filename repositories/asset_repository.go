package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/velmir/quizduel-server/models"
)

type PublicAssetRepository interface {
	Create(ctx context.Context, exec SQLExecutor, asset *models.PublicAsset) error
	ListRecent(ctx context.Context, exec SQLExecutor, limit int) ([]*models.PublicAsset, error)
}

type postgresPublicAssetRepository struct {
	db *sql.DB
}

func NewPostgresPublicAssetRepository(db *sql.DB) PublicAssetRepository {
	return &postgresPublicAssetRepository{db: db}
}

func (r *postgresPublicAssetRepository) ex(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPublicAssetRepository) Create(ctx context.Context, exec SQLExecutor, asset *models.PublicAsset) error {
	query := `
		INSERT INTO public_assets (storage_key, uploader_name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.ex(exec).QueryRowContext(ctx, query, asset.StorageKey, asset.UploaderName).
		Scan(&asset.ID, &asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert public asset: %w", err)
	}
	return nil
}

func (r *postgresPublicAssetRepository) ListRecent(ctx context.Context, exec SQLExecutor, limit int) ([]*models.PublicAsset, error) {
	query := `
		SELECT id, storage_key, uploader_name, created_at
		FROM public_assets
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.ex(exec).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query public assets: %w", err)
	}
	defer rows.Close()

	assets := make([]*models.PublicAsset, 0)
	for rows.Next() {
		var asset models.PublicAsset
		if scanErr := rows.Scan(&asset.ID, &asset.StorageKey, &asset.UploaderName, &asset.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan public asset row: %w", scanErr)
		}
		assets = append(assets, &asset)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during public asset rows iteration: %w", err)
	}
	return assets, nil
}
