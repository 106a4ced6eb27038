package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/repositories"
	"github.com/velmir/quizduel-server/storage"
)

const assetListLimit = 50

// Built-in characters ship with the client and need no asset resolution.
var builtinCharacters = map[string]bool{
	"volcoli":    true,
	"viviteel":   true,
	"vivitron":   true,
	"velocitile": true,
}

// AssetService stores uploaded character images and resolves character
// references into display-ready URLs.
type AssetService interface {
	CharacterResolver
	Upload(ctx context.Context, uploaderName, contentType string, reader io.Reader) (*models.PublicAsset, error)
	ListRecent(ctx context.Context) ([]*models.PublicAsset, error)
}

type assetService struct {
	assetRepo repositories.PublicAssetRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewAssetService(assetRepo repositories.PublicAssetRepository, uploader storage.FileUploader, logger *slog.Logger) AssetService {
	return &assetService{
		assetRepo: assetRepo,
		uploader:  uploader,
		logger:    logger,
	}
}

func (s *assetService) Upload(ctx context.Context, uploaderName, contentType string, reader io.Reader) (*models.PublicAsset, error) {
	if strings.TrimSpace(uploaderName) == "" || !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUploadInvalid
	}

	key := fmt.Sprintf("assets/%d-%s", time.Now().UnixNano(), randomString(8))
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store asset: %w", err)
	}

	asset := &models.PublicAsset{
		StorageKey:   result.Key,
		UploaderName: strings.TrimSpace(uploaderName),
	}
	if err := s.assetRepo.Create(ctx, nil, asset); err != nil {
		// Without a row the object is unreachable; remove it rather than
		// leave it orphaned in the bucket.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to remove orphaned asset object",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, err
	}
	asset.URL = result.Location
	return asset, nil
}

// ListRecent returns the newest uploads with public URLs. Existence checks
// run concurrently; rows whose backing object disappeared from the bucket
// are dropped from the listing.
func (s *assetService) ListRecent(ctx context.Context) ([]*models.PublicAsset, error) {
	assets, err := s.assetRepo.ListRecent(ctx, nil, assetListLimit)
	if err != nil {
		return nil, err
	}

	present := make([]bool, len(assets))
	g, gCtx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			exists, err := s.uploader.Exists(gCtx, asset.StorageKey)
			if err != nil {
				return fmt.Errorf("failed to check asset %s: %w", asset.StorageKey, err)
			}
			present[i] = exists
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visible := make([]*models.PublicAsset, 0, len(assets))
	for i, asset := range assets {
		if !present[i] {
			continue
		}
		asset.URL = s.uploader.GetPublicURL(asset.StorageKey)
		visible = append(visible, asset)
	}
	return visible, nil
}

// ResolveCharacter passes through anything a client can already render and
// resolves storage keys to their public URL.
func (s *assetService) ResolveCharacter(ref string) string {
	if ref == "" || builtinCharacters[ref] {
		return ref
	}
	if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return s.uploader.GetPublicURL(ref)
}
