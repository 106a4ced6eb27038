package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/repositories"
	"github.com/velmir/quizduel-server/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTxManager runs the function directly. The stubs below are plain maps,
// so there is nothing to commit or roll back.
type stubTxManager struct{}

func (stubTxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type stubMatchRepository struct {
	nextID  int
	matches map[int]*models.Match
}

func newStubMatchRepository() *stubMatchRepository {
	return &stubMatchRepository{matches: make(map[int]*models.Match)}
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	c.Players = append([]models.MatchPlayer(nil), m.Players...)
	c.Participants = append([]string(nil), m.Participants...)
	if m.CurrentQuestion != nil {
		q := *m.CurrentQuestion
		c.CurrentQuestion = &q
	}
	return &c
}

func (r *stubMatchRepository) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.nextID++
	match.ID = r.nextID
	r.matches[match.ID] = cloneMatch(match)
	return nil
}

func (r *stubMatchRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r *stubMatchRepository) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *stubMatchRepository) GetByCode(_ context.Context, _ repositories.SQLExecutor, code string) (*models.Match, error) {
	var latest *models.Match
	for _, m := range r.matches {
		if m.Code == code && (latest == nil || m.ID > latest.ID) {
			latest = m
		}
	}
	if latest == nil {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(latest), nil
}

func (r *stubMatchRepository) GetByCodeForUpdate(ctx context.Context, exec repositories.SQLExecutor, code string) (*models.Match, error) {
	return r.GetByCode(ctx, exec, code)
}

func (r *stubMatchRepository) CodeInUse(_ context.Context, _ repositories.SQLExecutor, code string) (bool, error) {
	for _, m := range r.matches {
		if m.Code == code && m.Status != models.MatchStatusFinished {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMatchRepository) listWhere(limit int, keep func(*models.Match) bool) []*models.Match {
	var out []*models.Match
	for _, m := range r.matches {
		if keep(m) {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *stubMatchRepository) ListWaiting(_ context.Context, _ repositories.SQLExecutor, limit int) ([]*models.Match, error) {
	return r.listWhere(limit, func(m *models.Match) bool {
		return m.Status == models.MatchStatusWaiting
	}), nil
}

func (r *stubMatchRepository) ListWaitingByCountry(_ context.Context, _ repositories.SQLExecutor, country string, limit int) ([]*models.Match, error) {
	return r.listWhere(limit, func(m *models.Match) bool {
		return m.Status == models.MatchStatusWaiting && m.PublicCountry != nil && *m.PublicCountry == country
	}), nil
}

func (r *stubMatchRepository) ListWaitingByRankRange(_ context.Context, _ repositories.SQLExecutor, minRank, maxRank, limit int) ([]*models.Match, error) {
	return r.listWhere(limit, func(m *models.Match) bool {
		return m.Status == models.MatchStatusWaiting && m.PublicRank != nil &&
			*m.PublicRank >= minRank && *m.PublicRank <= maxRank
	}), nil
}

func (r *stubMatchRepository) ListByParticipant(_ context.Context, _ repositories.SQLExecutor, name string, limit int) ([]*models.Match, error) {
	return r.listWhere(limit, func(m *models.Match) bool {
		for _, p := range m.Participants {
			if p == name {
				return true
			}
		}
		return false
	}), nil
}

func (r *stubMatchRepository) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = cloneMatch(match)
	return nil
}

type stubUserRepository struct {
	nextID int
	users  map[string]*models.User
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{users: make(map[string]*models.User)}
}

func (r *stubUserRepository) seed(user models.User) *models.User {
	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = &user
	return &user
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *stubUserRepository) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	if _, ok := r.users[user.Username]; ok {
		return repositories.ErrUserUsernameConflict
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = cloneUser(user)
	return nil
}

func (r *stubUserRepository) GetByUsername(_ context.Context, _ repositories.SQLExecutor, username string) (*models.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepository) GetByUsernameForUpdate(ctx context.Context, exec repositories.SQLExecutor, username string) (*models.User, error) {
	return r.GetByUsername(ctx, exec, username)
}

func (r *stubUserRepository) UpdateCountry(_ context.Context, _ repositories.SQLExecutor, id int, country string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Country = &country
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func (r *stubUserRepository) UpdateStats(_ context.Context, _ repositories.SQLExecutor, id int, rank, wins, gamesPlayed int) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Rank = rank
			u.Wins = wins
			u.GamesPlayed = gamesPlayed
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func (r *stubUserRepository) ListTopByRank(_ context.Context, _ repositories.SQLExecutor, limit int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubAssetRepository struct {
	nextID int
	assets []*models.PublicAsset
}

func (r *stubAssetRepository) Create(_ context.Context, _ repositories.SQLExecutor, asset *models.PublicAsset) error {
	r.nextID++
	asset.ID = r.nextID
	stored := *asset
	r.assets = append(r.assets, &stored)
	return nil
}

func (r *stubAssetRepository) ListRecent(_ context.Context, _ repositories.SQLExecutor, limit int) ([]*models.PublicAsset, error) {
	out := make([]*models.PublicAsset, 0, len(r.assets))
	for i := len(r.assets) - 1; i >= 0 && len(out) < limit; i-- {
		a := *r.assets[i]
		out = append(out, &a)
	}
	return out, nil
}

type stubUploader struct {
	objects map[string][]byte
}

func newStubUploader() *stubUploader {
	return &stubUploader{objects: make(map[string][]byte)}
}

func (u *stubUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *stubUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *stubUploader) Exists(_ context.Context, key string) (bool, error) {
	_, ok := u.objects[key]
	return ok, nil
}

func (u *stubUploader) GetPublicURL(key string) string {
	return fmt.Sprintf("https://assets.test/%s", key)
}
