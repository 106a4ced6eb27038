package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/services"
)

// stubMatchService returns canned results so the tests exercise routing,
// decoding and error translation without a database.
type stubMatchService struct {
	createResult *services.CreateMatchResult
	joinID       int
	outcome      services.AnswerOutcome
	match        *models.Match
	err          error
}

func (s *stubMatchService) Create(context.Context, services.CreateMatchInput) (*services.CreateMatchResult, error) {
	return s.createResult, s.err
}

func (s *stubMatchService) Join(context.Context, string, string, string, string) (int, error) {
	return s.joinID, s.err
}

func (s *stubMatchService) Start(context.Context, int) error {
	return s.err
}

func (s *stubMatchService) SubmitAnswer(context.Context, int, string, int) (services.AnswerOutcome, error) {
	return s.outcome, s.err
}

func (s *stubMatchService) Get(context.Context, int) (*models.Match, error) {
	return s.match, s.err
}

func (s *stubMatchService) GetByCode(context.Context, string) (*models.Match, error) {
	return s.match, s.err
}

func (s *stubMatchService) History(context.Context, string, int) ([]*models.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*models.Match{s.match}, nil
}

type stubMatchmakingService struct {
	result *services.QuickMatchResult
	err    error
}

func (s *stubMatchmakingService) QuickMatch(context.Context, services.CreateMatchInput) (*services.QuickMatchResult, error) {
	return s.result, s.err
}

func newMatchRouter(matchSvc services.MatchService, mmSvc services.MatchmakingService) *chi.Mux {
	h := NewMatchHandler(matchSvc, mmSvc)
	r := chi.NewRouter()
	r.Post("/matches", h.CreateMatchHandler)
	r.Post("/matches/join", h.JoinMatchHandler)
	r.Post("/matches/quick", h.QuickMatchHandler)
	r.Get("/matches/{matchID}", h.GetMatchHandler)
	r.Post("/matches/{matchID}/start", h.StartMatchHandler)
	r.Post("/matches/{matchID}/answer", h.SubmitAnswerHandler)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateMatchHandler(t *testing.T) {
	router := newMatchRouter(
		&stubMatchService{createResult: &services.CreateMatchResult{MatchID: 7, Code: "AB1CD"}},
		&stubMatchmakingService{},
	)

	rec := doJSON(t, router, http.MethodPost, "/matches", `{"player_name":"ash","player_id":"p1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var result services.CreateMatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.MatchID != 7 || result.Code != "AB1CD" {
		t.Errorf("result = %+v", result)
	}
}

func TestCreateMatchHandlerRejectsBadJSON(t *testing.T) {
	router := newMatchRouter(&stubMatchService{}, &stubMatchmakingService{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"player_name":`},
		{"empty body", ``},
		{"unknown field", `{"nickname":"ash"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/matches", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestJoinMatchHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"full", services.ErrMatchFull, http.StatusConflict},
		{"name taken", services.ErrPlayerNameTaken, http.StatusConflict},
		{"not joinable", services.ErrMatchNotJoinable, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newMatchRouter(&stubMatchService{err: tc.err}, &stubMatchmakingService{})
			rec := doJSON(t, router, http.MethodPost, "/matches/join",
				`{"code":"AB1CD","player_name":"ash","player_id":"p1"}`)
			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestQuickMatchHandler(t *testing.T) {
	router := newMatchRouter(&stubMatchService{}, &stubMatchmakingService{
		result: &services.QuickMatchResult{MatchID: 3, Code: "ZZ9ZZ", Status: services.QuickMatchJoined},
	})

	rec := doJSON(t, router, http.MethodPost, "/matches/quick", `{"player_name":"ash","player_id":"p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result services.QuickMatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != services.QuickMatchJoined || result.MatchID != 3 {
		t.Errorf("result = %+v", result)
	}
}

func TestStartMatchHandler(t *testing.T) {
	router := newMatchRouter(&stubMatchService{}, &stubMatchmakingService{})

	rec := doJSON(t, router, http.MethodPost, "/matches/5/start", ``)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	// Non-numeric id never reaches the service.
	rec = doJSON(t, router, http.MethodPost, "/matches/abc/start", ``)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitAnswerHandler(t *testing.T) {
	router := newMatchRouter(&stubMatchService{outcome: services.AnswerHit}, &stubMatchmakingService{})

	rec := doJSON(t, router, http.MethodPost, "/matches/5/answer", `{"player_id":"p1","answer_index":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["outcome"] != "HIT" {
		t.Errorf("outcome = %q, want HIT", body["outcome"])
	}
}

func TestGetMatchHandler(t *testing.T) {
	match := &models.Match{ID: 5, Code: "AB1CD", Status: models.MatchStatusWaiting}
	router := newMatchRouter(&stubMatchService{match: match}, &stubMatchmakingService{})

	rec := doJSON(t, router, http.MethodGet, "/matches/5", ``)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Match models.Match `json:"match"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Match.Code != "AB1CD" {
		t.Errorf("match = %+v", body.Match)
	}
}
