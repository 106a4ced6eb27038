package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/services"
)

type MatchHandler struct {
	matchService       services.MatchService
	matchmakingService services.MatchmakingService
}

func NewMatchHandler(matchService services.MatchService, matchmakingService services.MatchmakingService) *MatchHandler {
	return &MatchHandler{
		matchService:       matchService,
		matchmakingService: matchmakingService,
	}
}

type createMatchRequest struct {
	PlayerName  string            `json:"player_name"`
	PlayerID    string            `json:"player_id"`
	CharacterID string            `json:"character_id"`
	MapID       *string           `json:"map_id,omitempty"`
	Questions   []models.Question `json:"questions,omitempty"`
}

func (h *MatchHandler) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.Create(r.Context(), services.CreateMatchInput{
		PlayerName:  req.PlayerName,
		PlayerID:    req.PlayerID,
		CharacterID: req.CharacterID,
		MapID:       req.MapID,
		Questions:   req.Questions,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type joinMatchRequest struct {
	Code        string `json:"code"`
	PlayerName  string `json:"player_name"`
	PlayerID    string `json:"player_id"`
	CharacterID string `json:"character_id"`
}

func (h *MatchHandler) JoinMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req joinMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchID, err := h.matchService.Join(r.Context(), req.Code, req.PlayerName, req.PlayerID, req.CharacterID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_id": matchID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type quickMatchRequest struct {
	PlayerName  string  `json:"player_name"`
	PlayerID    string  `json:"player_id"`
	CharacterID string  `json:"character_id"`
	MapID       *string `json:"map_id,omitempty"`
}

func (h *MatchHandler) QuickMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req quickMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchmakingService.QuickMatch(r.Context(), services.CreateMatchInput{
		PlayerName:  req.PlayerName,
		PlayerID:    req.PlayerID,
		CharacterID: req.CharacterID,
		MapID:       req.MapID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Get(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	match, err := h.matchService.GetByCode(r.Context(), code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) StartMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Start(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type submitAnswerRequest struct {
	PlayerID    string `json:"player_id"`
	AnswerIndex int    `json:"answer_index"`
}

func (h *MatchHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req submitAnswerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.SubmitAnswer(r.Context(), matchID, req.PlayerID, req.AnswerIndex)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) MatchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	playerName := chi.URLParam(r, "playerName")

	matches, err := h.matchService.History(r.Context(), playerName, 20)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
