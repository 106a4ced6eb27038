package handlers

import (
	"net/http"

	"github.com/velmir/quizduel-server/services"
)

type QuestionSetHandler struct {
	setService services.QuestionSetService
}

func NewQuestionSetHandler(setService services.QuestionSetService) *QuestionSetHandler {
	return &QuestionSetHandler{setService: setService}
}

func (h *QuestionSetHandler) CreateQuestionSetHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateQuestionSetInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	set, err := h.setService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"question_set": set}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *QuestionSetHandler) GetQuestionSetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "setID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	set, err := h.setService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"question_set": set}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListQuestionSetsHandler serves both the plain listing and the search,
// depending on whether the q parameter is present.
func (h *QuestionSetHandler) ListQuestionSetsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	sets, err := h.setService.Search(r.Context(), query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"question_sets": sets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
