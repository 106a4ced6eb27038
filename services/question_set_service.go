package services

import (
	"context"
	"errors"
	"strings"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/repositories"
)

const questionSetListLimit = 20

type CreateQuestionSetInput struct {
	Title       string            `json:"title"`
	Author      string            `json:"author"`
	Language    *string           `json:"language,omitempty"`
	Description *string           `json:"description,omitempty"`
	Questions   []models.Question `json:"questions"`
	IsPublic    bool              `json:"is_public"`
	CreatorID   *string           `json:"creator_id,omitempty"`
}

// QuestionSetService manages the public question library that matches can
// draw custom question lists from.
type QuestionSetService interface {
	Create(ctx context.Context, input CreateQuestionSetInput) (*models.QuestionSet, error)
	Get(ctx context.Context, id int) (*models.QuestionSet, error)
	List(ctx context.Context) ([]*models.QuestionSet, error)
	Search(ctx context.Context, query string) ([]*models.QuestionSet, error)
}

type questionSetService struct {
	setRepo repositories.QuestionSetRepository
}

func NewQuestionSetService(setRepo repositories.QuestionSetRepository) QuestionSetService {
	return &questionSetService{setRepo: setRepo}
}

func (s *questionSetService) Create(ctx context.Context, input CreateQuestionSetInput) (*models.QuestionSet, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrQuestionSetTitleEmpty
	}
	if len(input.Questions) == 0 {
		return nil, ErrQuestionListInvalid
	}
	if err := validateQuestionList(input.Questions); err != nil {
		return nil, err
	}

	set := &models.QuestionSet{
		Title:       strings.TrimSpace(input.Title),
		Author:      strings.TrimSpace(input.Author),
		Language:    input.Language,
		Description: input.Description,
		Questions:   input.Questions,
		IsPublic:    input.IsPublic,
		CreatorID:   input.CreatorID,
	}
	if err := s.setRepo.Create(ctx, nil, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *questionSetService) Get(ctx context.Context, id int) (*models.QuestionSet, error) {
	set, err := s.setRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrQuestionSetNotFound) {
			return nil, ErrQuestionSetNotFound
		}
		return nil, err
	}
	return set, nil
}

func (s *questionSetService) List(ctx context.Context) ([]*models.QuestionSet, error) {
	return s.setRepo.ListPublic(ctx, nil, questionSetListLimit)
}

func (s *questionSetService) Search(ctx context.Context, query string) ([]*models.QuestionSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}
	return s.setRepo.SearchPublic(ctx, nil, query, questionSetListLimit)
}
