package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/velmir/quizduel-server/models"
	"github.com/velmir/quizduel-server/repositories"
)

type stubQuestionSetRepository struct {
	nextID int
	sets   []*models.QuestionSet
}

func (r *stubQuestionSetRepository) Create(_ context.Context, _ repositories.SQLExecutor, set *models.QuestionSet) error {
	r.nextID++
	set.ID = r.nextID
	stored := *set
	r.sets = append(r.sets, &stored)
	return nil
}

func (r *stubQuestionSetRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.QuestionSet, error) {
	for _, s := range r.sets {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, repositories.ErrQuestionSetNotFound
}

func (r *stubQuestionSetRepository) ListPublic(_ context.Context, _ repositories.SQLExecutor, limit int) ([]*models.QuestionSet, error) {
	var out []*models.QuestionSet
	for _, s := range r.sets {
		if s.IsPublic && len(out) < limit {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubQuestionSetRepository) SearchPublic(_ context.Context, _ repositories.SQLExecutor, query string, limit int) ([]*models.QuestionSet, error) {
	q := strings.ToLower(query)
	var out []*models.QuestionSet
	for _, s := range r.sets {
		if !s.IsPublic || len(out) >= limit {
			continue
		}
		if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Author), q) {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func validSetInput() CreateQuestionSetInput {
	return CreateQuestionSetInput{
		Title:    "Geography Basics",
		Author:   "ash",
		IsPublic: true,
		Questions: []models.Question{
			{Text: "Capital of France?", Options: []string{"Paris", "Rome"}, Correct: 0},
		},
	}
}

func TestCreateQuestionSet(t *testing.T) {
	repo := &stubQuestionSetRepository{}
	svc := NewQuestionSetService(repo)

	set, err := svc.Create(context.Background(), validSetInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if set.ID == 0 {
		t.Error("set not assigned an id")
	}
	if set.Title != "Geography Basics" {
		t.Errorf("title = %q", set.Title)
	}
}

func TestCreateQuestionSetValidation(t *testing.T) {
	svc := NewQuestionSetService(&stubQuestionSetRepository{})
	ctx := context.Background()

	blank := validSetInput()
	blank.Title = "  "
	if _, err := svc.Create(ctx, blank); !errors.Is(err, ErrQuestionSetTitleEmpty) {
		t.Errorf("blank title: got %v, want ErrQuestionSetTitleEmpty", err)
	}

	empty := validSetInput()
	empty.Questions = nil
	if _, err := svc.Create(ctx, empty); !errors.Is(err, ErrQuestionListInvalid) {
		t.Errorf("no questions: got %v, want ErrQuestionListInvalid", err)
	}

	malformed := validSetInput()
	malformed.Questions = []models.Question{{Text: "q", Options: []string{"only"}, Correct: 0}}
	if _, err := svc.Create(ctx, malformed); !errors.Is(err, ErrQuestionListInvalid) {
		t.Errorf("malformed question: got %v, want ErrQuestionListInvalid", err)
	}
}

func TestGetQuestionSetNotFound(t *testing.T) {
	svc := NewQuestionSetService(&stubQuestionSetRepository{})

	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, ErrQuestionSetNotFound) {
		t.Fatalf("expected ErrQuestionSetNotFound, got %v", err)
	}
}

func TestSearchQuestionSets(t *testing.T) {
	repo := &stubQuestionSetRepository{}
	svc := NewQuestionSetService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSetInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := validSetInput()
	other.Title = "Movie Trivia"
	if _, err := svc.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	results, err := svc.Search(ctx, "geography")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Geography Basics" {
		t.Errorf("search results = %+v", results)
	}

	// Blank query behaves like a plain listing.
	all, err := svc.Search(ctx, "   ")
	if err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("blank search returned %d sets, want 2", len(all))
	}
}
