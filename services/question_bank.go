package services

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/velmir/quizduel-server/models"
)

// QuestionBank is the shared pool of trivia items, built once at startup and
// injected into the services that draw questions. A match carrying its own
// question list overrides the bank for that match only.
type QuestionBank struct {
	questions []models.Question
}

func NewQuestionBank(questions []models.Question) (*QuestionBank, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank must contain at least one question")
	}
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}
	return &QuestionBank{questions: questions}, nil
}

// LoadQuestionBank builds the bank from a JSON file, or from the built-in
// list when path is empty.
func LoadQuestionBank(path string) (*QuestionBank, error) {
	if path == "" {
		return NewQuestionBank(defaultQuestions())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank file %s: %w", path, err)
	}
	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse question bank file %s: %w", path, err)
	}
	return NewQuestionBank(questions)
}

func (b *QuestionBank) Questions() []models.Question {
	return b.questions
}

// validateQuestionList rejects any malformed entry. An empty list is valid;
// callers treat it as "use the shared bank" or reject it themselves.
func validateQuestionList(questions []models.Question) error {
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrQuestionListInvalid, i, err)
		}
	}
	return nil
}

func validateQuestion(q models.Question) error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question needs at least two options")
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("correct index %d out of range", q.Correct)
	}
	return nil
}

// drawQuestion picks uniformly from source, avoiding the question just
// answered when source has an alternative. Falls back to the full pool when
// the exclusion would leave nothing to pick.
func drawQuestion(source []models.Question, excludeText string) models.Question {
	if excludeText != "" && len(source) > 1 {
		candidates := make([]models.Question, 0, len(source))
		for _, q := range source {
			if q.Text != excludeText {
				candidates = append(candidates, q)
			}
		}
		if len(candidates) > 0 {
			return candidates[rand.Intn(len(candidates))]
		}
	}
	return source[rand.Intn(len(source))]
}

func defaultQuestions() []models.Question {
	return []models.Question{
		{Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, Correct: 1},
		{Text: "Capital of France?", Options: []string{"London", "Berlin", "Paris", "Rome"}, Correct: 2},
		{Text: "Fastest animal?", Options: []string{"Cheetah", "Lion", "Eagle", "Falcon"}, Correct: 3},
		{Text: "Which language is this?", Options: []string{"Java", "Python", "TypeScript", "C++"}, Correct: 2},
		{Text: "Color of the sky?", Options: []string{"Blue", "Green", "Red", "Yellow"}, Correct: 0},
		{Text: "Capital of Japan?", Options: []string{"Seoul", "Beijing", "Tokyo", "Bangkok"}, Correct: 2},
		{Text: "H2O is?", Options: []string{"Gold", "Silver", "Water", "Air"}, Correct: 2},
	}
}
