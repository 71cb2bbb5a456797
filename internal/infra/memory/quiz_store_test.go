package memory

import (
	"context"
	"testing"

	"quiz-attempt-service/internal/domain"
)

func TestQuizStoreRoundTrip(t *testing.T) {
	store := NewQuizStore(sampleQuiz())

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "quiz-1" {
		t.Fatalf("unexpected quizzes %+v", loaded)
	}

	second := sampleQuiz()
	second.ID = "quiz-2"
	if err := store.Save(context.Background(), append(loaded, second)); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _ = store.Load(context.Background())
	if len(loaded) != 2 || loaded[1].ID != "quiz-2" {
		t.Fatalf("expected order preserved, got %+v", loaded)
	}
	if store.Saves() != 1 {
		t.Fatalf("expected one save, got %d", store.Saves())
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		Title:       "Arithmetic",
		Description: "Small sums",
		TimeLimit:   1,
		Questions: []domain.Question{
			{
				QuestionText: "What is 2 + 2?",
				Type:         domain.SingleChoice,
				Options: []domain.Option{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
				},
			},
		},
	}
}
