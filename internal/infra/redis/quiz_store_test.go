package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

func TestQuizStoreRoundTripPreservesOrder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewQuizStore(newClient(mr), "")
	ctx := context.Background()

	loaded, err := store.Load(ctx)
	if err != nil || len(loaded) != 0 {
		t.Fatalf("expected empty collection on missing key, got %v %v", loaded, err)
	}

	second := sampleQuiz()
	second.ID = "quiz-2"
	second.Questions[0].Type = domain.MultipleChoice
	if err := store.Save(ctx, []domain.Quiz{sampleQuiz(), second}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists(DefaultQuizKey) {
		t.Fatalf("expected %s to be set", DefaultQuizKey)
	}

	loaded, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "quiz-1" || loaded[1].ID != "quiz-2" {
		t.Fatalf("unexpected order %+v", loaded)
	}
	opts := loaded[1].Questions[0].Options
	if loaded[1].Questions[0].Type != domain.MultipleChoice || opts[0].IsCorrect || !opts[1].IsCorrect {
		t.Fatalf("answer key not preserved: %+v", loaded[1].Questions[0])
	}
	if !loaded[0].CreatedAt.Equal(sampleQuiz().CreatedAt) {
		t.Fatalf("createdAt not preserved: %v", loaded[0].CreatedAt)
	}
}

func TestQuizStoreMalformedData(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set(DefaultQuizKey, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := NewQuizStore(newClient(mr), "")
	if _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrMalformedData) {
		t.Fatalf("expected malformed data error, got %v", err)
	}

	repo := app.NewRepository(store)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("repository must fall back to empty: %v", err)
	}
	if len(repo.All()) != 0 {
		t.Fatalf("expected empty collection")
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		Title:       "Arithmetic",
		Description: "Small sums",
		TimeLimit:   2,
		CreatedAt:   time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
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

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
