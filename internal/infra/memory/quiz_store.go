package memory

import (
	"context"
	"sync"

	"quiz-attempt-service/internal/domain"
)

// QuizStore keeps the quiz collection in process memory (useful for tests/demos).
type QuizStore struct {
	mu      sync.RWMutex
	quizzes []domain.Quiz
	saves   int
}

// NewQuizStore returns a store seeded with quizzes.
func NewQuizStore(quizzes ...domain.Quiz) *QuizStore {
	return &QuizStore{quizzes: append([]domain.Quiz(nil), quizzes...)}
}

func (s *QuizStore) Load(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Quiz(nil), s.quizzes...), nil
}

func (s *QuizStore) Save(_ context.Context, quizzes []domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append([]domain.Quiz(nil), quizzes...)
	s.saves++
	return nil
}

// Saves reports how many times the collection was written.
func (s *QuizStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
