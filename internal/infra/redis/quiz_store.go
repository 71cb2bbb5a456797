package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"quiz-attempt-service/internal/domain"
)

// DefaultQuizKey is where the collection lives when no key is configured.
const DefaultQuizKey = "quiz-app-data"

// QuizStore keeps the whole quiz collection as one JSON array under a single key.
//
//	SET quiz-app-data '[{"id":...,"questions":[...]}, ...]'
//
// The array order is the collection order.
type QuizStore struct {
	client *redis.Client
	key    string
}

func NewQuizStore(client *redis.Client, key string) *QuizStore {
	if key == "" {
		key = DefaultQuizKey
	}
	return &QuizStore{client: client, key: key}
}

func (s *QuizStore) Load(ctx context.Context) ([]domain.Quiz, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	var quizzes []domain.Quiz
	if err := json.Unmarshal(raw, &quizzes); err != nil {
		return nil, fmt.Errorf("unmarshal quizzes: %v: %w", err, domain.ErrMalformedData)
	}
	return quizzes, nil
}

func (s *QuizStore) Save(ctx context.Context, quizzes []domain.Quiz) error {
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	data, err := json.Marshal(quizzes)
	if err != nil {
		return fmt.Errorf("marshal quizzes: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save quizzes: %w", err)
	}
	return nil
}
