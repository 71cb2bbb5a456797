package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
	"quiz-attempt-service/internal/domain"
)

// QuizStore persists the ordered quiz collection (memory, Redis, Postgres, SQLite).
type QuizStore interface {
	Load(ctx context.Context) ([]domain.Quiz, error)
	Save(ctx context.Context, quizzes []domain.Quiz) error
}

// Repository is the process-wide quiz collection. It is loaded explicitly at
// startup and written back after every mutation.
type Repository struct {
	store QuizStore
	sf    singleflight.Group

	// writeMu serializes mutate-and-save so snapshots reach the store in order.
	writeMu sync.Mutex
	mu      sync.RWMutex
	quizzes []domain.Quiz
}

func NewRepository(store QuizStore) *Repository {
	return &Repository{store: store}
}

// Load replaces the in-memory collection with the persisted one. Undecodable
// data leaves an empty collection; other store failures are returned.
func (r *Repository) Load(ctx context.Context) error {
	_, err, _ := r.sf.Do("load", func() (interface{}, error) {
		quizzes, err := r.store.Load(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrMalformedData) {
				return nil, err
			}
			log.Printf("failed to parse quizzes, starting empty: %v", err)
			quizzes = nil
		}

		r.mu.Lock()
		r.quizzes = append([]domain.Quiz(nil), quizzes...)
		r.mu.Unlock()
		return nil, nil
	})
	return err
}

// Save writes the current collection to the store.
func (r *Repository) Save(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.store.Save(ctx, r.All())
}

// All returns a copy of the collection in insertion order.
func (r *Repository) All() []domain.Quiz {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Quiz(nil), r.quizzes...)
}

// Get finds a quiz by id.
func (r *Repository) Get(id string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, q := range r.quizzes {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Quiz{}, false
}

// Add appends a quiz and persists. The append is rolled back if saving fails.
func (r *Repository) Add(ctx context.Context, quiz domain.Quiz) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	prev := r.quizzes
	r.quizzes = append(append([]domain.Quiz(nil), prev...), quiz)
	snapshot := append([]domain.Quiz(nil), r.quizzes...)
	r.mu.Unlock()

	if err := r.store.Save(ctx, snapshot); err != nil {
		r.mu.Lock()
		r.quizzes = prev
		r.mu.Unlock()
		return err
	}
	return nil
}

// Remove deletes a quiz by id and persists. It reports whether anything was removed.
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	prev := r.quizzes
	next := make([]domain.Quiz, 0, len(prev))
	for _, q := range prev {
		if q.ID != id {
			next = append(next, q)
		}
	}
	if len(next) == len(prev) {
		r.mu.Unlock()
		return false, nil
	}
	r.quizzes = next
	snapshot := append([]domain.Quiz(nil), next...)
	r.mu.Unlock()

	if err := r.store.Save(ctx, snapshot); err != nil {
		r.mu.Lock()
		r.quizzes = prev
		r.mu.Unlock()
		return false, err
	}
	return true, nil
}
