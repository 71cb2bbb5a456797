package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"quiz-attempt-service/internal/domain"
)

// Sort orders accepted by List.
const (
	SortByDate = "date"
	SortByName = "name"
)

// ListOptions filters and orders the catalogue.
type ListOptions struct {
	Search string
	SortBy string
}

// QuizService contains the authoring and catalogue use cases.
type QuizService struct {
	repo  *Repository
	newID func() string
	now   func() time.Time
}

func NewQuizService(repo *Repository) *QuizService {
	return &QuizService{repo: repo, newID: uuid.NewString, now: time.Now}
}

// NewQuizServiceWithClock is test-only for deterministic ids and timestamps.
func NewQuizServiceWithClock(repo *Repository, newID func() string, now func() time.Time) *QuizService {
	return &QuizService{repo: repo, newID: newID, now: now}
}

// Create validates a draft, stamps it with an id and creation time, and stores it.
func (s *QuizService) Create(ctx context.Context, draft domain.Quiz) (domain.Quiz, error) {
	if err := domain.ValidateQuiz(draft); err != nil {
		return domain.Quiz{}, err
	}

	quiz := draft
	quiz.ID = s.newID()
	quiz.CreatedAt = s.now().UTC()
	quiz.Questions = cloneQuestions(draft.Questions)

	if err := s.repo.Add(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Get returns a quiz or domain.ErrQuizNotFound.
func (s *QuizService) Get(_ context.Context, id string) (domain.Quiz, error) {
	quiz, ok := s.repo.Get(id)
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// List returns quizzes whose title or description contains the search term,
// newest first unless sorting by name.
func (s *QuizService) List(_ context.Context, opts ListOptions) []domain.Quiz {
	term := strings.ToLower(opts.Search)
	all := s.repo.All()

	result := make([]domain.Quiz, 0, len(all))
	for _, q := range all {
		if term == "" ||
			strings.Contains(strings.ToLower(q.Title), term) ||
			strings.Contains(strings.ToLower(q.Description), term) {
			result = append(result, q)
		}
	}

	if opts.SortBy == SortByName {
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(result, func(i, j int) bool {
			return col.CompareString(result[i].Title, result[j].Title) < 0
		})
		return result
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// Delete removes a quiz. Unknown ids are ignored.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	_, err := s.repo.Remove(ctx, id)
	return err
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		out[i] = q
		out[i].Options = append([]domain.Option(nil), q.Options...)
	}
	return out
}
