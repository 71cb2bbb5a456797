package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/scoring"
	"quiz-attempt-service/internal/timer"
)

// PassThreshold is the percentage at which an attempt counts as passed.
const PassThreshold = scoring.MidTierThreshold

// AttemptRepository abstracts where live attempts are kept (in-memory, Redis, etc).
type AttemptRepository interface {
	Put(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// QuizLookup resolves quizzes for new attempts.
type QuizLookup interface {
	Get(ctx context.Context, id string) (domain.Quiz, error)
}

// AttemptObserver is notified about attempt lifecycle events (metrics, event bus).
type AttemptObserver interface {
	AttemptStarted(quizID string)
	AttemptSubmitted(view domain.ResultView)
}

// AttemptService runs timed attempts and produces their results.
type AttemptService struct {
	quizzes   QuizLookup
	attempts  AttemptRepository
	clock     timer.Clock
	retention time.Duration
	observers []AttemptObserver
	newID     func() string
}

// AttemptOption configures an AttemptService.
type AttemptOption func(*AttemptService)

// WithClock drives countdowns from clock instead of the system clock.
func WithClock(clock timer.Clock) AttemptOption {
	return func(s *AttemptService) { s.clock = clock }
}

// WithRetention drops submitted attempts after d. Zero keeps them.
func WithRetention(d time.Duration) AttemptOption {
	return func(s *AttemptService) { s.retention = d }
}

// WithObservers registers lifecycle observers.
func WithObservers(observers ...AttemptObserver) AttemptOption {
	return func(s *AttemptService) { s.observers = append(s.observers, observers...) }
}

func NewAttemptService(quizzes QuizLookup, attempts AttemptRepository, opts ...AttemptOption) *AttemptService {
	s := &AttemptService{
		quizzes:  quizzes,
		attempts: attempts,
		clock:    timer.SystemClock,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAttempt is exported for infrastructure layers that need to seed attempts.
func NewAttempt(id string, quiz domain.Quiz) *Attempt {
	return newAttempt(id, quiz, timer.NewEngine(nil), time.Now)
}

// Start begins a timed attempt. An unknown quiz yields domain.ErrQuizNotFound.
func (s *AttemptService) Start(ctx context.Context, quizID string) (*Attempt, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}

	engine := timer.NewEngine(s.clock)
	attempt := newAttempt(s.newID(), quiz, engine, s.clock.Now)
	engine.SetOnTick(attempt.onTick)
	// The callback resolves the attempt state at fire time, so a manual
	// submission that landed first turns expiry into a no-op.
	engine.SetOnExpire(func() { s.expire(attempt) })

	s.attempts.Put(attempt)
	engine.SetDuration(quiz.TimeLimit)

	for _, o := range s.observers {
		o.AttemptStarted(quiz.ID)
	}
	log.Printf("attempt %s started for quiz %s (%d min)", attempt.ID(), quiz.ID, quiz.TimeLimit)
	return attempt, nil
}

// Answer records an option click and returns the updated answers.
func (s *AttemptService) Answer(_ context.Context, attemptID string, questionIndex, optionIndex int) (domain.AttemptAnswers, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt.answer(questionIndex, optionIndex)
}

// Submit ends an attempt on the learner's request and returns its result.
func (s *AttemptService) Submit(_ context.Context, attemptID string) (domain.ResultView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.ResultView{}, domain.ErrAttemptNotFound
	}
	sub, err := attempt.submit(false)
	if err != nil {
		return domain.ResultView{}, err
	}
	return s.finish(sub), nil
}

// Result recomputes the result view from the stored submission context.
func (s *AttemptService) Result(_ context.Context, attemptID string) (domain.ResultView, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return domain.ResultView{}, domain.ErrAttemptNotFound
	}
	sub, ok := attempt.Submission()
	if !ok {
		return domain.ResultView{}, domain.ErrAttemptInProgress
	}
	return BuildResultView(sub), nil
}

// Get returns a live or finished attempt.
func (s *AttemptService) Get(_ context.Context, attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Subscribe returns a channel of tick and submission events for an attempt.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AttemptService) Subscribe(_ context.Context, attemptID string) (<-chan domain.AttemptEvent, func(), error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, nil, domain.ErrAttemptNotFound
	}
	ch, cancel := attempt.subscribe()
	return ch, cancel, nil
}

// Abandon tears down an unfinished attempt. Finished attempts are kept so
// their result stays viewable.
func (s *AttemptService) Abandon(_ context.Context, attemptID string) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return
	}
	if attempt.abandon() {
		s.attempts.Delete(attemptID)
		log.Printf("attempt %s abandoned", attemptID)
	}
}

func (s *AttemptService) expire(attempt *Attempt) {
	sub, err := attempt.submit(true)
	if err != nil {
		return
	}
	log.Printf("attempt %s auto-submitted on timeout", attempt.ID())
	s.finish(sub)
}

func (s *AttemptService) finish(sub domain.Submission) domain.ResultView {
	view := BuildResultView(sub)
	if s.retention > 0 {
		id := sub.AttemptID
		s.clock.AfterFunc(s.retention, func() { s.attempts.Delete(id) })
	}
	for _, o := range s.observers {
		o.AttemptSubmitted(view)
	}
	return view
}

// BuildResultView scores a submission and derives the timing figures.
func BuildResultView(sub domain.Submission) domain.ResultView {
	result := scoring.Score(sub.Quiz, sub.Answers)
	taken := sub.TotalTime - sub.TimeLeft
	if taken < 0 {
		taken = 0
	}
	return domain.ResultView{
		AttemptID:     sub.AttemptID,
		QuizID:        sub.Quiz.ID,
		Title:         sub.Quiz.Title,
		Result:        result,
		TimeTaken:     taken,
		TimeTakenText: timer.FormatElapsed(taken),
		Passed:        result.Percentage >= PassThreshold,
		AutoSubmitted: sub.AutoSubmitted,
	}
}
