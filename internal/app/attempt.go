package app

import (
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/timer"
)

// Attempt is one learner's live run through a quiz. It owns the countdown,
// the recorded answers and, once finished, the submission context.
type Attempt struct {
	id     string
	quiz   domain.Quiz
	engine *timer.Engine
	now    func() time.Time

	mu          sync.RWMutex
	answers     domain.AttemptAnswers
	submission  *domain.Submission
	abandoned   bool
	subscribers map[chan domain.AttemptEvent]struct{}
}

func newAttempt(id string, quiz domain.Quiz, engine *timer.Engine, now func() time.Time) *Attempt {
	return &Attempt{
		id:          id,
		quiz:        quiz,
		engine:      engine,
		now:         now,
		answers:     make(domain.AttemptAnswers),
		subscribers: make(map[chan domain.AttemptEvent]struct{}),
	}
}

// ID returns the attempt id.
func (a *Attempt) ID() string { return a.id }

// Quiz returns the quiz being attempted.
func (a *Attempt) Quiz() domain.Quiz { return a.quiz }

// Clock returns the countdown state.
func (a *Attempt) Clock() domain.ClockState {
	remaining := a.engine.Remaining()
	return domain.ClockState{RemainingSeconds: remaining, Formatted: timer.FormatTime(remaining)}
}

// Answers returns a copy of the recorded answers.
func (a *Attempt) Answers() domain.AttemptAnswers {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.answers.Clone()
}

// Submission returns the submission context once the attempt has ended.
func (a *Attempt) Submission() (domain.Submission, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.submission == nil {
		return domain.Submission{}, false
	}
	return *a.submission, true
}

// IsSubmitted reports whether the attempt has ended.
func (a *Attempt) IsSubmitted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.submission != nil
}

// answer records a click on an option: single choice replaces the selection,
// multiple choice toggles the option.
func (a *Attempt) answer(questionIndex, optionIndex int) (domain.AttemptAnswers, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.abandoned {
		return nil, domain.ErrAttemptNotFound
	}
	if a.submission != nil {
		return nil, domain.ErrAttemptSubmitted
	}
	if questionIndex < 0 || questionIndex >= len(a.quiz.Questions) {
		return nil, domain.ErrQuestionNotFound
	}
	question := a.quiz.Questions[questionIndex]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return nil, domain.ErrOptionNotFound
	}

	if question.Type != domain.MultipleChoice {
		a.answers[questionIndex] = []int{optionIndex}
		return a.answers.Clone(), nil
	}

	current := a.answers[questionIndex]
	next := make([]int, 0, len(current)+1)
	removed := false
	for _, idx := range current {
		if idx == optionIndex {
			removed = true
			continue
		}
		next = append(next, idx)
	}
	if !removed {
		next = append(next, optionIndex)
	}
	a.answers[questionIndex] = next
	return a.answers.Clone(), nil
}

// submit ends the attempt exactly once and tears the countdown down.
func (a *Attempt) submit(auto bool) (domain.Submission, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.abandoned {
		return domain.Submission{}, domain.ErrAttemptNotFound
	}
	if a.submission != nil {
		return domain.Submission{}, domain.ErrAttemptSubmitted
	}

	timeLeft := 0
	if !auto {
		timeLeft = a.engine.Remaining()
	}
	a.engine.Stop()

	a.submission = &domain.Submission{
		AttemptID:     a.id,
		Quiz:          a.quiz,
		Answers:       a.answers.Clone(),
		TimeLeft:      timeLeft,
		TotalTime:     a.quiz.TotalSeconds(),
		AutoSubmitted: auto,
		SubmittedAt:   a.now(),
	}
	a.broadcastLocked(domain.AttemptEvent{
		Type:          domain.EventSubmitted,
		Clock:         domain.ClockState{RemainingSeconds: timeLeft, Formatted: timer.FormatTime(timeLeft)},
		AutoSubmitted: auto,
	})
	return *a.submission, nil
}

// abandon stops the countdown of an unfinished attempt. An expiry already in
// flight finds the attempt abandoned and does not submit it.
func (a *Attempt) abandon() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submission != nil || a.abandoned {
		return false
	}
	a.abandoned = true
	a.engine.Stop()
	return true
}

func (a *Attempt) onTick(remaining int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.submission != nil || a.abandoned {
		return
	}
	a.broadcastLocked(domain.AttemptEvent{
		Type:  domain.EventTick,
		Clock: domain.ClockState{RemainingSeconds: remaining, Formatted: timer.FormatTime(remaining)},
	})
}

func (a *Attempt) subscribe() (<-chan domain.AttemptEvent, func()) {
	ch := make(chan domain.AttemptEvent, 8)

	a.mu.Lock()
	a.subscribers[ch] = struct{}{}
	initial := domain.AttemptEvent{Type: domain.EventTick, Clock: a.Clock()}
	if a.submission != nil {
		initial = domain.AttemptEvent{
			Type:          domain.EventSubmitted,
			Clock:         domain.ClockState{RemainingSeconds: a.submission.TimeLeft, Formatted: timer.FormatTime(a.submission.TimeLeft)},
			AutoSubmitted: a.submission.AutoSubmitted,
		}
	}
	ch <- initial
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Attempt) broadcastLocked(ev domain.AttemptEvent) {
	for ch := range a.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event so the broadcast never blocks.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}
