package domain

import (
	"math"
	"time"
)

// QuestionType tells how many options a learner may pick.
type QuestionType string

const (
	// SingleChoice questions have exactly one correct option.
	SingleChoice QuestionType = "single"
	// MultipleChoice questions are answered with any subset of options.
	MultipleChoice QuestionType = "multiple"
)

// Option is one possible answer. Its index within the question is its identity.
type Option struct {
	Text      string `json:"text" validate:"notblank"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models a single or multiple choice question.
type Question struct {
	QuestionText string       `json:"questionText" validate:"notblank"`
	Type         QuestionType `json:"type" validate:"oneof=single multiple"`
	Options      []Option     `json:"options" validate:"hascorrect,min=2,dive"`
}

// CorrectIndices returns the answer key of the question in option order.
func (q Question) CorrectIndices() []int {
	indices := make([]int, 0, len(q.Options))
	for i, opt := range q.Options {
		if opt.IsCorrect {
			indices = append(indices, i)
		}
	}
	return indices
}

// Quiz is an ordered collection of questions with a time limit in minutes.
// Quizzes are immutable once created.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description" validate:"notblank"`
	TimeLimit   int        `json:"timeLimit" validate:"min=1,max=1440"`
	Questions   []Question `json:"questions" validate:"min=1,dive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TotalSeconds is the full attempt duration.
func (q Quiz) TotalSeconds() int {
	if q.TimeLimit <= 0 {
		return 0
	}
	if q.TimeLimit > math.MaxInt/60 {
		return math.MaxInt / 60 * 60
	}
	return q.TimeLimit * 60
}

// AttemptAnswers maps a question index to the selected option indices.
// A missing key means the question was left unanswered.
type AttemptAnswers map[int][]int

// Clone returns a deep copy so callers can hand answers across goroutines.
func (a AttemptAnswers) Clone() AttemptAnswers {
	out := make(AttemptAnswers, len(a))
	for k, v := range a {
		out[k] = append([]int(nil), v...)
	}
	return out
}

// Tier is the qualitative band of a score.
type Tier string

const (
	TierTop Tier = "top"
	TierMid Tier = "mid"
	TierLow Tier = "low"
)

// QuestionVerdict is the scored outcome of one question.
type QuestionVerdict struct {
	Question       Question `json:"question"`
	Selected       []int    `json:"selected"`
	CorrectIndices []int    `json:"correctIndices"`
	IsCorrect      bool     `json:"isCorrect"`
}

// AttemptResult is derived from a quiz and a set of answers. It is never stored.
type AttemptResult struct {
	Score      int               `json:"score"`
	Total      int               `json:"total"`
	Percentage int               `json:"percentage"`
	Tier       Tier              `json:"tier"`
	Message    string            `json:"message"`
	Breakdown  []QuestionVerdict `json:"breakdown"`
}

// Submission is the attempt context handed to the result view.
type Submission struct {
	AttemptID     string         `json:"attemptId"`
	Quiz          Quiz           `json:"quiz"`
	Answers       AttemptAnswers `json:"answers"`
	TimeLeft      int            `json:"timeLeft"`
	TotalTime     int            `json:"totalTime"`
	AutoSubmitted bool           `json:"autoSubmitted"`
	SubmittedAt   time.Time      `json:"submittedAt"`
}

// ResultView is what a finished attempt renders as.
type ResultView struct {
	AttemptID     string        `json:"attemptId"`
	QuizID        string        `json:"quizId"`
	Title         string        `json:"title"`
	Result        AttemptResult `json:"result"`
	TimeTaken     int           `json:"timeTaken"`
	TimeTakenText string        `json:"timeTakenText"`
	Passed        bool          `json:"passed"`
	AutoSubmitted bool          `json:"autoSubmitted"`
}

// ClockState is the countdown as seen by a client.
type ClockState struct {
	RemainingSeconds int    `json:"remainingSeconds"`
	Formatted        string `json:"formatted"`
}

// AttemptEventType enumerates attempt stream events.
type AttemptEventType string

const (
	EventTick      AttemptEventType = "tick"
	EventSubmitted AttemptEventType = "submitted"
)

// AttemptEvent is pushed to attempt subscribers.
type AttemptEvent struct {
	Type          AttemptEventType `json:"type"`
	Clock         ClockState       `json:"clock"`
	AutoSubmitted bool             `json:"autoSubmitted,omitempty"`
}
