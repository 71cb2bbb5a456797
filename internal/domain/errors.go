package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz is not in the catalogue.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when no attempt context exists for an id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptSubmitted is returned when acting on an attempt that already ended.
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	// ErrAttemptInProgress is returned when a result is requested before submission.
	ErrAttemptInProgress = errors.New("attempt still in progress")
	// ErrQuestionNotFound indicates a question index outside the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option index outside the question.
	ErrOptionNotFound = errors.New("option not found")
)

// ValidationError collects field level problems of a quiz draft.
// Keys follow the authoring form: "title", "q0_options", "q1_option2", "general".
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid quiz: " + strings.Join(parts, "; ")
}

// ErrMalformedData marks persisted quiz data that could not be decoded.
// The repository treats it as an empty catalogue instead of failing.
var ErrMalformedData = errors.New("malformed quiz data")
