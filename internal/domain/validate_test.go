package domain

import (
	"errors"
	"math"
	"testing"
)

func validQuiz() Quiz {
	return Quiz{
		Title:       "Go basics",
		Description: "Warm-up questions",
		TimeLimit:   5,
		Questions: []Question{
			{
				QuestionText: "Which keyword starts a goroutine?",
				Type:         SingleChoice,
				Options: []Option{
					{Text: "go", IsCorrect: true},
					{Text: "async"},
				},
			},
		},
	}
}

func TestValidateQuizAcceptsValidDraft(t *testing.T) {
	if err := ValidateQuiz(validQuiz()); err != nil {
		t.Fatalf("expected valid quiz, got %v", err)
	}
}

func TestValidateQuizReportsFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Quiz)
		key    string
	}{
		{"blank title", func(q *Quiz) { q.Title = "   " }, "title"},
		{"blank description", func(q *Quiz) { q.Description = "" }, "description"},
		{"zero time limit", func(q *Quiz) { q.TimeLimit = 0 }, "timeLimit"},
		{"day-long time limit exceeded", func(q *Quiz) { q.TimeLimit = 1441 }, "timeLimit"},
		{"overflowing time limit", func(q *Quiz) { q.TimeLimit = math.MaxInt / 30 }, "timeLimit"},
		{"no questions", func(q *Quiz) { q.Questions = nil }, "general"},
		{"blank question", func(q *Quiz) { q.Questions[0].QuestionText = "" }, "q0_questionText"},
		{"unknown type", func(q *Quiz) { q.Questions[0].Type = "essay" }, "q0_type"},
		{"one option", func(q *Quiz) { q.Questions[0].Options = q.Questions[0].Options[:1] }, "q0_options"},
		{"no correct option", func(q *Quiz) { q.Questions[0].Options[0].IsCorrect = false }, "q0_options"},
		{"blank option", func(q *Quiz) { q.Questions[0].Options[1].Text = " " }, "q0_option1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := validQuiz()
			tt.mutate(&quiz)
			err := ValidateQuiz(quiz)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tt.key]; !ok {
				t.Fatalf("expected %q in %v", tt.key, verr.Fields)
			}
		})
	}
}

func TestValidateQuizMissingCorrectMessage(t *testing.T) {
	quiz := validQuiz()
	quiz.Questions[0].Options[0].IsCorrect = false
	var verr *ValidationError
	if !errors.As(ValidateQuiz(quiz), &verr) {
		t.Fatalf("expected validation error")
	}
	if got := verr.Fields["q0_options"]; got != "Select at least one correct option" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCorrectIndices(t *testing.T) {
	q := Question{Options: []Option{{IsCorrect: true}, {}, {IsCorrect: true}}}
	got := q.CorrectIndices()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("unexpected key %v", got)
	}
}

func TestTotalSecondsDoesNotOverflow(t *testing.T) {
	quiz := Quiz{TimeLimit: math.MaxInt / 30}
	if got := quiz.TotalSeconds(); got <= 0 {
		t.Fatalf("expected positive duration, got %d", got)
	}
	if got := (Quiz{TimeLimit: 1440}).TotalSeconds(); got != 86400 {
		t.Fatalf("expected 86400, got %d", got)
	}
}
