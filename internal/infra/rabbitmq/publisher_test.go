package rabbitmq

import (
	"testing"
	"time"

	"quiz-attempt-service/internal/domain"
)

func TestDisabledPublisherIsNoop(t *testing.T) {
	p, err := NewPublisher("", "")
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("expected publisher disabled without url")
	}
	p.AttemptStarted("quiz-1")
	p.AttemptSubmitted(domain.ResultView{AttemptID: "a"})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewSubmittedEvent(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := NewSubmittedEvent(domain.ResultView{
		AttemptID:     "a1",
		QuizID:        "q1",
		Result:        domain.AttemptResult{Score: 1, Total: 2, Percentage: 50},
		Passed:        true,
		AutoSubmitted: true,
		TimeTaken:     60,
	}, at)
	if ev.AttemptID != "a1" || ev.QuizID != "q1" || ev.Percentage != 50 || !ev.AutoSubmitted || !ev.OccurredAt.Equal(at) {
		t.Fatalf("unexpected event %+v", ev)
	}
}
