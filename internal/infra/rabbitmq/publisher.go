// Package rabbitmq publishes attempt events to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"quiz-attempt-service/internal/domain"
)

// DefaultExchange is used when no exchange is configured.
const DefaultExchange = "quiz.events"

// RoutingKeySubmitted is the routing key of submission events.
const RoutingKeySubmitted = "attempt.submitted"

// SubmittedEvent is the payload published when an attempt ends.
type SubmittedEvent struct {
	AttemptID     string    `json:"attemptId"`
	QuizID        string    `json:"quizId"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Percentage    int       `json:"percentage"`
	Passed        bool      `json:"passed"`
	AutoSubmitted bool      `json:"autoSubmitted"`
	TimeTaken     int       `json:"timeTaken"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher implements app.AttemptObserver. With an empty URL it is disabled
// and every call is a no-op.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
	now      func() time.Time
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if url == "" {
		log.Println("rabbitmq url is empty, attempt events are disabled")
		return &Publisher{exchange: exchange, now: time.Now}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange, enabled: true, now: time.Now}, nil
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool { return p.enabled }

func (p *Publisher) AttemptStarted(string) {}

// AttemptSubmitted publishes the result summary. Failures are logged only;
// a submission never fails because the event bus is down.
func (p *Publisher) AttemptSubmitted(view domain.ResultView) {
	if !p.enabled {
		return
	}
	body, err := json.Marshal(NewSubmittedEvent(view, p.now()))
	if err != nil {
		log.Printf("marshal attempt event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		RoutingKeySubmitted,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Printf("publish %s for attempt %s: %v", RoutingKeySubmitted, view.AttemptID, err)
	}
}

// NewSubmittedEvent flattens a result view into the published payload.
func NewSubmittedEvent(view domain.ResultView, at time.Time) SubmittedEvent {
	return SubmittedEvent{
		AttemptID:     view.AttemptID,
		QuizID:        view.QuizID,
		Score:         view.Result.Score,
		Total:         view.Result.Total,
		Percentage:    view.Result.Percentage,
		Passed:        view.Passed,
		AutoSubmitted: view.AutoSubmitted,
		TimeTaken:     view.TimeTaken,
		OccurredAt:    at,
	}
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
