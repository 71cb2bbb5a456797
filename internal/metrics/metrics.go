// Package metrics exposes attempt counters for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"quiz-attempt-service/internal/domain"
)

// Recorder implements app.AttemptObserver.
type Recorder struct {
	started   *prometheus.CounterVec
	submitted *prometheus.CounterVec
	scores    prometheus.Histogram
}

// NewRecorder registers the attempt metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		started: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_attempts_started_total",
				Help: "Attempts started, by quiz.",
			},
			[]string{"quiz_id"},
		),
		submitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_attempts_submitted_total",
				Help: "Attempts submitted, by mode (manual or auto).",
			},
			[]string{"mode"},
		),
		scores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_attempt_score_percentage",
				Help:    "Score percentage of submitted attempts.",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
	}
}

func (r *Recorder) AttemptStarted(quizID string) {
	r.started.WithLabelValues(quizID).Inc()
}

func (r *Recorder) AttemptSubmitted(view domain.ResultView) {
	mode := "manual"
	if view.AutoSubmitted {
		mode = "auto"
	}
	r.submitted.WithLabelValues(mode).Inc()
	r.scores.Observe(float64(view.Result.Percentage))
}
