package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// HomePath is where clients are sent when there is nothing to show.
const HomePath = "/"

// NewRouter wires the REST API, the attempt WebSocket and operational endpoints.
// metricsHandler may be nil.
func NewRouter(quizzes *app.QuizService, attempts *app.AttemptService, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	qh := NewQuizHandler(quizzes)
	ah := NewAttemptHandler(attempts)
	ws := NewWSHandler(attempts)

	r.Route("/api", func(r chi.Router) {
		r.Get("/quizzes", qh.List)
		r.Post("/quizzes", qh.Create)
		r.Get("/quizzes/{quizID}", qh.Get)
		r.Delete("/quizzes/{quizID}", qh.Delete)
		r.Post("/quizzes/{quizID}/attempts", ah.Start)

		r.Get("/attempts/{attemptID}", ah.Get)
		r.Put("/attempts/{attemptID}/answers", ah.Answer)
		r.Post("/attempts/{attemptID}/submit", ah.Submit)
		r.Get("/attempts/{attemptID}/result", ah.Result)
	})
	r.Get("/ws", ws.ServeWS)
	return r
}

type errorPayload struct {
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorPayload{Message: "invalid quiz", Fields: verr.Fields})
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error(), Redirect: HomePath})
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrOptionNotFound):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrAttemptSubmitted), errors.Is(err, domain.ErrAttemptInProgress):
		writeJSON(w, http.StatusConflict, errorPayload{Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}
