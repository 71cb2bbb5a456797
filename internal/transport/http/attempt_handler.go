package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

type AttemptHandler struct {
	service *app.AttemptService
}

func NewAttemptHandler(service *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: service}
}

type attemptPayload struct {
	AttemptID string                `json:"attemptId"`
	Quiz      domain.Quiz           `json:"quiz"`
	Clock     domain.ClockState     `json:"clock"`
	Answers   domain.AttemptAnswers `json:"answers"`
	Submitted bool                  `json:"submitted"`
}

type answerPayload struct {
	QuestionIndex *int `json:"questionIndex" validate:"required"`
	OptionIndex   *int `json:"optionIndex" validate:"required"`
}

var payloadValidator = validator.New()

func decodeAnswer(raw []byte) (answerPayload, error) {
	var payload answerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, err
	}
	return payload, payloadValidator.Struct(payload)
}

func newAttemptPayload(a *app.Attempt) attemptPayload {
	return attemptPayload{
		AttemptID: a.ID(),
		Quiz:      a.Quiz(),
		Clock:     a.Clock(),
		Answers:   a.Answers(),
		Submitted: a.IsSubmitted(),
	}
}

func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.Start(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptPayload(attempt))
}

func (h *AttemptHandler) Get(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.Get(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttemptPayload(attempt))
}

func (h *AttemptHandler) Answer(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid answer payload"})
		return
	}
	payload, err := decodeAnswer(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid answer payload"})
		return
	}
	answers, err := h.service.Answer(r.Context(), chi.URLParam(r, "attemptID"), *payload.QuestionIndex, *payload.OptionIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Submit(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Result renders a finished attempt. Without a submitted attempt there is
// nothing to render, so the client is redirected home.
func (h *AttemptHandler) Result(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Result(r.Context(), chi.URLParam(r, "attemptID"))
	if errors.Is(err, domain.ErrAttemptNotFound) || errors.Is(err, domain.ErrAttemptInProgress) {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
