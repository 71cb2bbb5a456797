package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	"quiz-attempt-service/internal/timer"
)

type testEnv struct {
	server *httptest.Server
	clock  *timer.ManualClock
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repo := app.NewRepository(memory.NewQuizStore(sampleQuiz()["quiz-1"]))
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	clock := timer.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	quizzes := app.NewQuizService(repo)
	attempts := app.NewAttemptService(quizzes, memory.NewAttemptStore(), app.WithClock(clock))

	server := httptest.NewServer(NewRouter(quizzes, attempts, nil))
	t.Cleanup(server.Close)
	return testEnv{server: server, clock: clock}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestQuizEndpoints(t *testing.T) {
	env := newTestEnv(t)

	draft := sampleQuiz()["quiz-1"]
	draft.ID = ""
	draft.Title = "Capitals"
	resp := env.do(t, http.MethodPost, "/api/quizzes", draft)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	created := decode[domain.Quiz](t, resp)
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected stamped quiz, got %+v", created)
	}

	resp = env.do(t, http.MethodGet, "/api/quizzes?search=capit", nil)
	list := decode[[]domain.Quiz](t, resp)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected search result %+v", list)
	}

	resp = env.do(t, http.MethodGet, "/api/quizzes/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodDelete, "/api/quizzes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/api/quizzes/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateQuizValidationError(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/quizzes", domain.Quiz{Title: "only a title"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	payload := decode[errorPayload](t, resp)
	for _, key := range []string{"description", "timeLimit", "general"} {
		if _, ok := payload.Fields[key]; !ok {
			t.Fatalf("expected %q in %v", key, payload.Fields)
		}
	}
}

func TestAttemptEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/quizzes/quiz-1/attempts", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status %d", resp.StatusCode)
	}
	started := decode[attemptPayload](t, resp)
	if started.Clock.RemainingSeconds != 60 {
		t.Fatalf("unexpected clock %+v", started.Clock)
	}
	base := "/api/attempts/" + started.AttemptID

	resp = env.do(t, http.MethodGet, base+"/result", nil)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != HomePath {
		t.Fatalf("expected redirect before submission, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = env.do(t, http.MethodPut, base+"/answers", answerBody(0, 1))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer status %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodPut, base+"/answers", answerBody(0, 7))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown option, got %d", resp.StatusCode)
	}

	env.clock.Advance(15 * time.Second)
	resp = env.do(t, http.MethodPost, base+"/submit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d", resp.StatusCode)
	}
	view := decode[domain.ResultView](t, resp)
	if view.Result.Score != 1 || view.Result.Percentage != 100 || view.TimeTaken != 15 {
		t.Fatalf("unexpected result %+v", view)
	}

	resp = env.do(t, http.MethodPost, base+"/submit", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on second submit, got %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, base+"/result", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("result status %d", resp.StatusCode)
	}
	again := decode[domain.ResultView](t, resp)
	if again.Result.Percentage != view.Result.Percentage || again.TimeTakenText != "0m 15s" {
		t.Fatalf("unexpected result view %+v", again)
	}
}

func TestAnswerRequiresBothIndices(t *testing.T) {
	env := newTestEnv(t)
	started := decode[attemptPayload](t, env.do(t, http.MethodPost, "/api/quizzes/quiz-1/attempts", nil))
	base := "/api/attempts/" + started.AttemptID

	for _, body := range []any{
		map[string]int{},
		map[string]int{"questionIndex": 0},
		map[string]int{"optionIndex": 1},
	} {
		resp := env.do(t, http.MethodPut, base+"/answers", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, resp.StatusCode)
		}
	}

	resp := env.do(t, http.MethodGet, base, nil)
	if got := decode[attemptPayload](t, resp); len(got.Answers) != 0 {
		t.Fatalf("incomplete payloads must not record answers, got %v", got.Answers)
	}

	resp = env.do(t, http.MethodPut, base+"/answers", answerBody(0, 0))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("explicit zero indices must be accepted, got %d", resp.StatusCode)
	}
}

func TestResultWithoutAttemptRedirects(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/attempts/unknown/result", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
}

func TestStartAttemptUnknownQuiz(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/quizzes/missing/attempts", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	payload := decode[errorPayload](t, resp)
	if payload.Redirect != HomePath {
		t.Fatalf("expected redirect hint, got %+v", payload)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", nil)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(buf.String()) != "ok" {
		t.Fatalf("unexpected healthz %d %q", resp.StatusCode, buf.String())
	}
}

func sampleQuiz() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:          "quiz-1",
			Title:       "Arithmetic",
			Description: "Small sums",
			TimeLimit:   1,
			Questions: []domain.Question{
				{
					QuestionText: "What is 2 + 2?",
					Type:         domain.SingleChoice,
					Options: []domain.Option{
						{Text: "3"},
						{Text: "4", IsCorrect: true},
						{Text: "5"},
					},
				},
			},
		},
	}
}

func answerBody(questionIndex, optionIndex int) map[string]int {
	return map[string]int{"questionIndex": questionIndex, "optionIndex": optionIndex}
}
