package http

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketAttemptAutoSubmits(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws?quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	typ, payload := readNext(conn, t, "started")
	if payload["attemptId"] == "" {
		t.Fatalf("expected attempt id, got %v (%s)", payload, typ)
	}
	typ, payload = readNext(conn, t, "tick")
	if payload["formatted"] != "1:00" {
		t.Fatalf("expected initial clock 1:00, got %v", payload)
	}

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionIndex": 0, "optionIndex": 1},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	readNext(conn, t, "answers")

	env.clock.Advance(time.Minute)

	for {
		typ, payload = readNext(conn, t, "")
		if typ == "submitted" {
			break
		}
		if typ != "tick" {
			t.Fatalf("unexpected message %s %v", typ, payload)
		}
	}
	if payload["autoSubmitted"] != true {
		t.Fatalf("expected auto submission, got %v", payload)
	}
	result, _ := payload["result"].(map[string]any)
	if result["percentage"] != float64(100) {
		t.Fatalf("expected full score, got %v", result)
	}
}

func TestWebSocketManualSubmit(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws?quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "started")
	readNext(conn, t, "tick")

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	_, payload := readNext(conn, t, "submitted")
	if payload["autoSubmitted"] != false || payload["passed"] != false {
		t.Fatalf("unexpected manual result %v", payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	readNext(conn, t, "error")
}

func TestWebSocketRejectsIncompleteAnswer(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws?quizId=quiz-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "started")
	readNext(conn, t, "tick")

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] != "invalid answer payload" {
		t.Fatalf("unexpected error %v", payload)
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws?quizId=missing"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, payload := readNext(conn, t, "error")
	if payload["redirect"] != HomePath {
		t.Fatalf("expected redirect hint, got %v", payload)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
