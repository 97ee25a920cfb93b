package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/estatehub/constants"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func TestQueueDeliversBeforeShutdownReturns(t *testing.T) {
	mailer := &recordingMailer{}
	q := NewQueue(mailer, discardLogger(), WithWorkers(3), WithQueueSize(1))

	for i := 0; i < 10; i++ {
		if err := q.Enqueue(context.Background(), Message{To: "a@example.com"}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if len(mailer.sent) != 10 {
		t.Fatalf("sent = %d, want 10", len(mailer.sent))
	}
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	q := NewQueue(&recordingMailer{}, discardLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	if err := q.Enqueue(context.Background(), Message{}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestQueueSurvivesMailerErrors(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("provider down")}
	q := NewQueue(mailer, discardLogger(), WithWorkers(1))
	if err := q.Enqueue(context.Background(), Message{To: "x@example.com"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(context.Background(), Message{To: "y@example.com"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	q.Shutdown(context.Background())
	if len(mailer.sent) != 2 {
		t.Fatalf("attempts = %d, want 2", len(mailer.sent))
	}
}

func TestHTTPMailer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		if strings.Contains(gotBody["to"].(string), "fail") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "key-1", "EstateHub <no-reply@example.com>", time.Second, discardLogger())
	if err := m.Send(context.Background(), Message{To: "ada@example.com", Subject: "hi", Body: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAuth != "Bearer key-1" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody["from"] != "EstateHub <no-reply@example.com>" || gotBody["subject"] != "hi" || gotBody["text"] != "hello" {
		t.Fatalf("body = %v", gotBody)
	}
	if err := m.Send(context.Background(), Message{To: "fail@example.com"}); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestSubject(t *testing.T) {
	if got := Subject("profiles.verification", constants.VerificationVerified); got != "profiles.verification.verified" {
		t.Fatalf("subject = %q", got)
	}
	if got := Subject("events.", constants.VerificationRejected); got != "events.rejected" {
		t.Fatalf("subject = %q", got)
	}
}

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("ada@example.com", "Ada Lovelace", constants.VerificationRejected, "photo is blurry")
	if !strings.Contains(msg.Body, "photo is blurry") || !strings.Contains(msg.Body, "Ada Lovelace") {
		t.Fatalf("body = %q", msg.Body)
	}
	if msg.Template != "verification_REJECTED" {
		t.Fatalf("template = %q", msg.Template)
	}
}
