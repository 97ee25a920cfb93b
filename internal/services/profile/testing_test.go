package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/joseph-ayodele/estatehub/db/migrations"
	"github.com/joseph-ayodele/estatehub/internal/notify"
	"github.com/joseph-ayodele/estatehub/internal/repository"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMail struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (f *fakeMail) Enqueue(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []notify.VerificationEvent
	err    error
}

func (f *fakeEvents) PublishVerification(_ context.Context, ev notify.VerificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fixture struct {
	svc    *Service
	repos  repository.Repositories
	mail   *fakeMail
	events *fakeEvents
}

const reviewerID = "reviewer-1"

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	logger := discardLogger()
	db, err := repository.Open(context.Background(), repository.Config{
		Driver: repository.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "estatehub.db"),
	}, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { repository.Close(db, logger) })
	if err := repository.Migrate(context.Background(), db, migrations.FS, ".", logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if cfg.Reviewers == nil {
		cfg.Reviewers = []string{reviewerID}
	}
	f := &fixture{
		repos:  repository.NewRepositories(db, logger),
		mail:   &fakeMail{},
		events: &fakeEvents{},
	}
	f.svc = NewService(f.repos, f.mail, f.events, cfg, logger)
	return f
}

func sessionFor(userID string) session.Session {
	return session.Session{UserID: userID, Email: userID + "@example.com", EmailVerified: true}
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want %v", err, kind)
	}
}

func strPtr(s string) *string { return &s }
