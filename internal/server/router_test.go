package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/estatehub/db/migrations"
	"github.com/joseph-ayodele/estatehub/internal/export"
	"github.com/joseph-ayodele/estatehub/internal/guard"
	"github.com/joseph-ayodele/estatehub/internal/repository"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

const testReviewer = "reviewer-1"

type testServer struct {
	handler http.Handler
	store   *session.JWTStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

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

	store, err := session.NewJWTStore("test-secret", "")
	if err != nil {
		t.Fatalf("jwt store: %v", err)
	}
	svc := profile.NewService(repository.NewRepositories(db, logger), nil, nil, profile.Config{Reviewers: []string{testReviewer}}, logger)
	handler := NewRouter(Options{
		Profiles: svc,
		Export:   export.NewService(svc, logger),
		Sessions: store,
		Guard:    guard.New("", ""),
		Health: func(ctx context.Context) error {
			return PingDB(ctx, db, logger, time.Second)
		},
		Logger: logger,
	})
	return &testServer{handler: handler, store: store}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := s.store.Mint(session.Session{UserID: userID, Email: userID + "@example.com", EmailVerified: true}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		bs, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		rdr = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, userID))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type viewBody struct {
	ID                 string   `json:"id"`
	Type               string   `json:"type"`
	Active             bool     `json:"active"`
	VerificationStatus string   `json:"verification_status"`
	Completion         int      `json:"completion"`
	DisplayName        string   `json:"display_name"`
	Roles              []string `json:"roles"`
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, http.MethodPost, "/v1/session/provision", "u1", map[string]string{"pending_type": "INDIVIDUAL"})
	wantStatus(t, first, http.StatusOK)
	v1 := decode[viewBody](t, first)
	if !v1.Active || v1.Completion != 0 || v1.DisplayName != profile.PlaceholderName {
		t.Fatalf("first view = %+v", v1)
	}
	if len(v1.Roles) != 1 || v1.Roles[0] != "OWNER" {
		t.Fatalf("roles = %v", v1.Roles)
	}
	if !strings.Contains(first.Header().Get("Set-Cookie"), "estatehub_session=") {
		t.Fatalf("cookie not set: %q", first.Header().Get("Set-Cookie"))
	}

	second := s.do(t, http.MethodPost, "/v1/session/provision", "u1", nil)
	wantStatus(t, second, http.StatusOK)
	if v2 := decode[viewBody](t, second); v2.ID != v1.ID {
		t.Fatalf("second id = %s, want %s", v2.ID, v1.ID)
	}

	list := s.do(t, http.MethodGet, "/v1/profiles", "u1", nil)
	wantStatus(t, list, http.StatusOK)
	if got := decode[struct {
		Profiles []viewBody `json:"profiles"`
	}](t, list); len(got.Profiles) != 1 {
		t.Fatalf("profiles = %d, want 1", len(got.Profiles))
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/v1/profiles", "", nil)
	wantStatus(t, rec, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	wantStatus(t, bad, http.StatusUnauthorized)
}

func TestGuardEndpointAndDashboard(t *testing.T) {
	s := newTestServer(t)

	anon := s.do(t, http.MethodGet, "/v1/guard", "", nil)
	wantStatus(t, anon, http.StatusOK)
	if d := decode[guard.Decision](t, anon); d.Action != guard.ActionRedirect || d.Path != "/login" {
		t.Fatalf("anonymous decision = %+v", d)
	}

	fresh := s.do(t, http.MethodGet, "/v1/guard", "u1", nil)
	if d := decode[guard.Decision](t, fresh); d.Path != "/onboarding" {
		t.Fatalf("no-profile decision = %+v", d)
	}
	dash := s.do(t, http.MethodGet, "/v1/dashboard", "u1", nil)
	wantStatus(t, dash, http.StatusFound)
	if loc := dash.Header().Get("Location"); loc != "/onboarding" {
		t.Fatalf("location = %q", loc)
	}

	wantStatus(t, s.do(t, http.MethodPost, "/v1/session/provision", "u1", nil), http.StatusOK)

	ready := s.do(t, http.MethodGet, "/v1/guard", "u1", nil)
	if d := decode[guard.Decision](t, ready); d.Action != guard.ActionAllow {
		t.Fatalf("ready decision = %+v", d)
	}
	dash = s.do(t, http.MethodGet, "/v1/dashboard", "u1", nil)
	wantStatus(t, dash, http.StatusOK)
}

func TestPatchProfile(t *testing.T) {
	s := newTestServer(t)
	created := s.do(t, http.MethodPost, "/v1/session/provision", "u1", map[string]string{"pending_type": "BUSINESS"})
	wantStatus(t, created, http.StatusOK)
	id := decode[viewBody](t, created).ID
	path := "/v1/profiles/" + id

	tests := []struct {
		name   string
		user   string
		body   any
		status int
	}{
		{"unknown field", "u1", map[string]string{"nickname": "x"}, http.StatusBadRequest},
		{"empty patch", "u1", map[string]string{}, http.StatusBadRequest},
		{"malformed json", "u1", "{", http.StatusBadRequest},
		{"blank legal name", "u1", map[string]string{"legal_name": ""}, http.StatusBadRequest},
		{"individual field on business", "u1", map[string]string{"first_name": "Ada"}, http.StatusBadRequest},
		{"bad phone", "u1", map[string]string{"contact_phone": "call me"}, http.StatusBadRequest},
		{"other user", "u2", map[string]string{"address": "1 Main St"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantStatus(t, s.do(t, http.MethodPatch, path, tt.user, tt.body), tt.status)
		})
	}

	ok := s.do(t, http.MethodPatch, path, "u1", map[string]string{"legal_name": "Acme Ltd", "address": "1 Main St"})
	wantStatus(t, ok, http.StatusOK)
	v := decode[viewBody](t, ok)
	if v.DisplayName != "Acme Ltd" || v.Completion != 50 {
		t.Fatalf("view = %+v", v)
	}

	missing := s.do(t, http.MethodPatch, "/v1/profiles/00000000-0000-0000-0000-000000000000", "u1", map[string]string{"address": "x"})
	wantStatus(t, missing, http.StatusNotFound)
	wantStatus(t, s.do(t, http.MethodPatch, "/v1/profiles/not-a-uuid", "u1", map[string]string{"address": "x"}), http.StatusBadRequest)
}

func TestPatchAcceptsMixedCaseEnumsAndNullOptionals(t *testing.T) {
	s := newTestServer(t)
	created := s.do(t, http.MethodPost, "/v1/session/provision", "u3", nil)
	wantStatus(t, created, http.StatusOK)
	path := "/v1/profiles/" + decode[viewBody](t, created).ID

	details := func(rec *httptest.ResponseRecorder) map[string]any {
		t.Helper()
		body := decode[struct {
			Details map[string]any `json:"details"`
		}](t, rec)
		return body.Details
	}

	rec := s.do(t, http.MethodPatch, path, "u3", map[string]string{"gender": "Female", "avatar_url": "https://cdn.example/a.png"})
	wantStatus(t, rec, http.StatusOK)
	d := details(rec)
	if d["gender"] != "FEMALE" || d["avatar_url"] != "https://cdn.example/a.png" {
		t.Fatalf("details = %v", d)
	}

	rec = s.do(t, http.MethodPatch, path, "u3", `{"avatar_url": null}`)
	wantStatus(t, rec, http.StatusOK)
	if _, ok := details(rec)["avatar_url"]; ok {
		t.Fatalf("avatar_url not cleared: %v", details(rec))
	}

	wantStatus(t, s.do(t, http.MethodPatch, path, "u3", map[string]string{"gender": "robot"}), http.StatusBadRequest)
	wantStatus(t, s.do(t, http.MethodPatch, path, "u3", `{"website": null}`), http.StatusBadRequest)

	biz := s.do(t, http.MethodPost, "/v1/profiles", "u3", map[string]any{
		"type":     "Business",
		"business": map[string]any{"legal_name": "Acme", "website": nil},
	})
	wantStatus(t, biz, http.StatusCreated)
}

func TestCreateAndSwitchProfiles(t *testing.T) {
	s := newTestServer(t)
	wantStatus(t, s.do(t, http.MethodPost, "/v1/session/provision", "u2", nil), http.StatusOK)

	biz := s.do(t, http.MethodPost, "/v1/profiles", "u2", map[string]any{
		"type":     "BUSINESS",
		"business": map[string]string{"legal_name": "Acme"},
	})
	wantStatus(t, biz, http.StatusCreated)
	bizView := decode[viewBody](t, biz)
	if bizView.Active {
		t.Fatal("second profile should not be active")
	}

	dup := s.do(t, http.MethodPost, "/v1/profiles", "u2", map[string]any{
		"type":     "BUSINESS",
		"business": map[string]string{"legal_name": "Acme 2"},
	})
	wantStatus(t, dup, http.StatusConflict)

	sw := s.do(t, http.MethodPut, "/v1/profiles/active", "u2", map[string]string{"profile_id": bizView.ID})
	wantStatus(t, sw, http.StatusOK)
	active := s.do(t, http.MethodGet, "/v1/profiles/active", "u2", nil)
	if got := decode[viewBody](t, active); got.ID != bizView.ID {
		t.Fatalf("active = %s, want %s", got.ID, bizView.ID)
	}

	foreign := s.do(t, http.MethodPut, "/v1/profiles/active", "u3", map[string]string{"profile_id": bizView.ID})
	wantStatus(t, foreign, http.StatusForbidden)
}

func TestVerificationFlow(t *testing.T) {
	s := newTestServer(t)
	created := s.do(t, http.MethodPost, "/v1/session/provision", "u1", nil)
	id := decode[viewBody](t, created).ID

	doc := s.do(t, http.MethodPost, "/v1/profiles/"+id+"/documents", "u1", map[string]any{
		"kind": "ID_CARD", "file_name": "id.png", "storage_key": "uploads/id.png",
		"content_type": "image/png", "size_bytes": 1024,
	})
	wantStatus(t, doc, http.StatusCreated)
	docID := decode[struct {
		ID string `json:"id"`
	}](t, doc).ID

	review := "/v1/admin/profiles/" + id + "/review"
	wantStatus(t, s.do(t, http.MethodPost, review, "u1", map[string]string{"decision": "VERIFIED"}), http.StatusForbidden)
	wantStatus(t, s.do(t, http.MethodPost, review, testReviewer, map[string]string{"decision": "VERIFIED"}), http.StatusOK)
	wantStatus(t, s.do(t, http.MethodPost, review, testReviewer, map[string]string{"decision": "REJECTED", "note": "x"}), http.StatusConflict)

	wantStatus(t, s.do(t, http.MethodDelete, "/v1/profiles/"+id+"/documents/"+docID, "u1", nil), http.StatusForbidden)

	hist := s.do(t, http.MethodGet, "/v1/profiles/"+id+"/verifications", "u1", nil)
	wantStatus(t, hist, http.StatusOK)
	if got := decode[struct {
		Verifications []struct {
			Status string `json:"status"`
		} `json:"verifications"`
	}](t, hist); len(got.Verifications) != 1 || got.Verifications[0].Status != "VERIFIED" {
		t.Fatalf("history = %+v", got)
	}

	wantStatus(t, s.do(t, http.MethodPost, "/v1/profiles/"+id+"/roles", "u1", map[string]string{"role": "AGENT"}), http.StatusCreated)
	wantStatus(t, s.do(t, http.MethodDelete, "/v1/profiles/"+id+"/roles/OWNER", "u1", nil), http.StatusConflict)
	wantStatus(t, s.do(t, http.MethodDelete, "/v1/profiles/"+id+"/roles/AGENT", "u1", nil), http.StatusNoContent)
}

func TestExportAndHealth(t *testing.T) {
	s := newTestServer(t)
	wantStatus(t, s.do(t, http.MethodPost, "/v1/session/provision", "u1", nil), http.StatusOK)

	rec := s.do(t, http.MethodGet, "/v1/profiles/export.xlsx", "u1", nil)
	wantStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("export is not a zip container")
	}

	wantStatus(t, s.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)
}

func TestEndSessionClearsCookie(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodDelete, "/v1/session", "", nil)
	wantStatus(t, rec, http.StatusNoContent)
	if c := rec.Header().Get("Set-Cookie"); !strings.Contains(c, "Max-Age=0") {
		t.Fatalf("set-cookie = %q", c)
	}
}

func TestDeleteProfile(t *testing.T) {
	s := newTestServer(t)
	created := s.do(t, http.MethodPost, "/v1/session/provision", "u1", nil)
	id := decode[viewBody](t, created).ID

	wantStatus(t, s.do(t, http.MethodDelete, "/v1/profiles/"+id, "u2", nil), http.StatusForbidden)
	wantStatus(t, s.do(t, http.MethodDelete, "/v1/profiles/"+id, "u1", nil), http.StatusNoContent)
	wantStatus(t, s.do(t, http.MethodGet, "/v1/profiles/"+id, "u1", nil), http.StatusNotFound)
}
