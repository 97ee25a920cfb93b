package session

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

func TestJWTStoreRoundTrip(t *testing.T) {
	store, err := NewJWTStore("secret", "estatehub")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	want := Session{UserID: "user-1", Email: "ada@example.com", EmailVerified: true}
	token, err := store.Mint(want, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	got, err := store.CurrentSession(context.Background(), token)
	if err != nil {
		t.Fatalf("current session: %v", err)
	}
	if got != want {
		t.Fatalf("session = %+v, want %+v", got, want)
	}
}

func TestJWTStoreRejects(t *testing.T) {
	store, err := NewJWTStore("secret", "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	other, err := NewJWTStore("other-secret", "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	forged, err := other.Mint(Session{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	expired, err := store.Mint(Session{UserID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	noSubject, err := store.Mint(Session{}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", forged},
		{"expired", expired},
		{"no subject", noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CurrentSession(context.Background(), tt.token)
			if !errors.Is(err, common.ErrUnauthorized) {
				t.Fatalf("err = %v, want unauthorized", err)
			}
		})
	}
}

func TestJWTStoreRequiresSecret(t *testing.T) {
	if _, err := NewJWTStore("  ", ""); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestOIDCStoreVerifiesSignedToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	const issuer = "https://auth.example.com"
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	verifier := oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: "estatehub"})
	store := NewOIDCStoreWithVerifier(verifier)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            issuer,
		"aud":            "estatehub",
		"sub":            "user-9",
		"email":          "grace@example.com",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := store.CurrentSession(context.Background(), token)
	if err != nil {
		t.Fatalf("current session: %v", err)
	}
	if got.UserID != "user-9" || got.Email != "grace@example.com" || !got.EmailVerified {
		t.Fatalf("session = %+v", got)
	}

	if _, err := store.CurrentSession(context.Background(), token+"x"); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("tampered err = %v, want unauthorized", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"":            "",
	}
	for in, want := range tests {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context reported a session")
	}
	ctx := WithSession(context.Background(), Session{UserID: "u"})
	if s, ok := FromContext(ctx); !ok || s.UserID != "u" {
		t.Fatalf("session = %+v, %v", s, ok)
	}
}
