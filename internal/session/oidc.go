package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

// OIDCStore verifies ID tokens issued by the external auth service.
type OIDCStore struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCStore discovers the issuer and builds a verifier bound to clientID.
func NewOIDCStore(ctx context.Context, issuerURL, clientID string) (*OIDCStore, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return NewOIDCStoreWithVerifier(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

// NewOIDCStoreWithVerifier wraps an existing verifier.
func NewOIDCStoreWithVerifier(v *oidc.IDTokenVerifier) *OIDCStore {
	return &OIDCStore{verifier: v}
}

func (s *OIDCStore) CurrentSession(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, common.UnauthorizedErrorf("session token is required")
	}
	idToken, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return Session{}, common.UnauthorizedErrorf("invalid session token")
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Session{}, common.UnauthorizedErrorf("invalid session claims")
	}
	return Session{
		UserID:        idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}
