package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/joseph-ayodele/estatehub/internal/common"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// JWTStore verifies HS256 session tokens signed with a shared secret. It is
// used by local deployments and tests where no OIDC issuer is available.
type JWTStore struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTStore builds a store. issuer may be empty to skip the iss check.
func NewJWTStore(secret, issuer string) (*JWTStore, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt session secret is required")
	}
	return &JWTStore{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (s *JWTStore) CurrentSession(_ context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, common.UnauthorizedErrorf("session token is required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, common.UnauthorizedErrorf("session expired")
		}
		return Session{}, common.UnauthorizedErrorf("invalid session token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Session{}, common.UnauthorizedErrorf("session token has no subject")
	}
	return Session{
		UserID:        claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// Mint signs a session token for sess valid for ttl.
func (s *JWTStore) Mint(sess Session, ttl time.Duration) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:         sess.Email,
		EmailVerified: sess.EmailVerified,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
