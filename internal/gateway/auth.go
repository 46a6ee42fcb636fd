package gateway

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token for remote requests.
type TokenSource interface {
	Token() (string, error)
}

// StaticTokenSource holds a fixed credential issued at login. If the token
// is a JWT with an exp claim, a known-expired credential is reported as an
// auth failure before any round trip is spent on it.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

func (s *StaticTokenSource) Token() (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("no credential configured: %w", ErrAuth)
	}

	// Signature verification belongs to the server; the client only peeks
	// at the expiry to fail fast.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			if time.Now().After(exp.Time) {
				return "", fmt.Errorf("token expired at %s: %w", exp.Time.Format(time.RFC3339), ErrAuth)
			}
		}
	}

	return s.token, nil
}
