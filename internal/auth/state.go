package auth

import (
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	stateAudience = "oauth_state"
	// StateTTL bounds how long a login round-trip may take.
	StateTTL = 10 * time.Minute
)

type stateClaims struct {
	Next string `json:"next"`
	jwt.RegisteredClaims
}

// GenerateState returns a signed continuation token that carries the post-login path.
func (s *JWTService) GenerateState(next string) (string, error) {
	now := s.now()
	claims := stateClaims{
		Next: SafeNext(next),
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{stateAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateState returns the continuation path stored in a state token.
func (s *JWTService) ValidateState(state string) (string, error) {
	claims := &stateClaims{}
	if err := s.parse(state, claims, stateAudience); err != nil {
		return "", err
	}
	return SafeNext(claims.Next), nil
}

// SafeNext keeps only same-site absolute paths; anything else becomes "/".
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
