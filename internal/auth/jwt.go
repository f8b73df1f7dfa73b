package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stem-workshop/certificates/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// sessionAudience separates session tokens from continuation state tokens signed with the same key.
const sessionAudience = "session"

// Claims is the session identity carried in the cookie.
type Claims struct {
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	Picture string      `json:"picture"`
	Role    models.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the session carries the admin role.
func (c *Claims) IsAdmin() bool { return c.Role == models.RoleAdmin }

// JWTService mints and validates HS256 session tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a JWT service.
func NewJWTService(secret string, expireHours int) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    time.Duration(expireHours) * time.Hour,
		now:    time.Now,
	}
}

// SetClock overrides the clock used for issuing and validating tokens.
func (s *JWTService) SetClock(now func() time.Time) { s.now = now }

// TTL returns the session lifetime.
func (s *JWTService) TTL() time.Duration { return s.ttl }

// Generate creates a session token for the identity with the given role.
func (s *JWTService) Generate(id Identity, role models.Role) (string, error) {
	now := s.now()
	claims := Claims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates a JWT, returning claims or error.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims, sessionAudience); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(audience),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
