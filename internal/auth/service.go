package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
)

// LoginRecorder persists sign-in events.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, l *models.UserLogin) error
}

// Service drives the OAuth login flow and session verification.
type Service struct {
	provider IdentityProvider
	jwt      *JWTService
	logins   LoginRecorder
	admins   map[string]struct{}
	logger   *zap.Logger
}

// NewService creates an auth service. adminEmails get the admin role at login.
func NewService(provider IdentityProvider, jwtSvc *JWTService, logins LoginRecorder, adminEmails []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Service{provider: provider, jwt: jwtSvc, logins: logins, admins: admins, logger: logger}
}

// InitiateLogin returns the provider consent URL carrying the continuation path.
func (s *Service) InitiateLogin(next string) (string, error) {
	state, err := s.jwt.GenerateState(next)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "Authentication failed", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

// HandleCallback exchanges the code and mints a session token.
// It returns the token and the path to continue to. An unverifiable state only
// loses the continuation path: the sign-in proceeds to "/".
func (s *Service) HandleCallback(ctx context.Context, code, state string) (string, string, error) {
	if code == "" {
		return "", "", apperr.New(apperr.KindAuth, "No authorization code provided").WithStatus(http.StatusBadRequest)
	}
	next := "/"
	if state != "" {
		if n, err := s.jwt.ValidateState(state); err != nil {
			s.logger.Warn("login state rejected, continuing to /", zap.Error(err))
		} else {
			next = n
		}
	}

	id, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindAuth, "Authentication failed", err)
	}

	token, err := s.jwt.Generate(*id, s.roleFor(id.Email))
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindAuth, "Authentication failed", err)
	}

	if s.logins != nil {
		login := &models.UserLogin{Subject: id.Subject, Email: id.Email, Name: id.Name, Picture: id.Picture}
		if err := s.logins.RecordLogin(ctx, login); err != nil {
			s.logger.Error("record login failed", zap.Error(err), zap.String("subject", id.Subject))
		}
	}
	s.logger.Info("user signed in", zap.String("subject", id.Subject), zap.String("email", id.Email))
	return token, next, nil
}

// VerifySession returns the claims of a valid session token.
func (s *Service) VerifySession(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid session")
	}
	return claims, nil
}

// Elevate re-mints a session with the admin role.
func (s *Service) Elevate(claims *Claims) (string, error) {
	id := Identity{Subject: claims.Subject, Email: claims.Email, Name: claims.Name, Picture: claims.Picture}
	token, err := s.jwt.Generate(id, models.RoleAdmin)
	if err != nil {
		return "", apperr.Wrap(apperr.KindAuth, "Failed to update session", err)
	}
	return token, nil
}

// SessionTTL returns the lifetime of minted sessions.
func (s *Service) SessionTTL() int { return int(s.jwt.TTL().Seconds()) }

func (s *Service) roleFor(email string) models.Role {
	if _, ok := s.admins[strings.ToLower(email)]; ok {
		return models.RoleAdmin
	}
	return models.RoleParticipant
}
