package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
)

type stubProvider struct {
	id  *Identity
	err error
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}

func (p *stubProvider) Exchange(_ context.Context, code string) (*Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.id, nil
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) RecordLogin(ctx context.Context, l *models.UserLogin) error {
	return m.Called(ctx, l).Error(0)
}

func newTestService(t *testing.T, provider IdentityProvider, rec LoginRecorder, admins ...string) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewService(provider, newTestJWT(clock), rec, admins, nil), clock
}

func TestHandleCallbackMintsVerifiableSession(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("RecordLogin", mock.Anything, mock.MatchedBy(func(l *models.UserLogin) bool {
		return l.Subject == "1093" && l.Email == "jane@example.org"
	})).Return(nil).Once()
	svc, clock := newTestService(t, &stubProvider{id: &jane}, rec)

	loginURL, err := svc.InitiateLogin("/workshop/42")
	require.NoError(t, err)
	state := loginURL[len("https://accounts.example/auth?state="):]

	token, next, err := svc.HandleCallback(context.Background(), "code", state)
	require.NoError(t, err)
	assert.Equal(t, "/workshop/42", next)
	rec.AssertExpectations(t)

	claims, err := svc.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, jane.Subject, claims.Subject)
	assert.Equal(t, jane.Email, claims.Email)
	assert.Equal(t, jane.Name, claims.Name)
	assert.Equal(t, jane.Picture, claims.Picture)
	assert.Equal(t, models.RoleParticipant, claims.Role)

	clock.Advance(24*time.Hour + time.Second)
	_, err = svc.VerifySession(token)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.As(err).Kind)
}

func TestHandleCallbackAdminRole(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{id: &jane}, nil, "JANE@example.org")

	token, next, err := svc.HandleCallback(context.Background(), "code", "")
	require.NoError(t, err)
	assert.Equal(t, "/", next)
	claims, err := svc.VerifySession(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestHandleCallbackErrors(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{err: errors.New("invalid_grant")}, nil)

	_, _, err := svc.HandleCallback(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).StatusCode())

	_, _, err = svc.HandleCallback(context.Background(), "code", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.As(err).Kind)
	assert.Equal(t, http.StatusInternalServerError, apperr.As(err).StatusCode())
}

func TestHandleCallbackBadStateFallsBackToRoot(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(&stubProvider{id: &jane}, newTestJWT(clock), nil, nil, zap.New(core))

	expired, err := svc.jwt.GenerateState("/workshop/42")
	require.NoError(t, err)
	clock.Advance(StateTTL + time.Second)

	for _, state := range []string{"tampered", expired} {
		token, next, err := svc.HandleCallback(context.Background(), "code", state)
		require.NoError(t, err)
		assert.Equal(t, "/", next)
		_, err = svc.VerifySession(token)
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, logs.FilterMessage("login state rejected, continuing to /").Len())
}

func TestHandleCallbackLoginRecordFailureIsNotFatal(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("RecordLogin", mock.Anything, mock.Anything).Return(errors.New("db down"))
	svc, _ := newTestService(t, &stubProvider{id: &jane}, rec)

	token, _, err := svc.HandleCallback(context.Background(), "code", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestVerifySessionMissing(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{}, nil)
	_, err := svc.VerifySession("")
	require.Error(t, err)
	assert.Equal(t, "Not authenticated", apperr.As(err).Message)

	_, err = svc.VerifySession("garbage")
	assert.Equal(t, "Invalid session", apperr.As(err).Message)
}

func TestElevate(t *testing.T) {
	svc, _ := newTestService(t, &stubProvider{id: &jane}, nil)
	token, _, err := svc.HandleCallback(context.Background(), "code", "")
	require.NoError(t, err)
	claims, err := svc.VerifySession(token)
	require.NoError(t, err)

	elevated, err := svc.Elevate(claims)
	require.NoError(t, err)
	admin, err := svc.VerifySession(elevated)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, jane.Email, admin.Email)
}
