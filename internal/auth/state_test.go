package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stem-workshop/certificates/internal/models"
)

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                         "/",
		"/":                        "/",
		"/workshop/abc":            "/workshop/abc",
		"/submission-detail/1?x=1": "/submission-detail/1?x=1",
		"https://evil.example":     "/",
		"//evil.example/path":      "/",
		`/\evil.example`:           "/",
		"workshop/abc":             "/",
		"javascript:alert(1)":      "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeNext(in), in)
	}
}

func TestStateRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestJWT(clock)

	state, err := s.GenerateState("/workshop/6f1c2a4e")
	require.NoError(t, err)
	next, err := s.ValidateState(state)
	require.NoError(t, err)
	assert.Equal(t, "/workshop/6f1c2a4e", next)
}

func TestStateExpiresAndIsNotASession(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestJWT(clock)

	session, err := s.Generate(jane, models.RoleParticipant)
	require.NoError(t, err)
	_, err = s.ValidateState(session)
	assert.ErrorIs(t, err, ErrInvalidToken)

	state, err := s.GenerateState("/workshop/1")
	require.NoError(t, err)
	clock.Advance(StateTTL + time.Second)
	_, err = s.ValidateState(state)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
