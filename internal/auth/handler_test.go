package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/response"
)

func newAuthRouter(t *testing.T, provider IdentityProvider) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, provider, nil)
	gate, err := NewGate("STEMeroket!", "")
	require.NoError(t, err)
	h := NewHandler(svc, gate, false, nil)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(response.MethodNotAllowed)
	r.GET("/auth/login", h.Login)
	r.GET("/auth/callback", h.Callback)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/status", h.Status)
	r.POST("/check-secretcode", h.CheckSecretCode)
	return r, svc
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookie)
	return nil
}

func TestLoginRedirects(t *testing.T) {
	r, _ := newAuthRouter(t, &stubProvider{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login?next=/workshop/7", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://accounts.example/auth?state="))
}

func TestCallbackSetsCookieAndRedirects(t *testing.T) {
	r, svc := newAuthRouter(t, &stubProvider{id: &jane})
	state, err := svc.jwt.GenerateState("/workshop/7")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state="+state, nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/workshop/7", w.Header().Get("Location"))
	c := sessionCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.Value})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"jane@example.org"`)
	assert.Contains(t, w.Body.String(), `"id":"1093"`)
}

func TestCallbackWithTamperedStateRedirectsToRoot(t *testing.T) {
	r, _ := newAuthRouter(t, &stubProvider{id: &jane})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=tampered", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotEmpty(t, sessionCookie(t, w).Value)
}

func TestCallbackWithoutCode(t *testing.T) {
	r, _ := newAuthRouter(t, &stubProvider{id: &jane})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"No authorization code provided"}`, w.Body.String())
}

func TestStatusUnauthenticated(t *testing.T) {
	r, _ := newAuthRouter(t, &stubProvider{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	r, _ := newAuthRouter(t, &stubProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, w.Code)
	c := sessionCookie(t, w)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCheckSecretCode(t *testing.T) {
	r, _ := newAuthRouter(t, &stubProvider{})
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/check-secretcode", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"kodeRahasia":"STEMeroket!"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Get code successfully"}`, w.Body.String())

	w = post(`{"kodeRahasia":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Kode Rahasia invalid"}`, w.Body.String())

	w = post(`{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Kode Rahasia is required"}`, w.Body.String())
}

func TestCheckSecretCodeElevatesSession(t *testing.T) {
	r, svc := newAuthRouter(t, &stubProvider{id: &jane})
	token, _, err := svc.HandleCallback(context.Background(), "code", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/check-secretcode", strings.NewReader(`{"kodeRahasia":"STEMeroket!"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	claims, err := svc.VerifySession(sessionCookie(t, w).Value)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}
