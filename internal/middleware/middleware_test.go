package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stem-workshop/certificates/internal/auth"
	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
)

type stubVerifier map[string]*auth.Claims

func (s stubVerifier) VerifySession(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	c, ok := s[token]
	if !ok {
		return nil, apperr.Unauthenticated("Invalid session")
	}
	return c, nil
}

func init() { gin.SetMode(gin.TestMode) }

func serve(r http.Handler, method, path, cookie string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookie})
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAndRole(t *testing.T) {
	verifier := stubVerifier{
		"admin-token": {Email: "dean@example.org", Role: models.RoleAdmin},
		"user-token":  {Email: "jane@example.org", Role: models.RoleParticipant},
	}
	r := gin.New()
	r.GET("/me", Session(verifier), func(c *gin.Context) {
		c.String(http.StatusOK, SessionClaims(c).Email)
	})
	r.GET("/admin", Session(verifier), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Not authenticated"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/me", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", "user-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.org", w.Body.String())

	w = serve(r, http.MethodGet, "/admin", "user-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"insufficient permissions"}`, w.Body.String())
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/admin", "admin-token", nil).Code)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/admin", "", nil).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000, https://stem.example.org"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://stem.example.org"})
	assert.Equal(t, "https://stem.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/x", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	wild := gin.New()
	wild.Use(CORS("*"))
	wild.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = serve(wild, http.MethodGet, "/x", "", map[string]string{"Origin": "https://any.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/ok", "", nil)
	serve(r, http.MethodGet, "/boom", "", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "/boom", entries[1].ContextMap()["path"])
	assert.IsType(t, time.Duration(0), entries[1].ContextMap()["latency"])
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/get-submission/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/get-submission/:id", "404"))
	serve(r, http.MethodGet, "/get-submission/abc", "", nil)
	serve(r, http.MethodGet, "/get-submission/def", "", nil)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/get-submission/:id", "404"))
	assert.Equal(t, before+2, after)

	rendered := testutil.ToFloat64(certificatesTotal.WithLabelValues(OutcomeRendered))
	RecordCertificate(OutcomeRendered)
	assert.Equal(t, rendered+1, testutil.ToFloat64(certificatesTotal.WithLabelValues(OutcomeRendered)))
}
