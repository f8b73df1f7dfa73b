package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/pkg/response"
)

// SessionCookie is the name of the HTTP-only cookie holding the session token.
const SessionCookie = "session"

// SecretCodeRequest is the body for POST /check-secretcode.
type SecretCodeRequest struct {
	KodeRahasia string `json:"kodeRahasia"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	svc          *Service
	gate         *Gate
	cookieSecure bool
	logger       *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service, gate *Gate, cookieSecure bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, gate: gate, cookieSecure: cookieSecure, logger: logger}
}

// Login handles GET /auth/login.
func (h *Handler) Login(c *gin.Context) {
	url, err := h.svc.InitiateLogin(c.Query("next"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Callback handles GET /auth/callback.
func (h *Handler) Callback(c *gin.Context) {
	token, next, err := h.svc.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	h.setSession(c, token, h.svc.SessionTTL())
	c.Redirect(http.StatusFound, next)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	h.setSession(c, "", -1)
	response.OK(c, nil)
}

// Status handles GET /auth/status.
func (h *Handler) Status(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	claims, err := h.svc.VerifySession(token)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	body := gin.H{
		"id":      claims.Subject,
		"email":   claims.Email,
		"name":    claims.Name,
		"picture": claims.Picture,
		"role":    claims.Role,
	}
	if claims.IssuedAt != nil {
		body["iat"] = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		body["exp"] = claims.ExpiresAt.Unix()
	}
	response.OK(c, body)
}

// CheckSecretCode handles POST /check-secretcode. A valid code also promotes
// the caller's session, when present, to the admin role.
func (h *Handler) CheckSecretCode(c *gin.Context) {
	var req SecretCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.gate.Check(req.KodeRahasia); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if token, _ := c.Cookie(SessionCookie); token != "" {
		if claims, err := h.svc.VerifySession(token); err == nil && !claims.IsAdmin() {
			elevated, err := h.svc.Elevate(claims)
			if err != nil {
				response.Error(c, h.logger, err)
				return
			}
			h.setSession(c, elevated, h.svc.SessionTTL())
			h.logger.Info("session elevated to admin", zap.String("subject", claims.Subject))
		}
	}
	response.Created(c, gin.H{"message": "Get code successfully"})
}

func (h *Handler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", h.cookieSecure, true)
}
