package registrations

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/pkg/response"
)

// Handler handles workshop registration HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Submit handles POST /submit-form.
func (h *Handler) Submit(c *gin.Context) {
	var req Input
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.IPAddress = originAddress(c)

	id, err := h.svc.SubmitRegistration(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "Form submitted successfully", "id": id})
}

// List handles GET /get-submissions.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListRegistrations(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"submissions": list})
}

// Get handles GET /get-submission/:id.
func (h *Handler) Get(c *gin.Context) {
	reg, err := h.svc.GetRegistrationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"submission": reg})
}

// originAddress prefers the first X-Forwarded-For hop over the socket peer.
func originAddress(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return c.RemoteIP()
}
