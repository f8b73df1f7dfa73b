package qrcode

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/response"
)

// Deep link targets.
const (
	TargetWorkshop = "workshop"
	TargetDetail   = "detail"
)

// RegistrationLookup resolves a registration by its textual ID.
type RegistrationLookup interface {
	GetRegistrationByID(ctx context.Context, rawID string) (*models.Registration, error)
}

// Handler serves QR codes for registration deep links.
type Handler struct {
	registrations RegistrationLookup
	baseURL       string
	logger        *zap.Logger
}

// NewHandler creates a QR handler. baseURL is the public origin, without trailing slash.
func NewHandler(registrations RegistrationLookup, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registrations: registrations, baseURL: baseURL, logger: logger}
}

// DeepLink returns the public URL a registration's QR code points at.
func DeepLink(baseURL, target, id string) string {
	if target == TargetDetail {
		return baseURL + "/submission-detail/" + id
	}
	return baseURL + "/workshop/" + id
}

// Registration handles GET /get-submission/:id/qr.
func (h *Handler) Registration(c *gin.Context) {
	target := c.DefaultQuery("target", TargetWorkshop)
	if target != TargetWorkshop && target != TargetDetail {
		response.BadRequest(c, "Invalid target. Must be one of: workshop, detail")
		return
	}
	size := DefaultSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "Invalid size")
			return
		}
		size = ClampSize(n)
	}

	reg, err := h.registrations.GetRegistrationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	png, err := Encode(DeepLink(h.baseURL, target, reg.ID.String()), Options{Size: size, Border: true})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
