package certificate

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/middleware"
	"github.com/stem-workshop/certificates/pkg/response"
	"github.com/stem-workshop/certificates/pkg/validation"
)

// PDFRenderer produces certificate documents.
type PDFRenderer interface {
	Render(req Request) ([]byte, error)
}

// GenerateInput is the body of POST /generate-certificate.
type GenerateInput struct {
	PersonName      string `json:"personName" validate:"required"`
	WorkshopName    string `json:"workshopName" validate:"required"`
	InstitutionName string `json:"namaInstansi"`
}

// Handler serves certificate downloads.
type Handler struct {
	renderer PDFRenderer
	validate *validation.Validator
	logger   *zap.Logger
}

// NewHandler creates a certificate handler.
func NewHandler(renderer PDFRenderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{renderer: renderer, validate: validation.New(), logger: logger}
}

// Generate handles POST /generate-certificate. The route requires a session.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	validation.TrimStrings(&req)
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(c, "Person name and workshop name are required")
		return
	}

	pdf, err := h.renderer.Render(Request{
		ParticipantName: req.PersonName,
		WorkshopTitle:   req.WorkshopName,
		InstitutionName: req.InstitutionName,
	})
	if err != nil {
		middleware.RecordCertificate(middleware.OutcomeFailed)
		response.Error(c, h.logger, err)
		return
	}
	middleware.RecordCertificate(middleware.OutcomeRendered)

	fields := []zap.Field{zap.String("workshop_title", req.WorkshopName), zap.Int("bytes", len(pdf))}
	if claims := middleware.SessionClaims(c); claims != nil {
		fields = append(fields, zap.String("subject", claims.Subject))
	}
	h.logger.Info("certificate generated", fields...)

	c.Header("Content-Disposition", `attachment; filename="`+Filename(req.PersonName)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
