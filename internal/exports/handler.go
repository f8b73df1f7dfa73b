package exports

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
	"github.com/stem-workshop/certificates/pkg/response"
)

// RegistrationLister lists workshop registrations.
type RegistrationLister interface {
	ListRegistrations(ctx context.Context) ([]models.Registration, error)
}

// IssuanceLister lists certificate issuances.
type IssuanceLister interface {
	ListCertificateIssuances(ctx context.Context) ([]models.CertificateIssuance, error)
}

// Handler serves admin CSV exports.
type Handler struct {
	registrations RegistrationLister
	issuances     IssuanceLister
	loc           *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewHandler creates an export handler. Timestamps are rendered in loc (UTC when nil).
func NewHandler(registrations RegistrationLister, issuances IssuanceLister, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registrations: registrations, issuances: issuances, loc: loc, now: time.Now, logger: logger}
}

// SetClock overrides the clock used for export filenames (tests).
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

// Certificates handles GET /admin/export/certificates.csv.
func (h *Handler) Certificates(c *gin.Context) {
	list, err := h.issuances.ListCertificateIssuances(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteCertificates(&buf, list, h.loc); err != nil {
		response.Error(c, h.logger, apperr.Wrap(apperr.KindInternal, "Failed to export certificates", err))
		return
	}
	h.send(c, "data-certificate", buf.Bytes())
}

// Submissions handles GET /admin/export/submissions.csv.
func (h *Handler) Submissions(c *gin.Context) {
	list, err := h.registrations.ListRegistrations(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteSubmissions(&buf, list, h.loc); err != nil {
		response.Error(c, h.logger, apperr.Wrap(apperr.KindInternal, "Failed to export submissions", err))
		return
	}
	h.send(c, "data-submission", buf.Bytes())
}

func (h *Handler) send(c *gin.Context, prefix string, body []byte) {
	name := fmt.Sprintf("%s-%s.csv", prefix, h.now().In(h.loc).Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
