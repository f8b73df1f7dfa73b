package issuances

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/pkg/apperr"
	"github.com/stem-workshop/certificates/pkg/response"
	"github.com/stem-workshop/certificates/pkg/storage"
)

// DownloadSigner issues download URLs for archived certificates.
type DownloadSigner interface {
	CertificateDownloadURL(ctx context.Context, issuanceID string) (string, error)
}

// Handler handles certificate issuance HTTP endpoints.
type Handler struct {
	svc    *Service
	signer DownloadSigner
	logger *zap.Logger
}

// NewHandler creates an issuances handler. signer may be nil when archiving is disabled.
func NewHandler(svc *Service, signer DownloadSigner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, signer: signer, logger: logger}
}

// Submit handles POST /submit-certificate.
func (h *Handler) Submit(c *gin.Context) {
	var req Input
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := h.svc.SubmitCertificateIssuance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, gin.H{"message": "certificate created successfully", "id": id})
}

// List handles GET /get-certificate.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListCertificateIssuances(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"certificates": list})
}

// ByWorkshopTitle handles GET /get-certificate/:workshopTitle.
func (h *Handler) ByWorkshopTitle(c *gin.Context) {
	list, err := h.svc.GetCertificateIssuancesByWorkshopTitle(c.Request.Context(), c.Param("workshopTitle"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"submission": list})
}

// Draw handles GET /admin/workshops/:id/draw.
func (h *Handler) Draw(c *gin.Context) {
	winner, err := h.svc.DrawParticipant(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"winner": winner})
}

// DownloadURL handles GET /certificates/:id/download-url.
func (h *Handler) DownloadURL(c *gin.Context) {
	if h.signer == nil {
		response.NotFound(c, "Certificate archive is not enabled")
		return
	}
	iss, err := h.svc.GetCertificateIssuance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	url, err := h.signer.CertificateDownloadURL(c.Request.Context(), iss.ID.String())
	if errors.Is(err, storage.ErrObjectNotFound) {
		response.NotFound(c, "Certificate not archived yet")
		return
	}
	if err != nil {
		response.Error(c, h.logger, apperr.Wrap(apperr.KindInternal, "Failed to sign download URL", err))
		return
	}
	response.OK(c, gin.H{"url": url, "key": storage.CertificateKey(iss.ID.String())})
}
