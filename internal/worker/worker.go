package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/certificate"
	"github.com/stem-workshop/certificates/pkg/queue"
)

// Renderer produces certificate PDFs.
type Renderer interface {
	Render(req certificate.Request) ([]byte, error)
}

// Uploader stores rendered certificates.
type Uploader interface {
	PutCertificate(ctx context.Context, issuanceID string, pdf []byte) (string, error)
}

// JobSource hands out archive jobs and parks the ones that fail.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	DeadLetter(ctx context.Context, job *queue.Job, cause error) error
}

// CertificateArchiver processes certificate archive jobs: re-render the PDF, upload it to S3.
type CertificateArchiver struct {
	renderer Renderer
	uploader Uploader
	jobs     JobSource
	backoff  time.Duration
	logger   *zap.Logger
}

// NewCertificateArchiver creates an archive processor.
func NewCertificateArchiver(renderer Renderer, uploader Uploader, jobs JobSource, logger *zap.Logger) *CertificateArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateArchiver{renderer: renderer, uploader: uploader, jobs: jobs, backoff: queue.ErrorBackoff, logger: logger}
}

// Process executes one archive job.
func (p *CertificateArchiver) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCertificateArchive {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CertificateArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	pdf, err := p.renderer.Render(certificate.Request{
		ParticipantName: payload.ParticipantName,
		WorkshopTitle:   payload.WorkshopTitle,
		InstitutionName: payload.InstitutionName,
		IssuedAt:        payload.IssuedAt,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	key, err := p.uploader.PutCertificate(ctx, payload.IssuanceID.String(), pdf)
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	p.logger.Info("certificate archived", zap.String("issuance_id", payload.IssuanceID.String()), zap.String("s3_key", key))
	return nil
}

// Run starts the worker loop until ctx is cancelled. Failed jobs go to the dead-letter list.
func (p *CertificateArchiver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("certificate worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if dlqErr := p.jobs.DeadLetter(ctx, job, err); dlqErr != nil {
				p.logger.Error("dead-letter enqueue failed", zap.String("job_id", job.ID), zap.Error(dlqErr))
			}
		}
	}
}

func (p *CertificateArchiver) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
