package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueCertificates is the Redis list key for certificate archive jobs.
	QueueCertificates = "worker:certificates"
	// QueueDLQ is the dead-letter list for jobs that failed processing. Jobs are not retried.
	QueueDLQ = "worker:dlq"
	// BlockTimeout bounds a single BLPOP so the worker can observe cancellation.
	BlockTimeout = 5 * time.Second
	// ErrorBackoff is the pause after a Redis error before polling again.
	ErrorBackoff = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeCertificateArchive JobType = "certificate_archive"
)

// CertificateArchivePayload carries what the worker needs to re-render and upload a certificate.
type CertificateArchivePayload struct {
	IssuanceID      uuid.UUID `json:"issuance_id"`
	ParticipantName string    `json:"participant_name"`
	WorkshopTitle   string    `json:"workshop_title"`
	InstitutionName string    `json:"institution_name"`
	IssuedAt        time.Time `json:"issued_at"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
	LastError string          `json:"last_error,omitempty"`
}

// ListClient is the subset of the Redis client the queue uses.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client ListClient
	logger *zap.Logger
	now    func() time.Time
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client ListClient, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger, now: time.Now}
}

// EnqueueCertificateArchive enqueues a certificate archive job.
func (q *Queue) EnqueueCertificateArchive(ctx context.Context, payload CertificateArchivePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeCertificateArchive,
		Payload:   body,
		CreatedAt: q.now().UTC(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueCertificates, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued certificate archive job",
		zap.String("job_id", job.ID),
		zap.String("issuance_id", payload.IssuanceID.String()),
	)
	return nil
}

// Dequeue blocks up to BlockTimeout for a job. A nil job with a nil error means nothing arrived.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, BlockTimeout, QueueCertificates).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// DeadLetter records a failed job on the dead-letter list.
func (q *Queue) DeadLetter(ctx context.Context, job *Job, cause error) error {
	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
		q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
		return fmt.Errorf("rpush dlq: %w", err)
	}
	q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.String("error", job.LastError))
	return nil
}
