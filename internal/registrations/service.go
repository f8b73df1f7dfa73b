package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
	"github.com/stem-workshop/certificates/pkg/validation"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	List(ctx context.Context) ([]models.Registration, error)
}

// Input is the body of POST /submit-form.
type Input struct {
	Name           string `json:"name" validate:"required"`
	EmployeeNumber string `json:"employee_number" validate:"required"`
	WorkshopTitle  string `json:"workshop_title" validate:"required"`
	Date           string `json:"date" validate:"required"`
	FunnelType     string `json:"funnel_type" validate:"required,oneof=Awareness Engagement Conversion"`
	Description    string `json:"description" validate:"required"`
	IPAddress      string `json:"-"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// parseDate accepts a calendar date or an RFC 3339 timestamp and keeps the UTC calendar day.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Service validates and persists workshop registrations.
type Service struct {
	store    Store
	validate *validation.Validator
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a registrations service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, validate: validation.New(), now: time.Now, logger: logger}
}

// SetClock overrides the timestamp source (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SubmitRegistration validates the trimmed input and stores it with a server timestamp.
func (s *Service) SubmitRegistration(ctx context.Context, in Input) (uuid.UUID, error) {
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return uuid.Nil, err
	}
	date, ok := parseDate(in.Date)
	if !ok {
		return uuid.Nil, apperr.Validation("Invalid date. Use YYYY-MM-DD")
	}

	reg := &models.Registration{
		Name:           in.Name,
		EmployeeNumber: in.EmployeeNumber,
		WorkshopTitle:  in.WorkshopTitle,
		Date:           date,
		FunnelType:     models.FunnelType(in.FunnelType),
		Description:    in.Description,
		SubmittedAt:    s.now().UTC(),
		IPAddress:      in.IPAddress,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		return uuid.Nil, apperr.Store("Failed to save submission to database", err)
	}
	s.logger.Info("workshop submitted",
		zap.String("registration_id", reg.ID.String()),
		zap.String("workshop_title", reg.WorkshopTitle),
	)
	return reg.ID, nil
}

// ListRegistrations returns every registration, newest first.
func (s *Service) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Store("Failed to fetch submissions from database", err)
	}
	if list == nil {
		list = []models.Registration{}
	}
	return list, nil
}

// GetRegistrationByID looks up a registration by its textual ID.
func (s *Service) GetRegistrationByID(ctx context.Context, rawID string) (*models.Registration, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.InvalidArgument("Invalid submission ID")
	}
	reg, err := s.store.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Submission not found")
	}
	if err != nil {
		return nil, apperr.Store("Failed to fetch submission from database", err)
	}
	return reg, nil
}
