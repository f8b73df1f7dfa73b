package issuances

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/apperr"
	"github.com/stem-workshop/certificates/pkg/queue"
	"github.com/stem-workshop/certificates/pkg/validation"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, iss *models.CertificateIssuance) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CertificateIssuance, error)
	List(ctx context.Context) ([]models.CertificateIssuance, error)
	ListByWorkshopTitle(ctx context.Context, title string) ([]models.CertificateIssuance, error)
	ExistsByEmailAndWorkshop(ctx context.Context, email, title string) (bool, error)
}

// Archiver schedules a certificate for upload to object storage.
type Archiver interface {
	EnqueueCertificateArchive(ctx context.Context, payload queue.CertificateArchivePayload) error
}

// RegistrationLookup resolves a workshop registration by its textual ID.
type RegistrationLookup interface {
	GetRegistrationByID(ctx context.Context, rawID string) (*models.Registration, error)
}

// Input is the body of POST /submit-certificate.
type Input struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	School    string `json:"school" validate:"required"`
	Workshop  string `json:"workshop"`
	Kelas     string `json:"kelas"`
	Handphone string `json:"handphone"`
}

// Options controls issuance policy.
type Options struct {
	// AllowDuplicates keeps every issuance; false rejects a repeat for the same email and workshop.
	AllowDuplicates bool
}

// Service validates and records certificate issuances.
type Service struct {
	store         Store
	registrations RegistrationLookup
	archiver      Archiver
	opts          Options
	validate      *validation.Validator
	now           func() time.Time
	pick          func(n int) int
	logger        *zap.Logger
}

// NewService creates an issuances service. registrations and archiver may be nil.
func NewService(store Store, registrations RegistrationLookup, archiver Archiver, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:         store,
		registrations: registrations,
		archiver:      archiver,
		opts:          opts,
		validate:      validation.New(),
		now:           time.Now,
		pick:          rand.IntN,
		logger:        logger,
	}
}

// SetClock overrides the timestamp source (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetPicker overrides the random index source used by DrawParticipant (tests).
func (s *Service) SetPicker(pick func(n int) int) { s.pick = pick }

// SubmitCertificateIssuance validates the trimmed input and records it.
func (s *Service) SubmitCertificateIssuance(ctx context.Context, in Input) (uuid.UUID, error) {
	validation.TrimStrings(&in)
	if err := s.validate.Struct(in); err != nil {
		return uuid.Nil, err
	}

	if !s.opts.AllowDuplicates {
		exists, err := s.store.ExistsByEmailAndWorkshop(ctx, in.Email, in.Workshop)
		if err != nil {
			return uuid.Nil, apperr.Store("Failed to save certificate to database", err)
		}
		if exists {
			return uuid.Nil, apperr.Conflict("Certificate already issued for this email and workshop")
		}
	}

	iss := &models.CertificateIssuance{
		Name:          in.Name,
		Email:         in.Email,
		Institution:   in.School,
		WorkshopTitle: in.Workshop,
		ClassLabel:    in.Kelas,
		Phone:         in.Handphone,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Create(ctx, iss); err != nil {
		return uuid.Nil, apperr.Store("Failed to save certificate to database", err)
	}
	s.logger.Info("certificate issued",
		zap.String("issuance_id", iss.ID.String()),
		zap.String("workshop_title", iss.WorkshopTitle),
	)
	s.enqueueArchive(ctx, iss)
	return iss.ID, nil
}

func (s *Service) enqueueArchive(ctx context.Context, iss *models.CertificateIssuance) {
	if s.archiver == nil {
		return
	}
	err := s.archiver.EnqueueCertificateArchive(ctx, queue.CertificateArchivePayload{
		IssuanceID:      iss.ID,
		ParticipantName: iss.Name,
		WorkshopTitle:   iss.WorkshopTitle,
		InstitutionName: iss.Institution,
		IssuedAt:        iss.CreatedAt,
	})
	if err != nil {
		s.logger.Error("enqueue certificate archive failed", zap.Error(err), zap.String("issuance_id", iss.ID.String()))
	}
}

// ListCertificateIssuances returns every issuance, newest first.
func (s *Service) ListCertificateIssuances(ctx context.Context) ([]models.CertificateIssuance, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Store("Failed to fetch submissions from database", err)
	}
	return nonNil(list), nil
}

// GetCertificateIssuancesByWorkshopTitle returns a workshop's issuances. An empty result is not an error.
func (s *Service) GetCertificateIssuancesByWorkshopTitle(ctx context.Context, title string) ([]models.CertificateIssuance, error) {
	list, err := s.store.ListByWorkshopTitle(ctx, title)
	if err != nil {
		return nil, apperr.Store("Failed to fetch certificate from database", err)
	}
	return nonNil(list), nil
}

// GetCertificateIssuance looks up an issuance by its textual ID.
func (s *Service) GetCertificateIssuance(ctx context.Context, rawID string) (*models.CertificateIssuance, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.InvalidArgument("Invalid certificate ID")
	}
	iss, err := s.store.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Certificate not found")
	}
	if err != nil {
		return nil, apperr.Store("Failed to fetch certificate from database", err)
	}
	return iss, nil
}

// DrawParticipant picks one issuance of the registration's workshop uniformly at random.
func (s *Service) DrawParticipant(ctx context.Context, registrationID string) (*models.CertificateIssuance, error) {
	if s.registrations == nil {
		return nil, apperr.New(apperr.KindInternal, "registration lookup not configured")
	}
	reg, err := s.registrations.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	list, err := s.GetCertificateIssuancesByWorkshopTitle(ctx, reg.WorkshopTitle)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("No participants for this workshop yet")
	}
	winner := list[s.pick(len(list))]
	s.logger.Info("participant drawn",
		zap.String("registration_id", reg.ID.String()),
		zap.String("issuance_id", winner.ID.String()),
		zap.Int("candidates", len(list)),
	)
	return &winner, nil
}

func nonNil(list []models.CertificateIssuance) []models.CertificateIssuance {
	if list == nil {
		return []models.CertificateIssuance{}
	}
	return list
}
