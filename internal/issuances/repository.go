package issuances

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/database"
)

const issuanceColumns = `id, name, email, school, workshop_title, kelas, handphone, created_at`

// Repository handles certificate issuance persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates an issuances repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an issuance and sets its ID. CreatedAt is taken from the record.
func (r *Repository) Create(ctx context.Context, iss *models.CertificateIssuance) error {
	const q = `INSERT INTO certificates (name, email, school, workshop_title, kelas, handphone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	return r.db.QueryRow(ctx, q,
		iss.Name, iss.Email, iss.Institution, iss.WorkshopTitle, iss.ClassLabel, iss.Phone, iss.CreatedAt,
	).Scan(&iss.ID)
}

// GetByID returns an issuance by ID; pgx.ErrNoRows when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CertificateIssuance, error) {
	var iss models.CertificateIssuance
	err := r.db.QueryRow(ctx, `SELECT `+issuanceColumns+` FROM certificates WHERE id = $1`, id).
		Scan(&iss.ID, &iss.Name, &iss.Email, &iss.Institution, &iss.WorkshopTitle, &iss.ClassLabel, &iss.Phone, &iss.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &iss, nil
}

// List returns all issuances, newest first.
func (r *Repository) List(ctx context.Context) ([]models.CertificateIssuance, error) {
	rows, err := r.db.Query(ctx, `SELECT `+issuanceColumns+` FROM certificates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListByWorkshopTitle returns the issuances for one workshop, newest first.
func (r *Repository) ListByWorkshopTitle(ctx context.Context, title string) ([]models.CertificateIssuance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+issuanceColumns+` FROM certificates WHERE workshop_title = $1 ORDER BY created_at DESC`, title)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ExistsByEmailAndWorkshop reports whether a participant already holds a certificate for a workshop.
func (r *Repository) ExistsByEmailAndWorkshop(ctx context.Context, email, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM certificates WHERE lower(email) = lower($1) AND workshop_title = $2)`,
		email, title,
	).Scan(&exists)
	return exists, err
}

func collect(rows pgx.Rows) ([]models.CertificateIssuance, error) {
	defer rows.Close()
	list := []models.CertificateIssuance{}
	for rows.Next() {
		var iss models.CertificateIssuance
		if err := rows.Scan(&iss.ID, &iss.Name, &iss.Email, &iss.Institution, &iss.WorkshopTitle,
			&iss.ClassLabel, &iss.Phone, &iss.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, iss)
	}
	return list, rows.Err()
}
