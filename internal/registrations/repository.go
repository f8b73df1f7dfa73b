package registrations

import (
	"context"

	"github.com/google/uuid"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/database"
)

const registrationColumns = `id, name, employee_number, workshop_title, date, funnel_type, description, submitted_at, ip_address`

// Repository handles workshop registration persistence.
type Repository struct {
	db database.DB
}

// NewRepository creates a registrations repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a registration and sets its store-assigned ID.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO workshops (name, employee_number, workshop_title, date, funnel_type, description, submitted_at, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	return r.db.QueryRow(ctx, q,
		reg.Name, reg.EmployeeNumber, reg.WorkshopTitle, reg.Date, string(reg.FunnelType),
		reg.Description, reg.SubmittedAt, reg.IPAddress,
	).Scan(&reg.ID)
}

// GetByID returns a registration by ID; pgx.ErrNoRows when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	q := `SELECT ` + registrationColumns + ` FROM workshops WHERE id = $1`
	var reg models.Registration
	var funnel string
	err := r.db.QueryRow(ctx, q, id).Scan(&reg.ID, &reg.Name, &reg.EmployeeNumber, &reg.WorkshopTitle,
		&reg.Date, &funnel, &reg.Description, &reg.SubmittedAt, &reg.IPAddress)
	if err != nil {
		return nil, err
	}
	reg.FunnelType = models.FunnelType(funnel)
	return &reg, nil
}

// List returns all registrations, newest submission first.
func (r *Repository) List(ctx context.Context) ([]models.Registration, error) {
	rows, err := r.db.Query(ctx, `SELECT `+registrationColumns+` FROM workshops ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Registration{}
	for rows.Next() {
		var reg models.Registration
		var funnel string
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.EmployeeNumber, &reg.WorkshopTitle,
			&reg.Date, &funnel, &reg.Description, &reg.SubmittedAt, &reg.IPAddress); err != nil {
			return nil, err
		}
		reg.FunnelType = models.FunnelType(funnel)
		list = append(list, reg)
	}
	return list, rows.Err()
}
