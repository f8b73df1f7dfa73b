package auth

import (
	"context"

	"github.com/stem-workshop/certificates/internal/models"
	"github.com/stem-workshop/certificates/pkg/database"
)

// Repository records successful sign-ins.
type Repository struct {
	db database.DB
}

// NewRepository creates an auth repository.
func NewRepository(db database.DB) *Repository {
	return &Repository{db: db}
}

// RecordLogin appends a login row and sets its ID and timestamp.
func (r *Repository) RecordLogin(ctx context.Context, l *models.UserLogin) error {
	const q = `INSERT INTO user_logins (subject, email, name, picture)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, q, l.Subject, l.Email, l.Name, l.Picture).Scan(&l.ID, &l.CreatedAt)
}
