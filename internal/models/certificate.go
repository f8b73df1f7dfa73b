package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificateIssuance records one generated certificate. Append-only.
type CertificateIssuance struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Institution   string    `json:"school"`
	WorkshopTitle string    `json:"workshop_title"`
	ClassLabel    string    `json:"kelas"`
	Phone         string    `json:"handphone"`
	CreatedAt     time.Time `json:"created_at"`
}
