package models

import (
	"time"

	"github.com/google/uuid"
)

// FunnelType is the marketing funnel stage a workshop targets.
type FunnelType string

const (
	FunnelAwareness  FunnelType = "Awareness"
	FunnelEngagement FunnelType = "Engagement"
	FunnelConversion FunnelType = "Conversion"
)

// Registration is a workshop submitted by an instructor. Immutable once stored.
type Registration struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	EmployeeNumber string     `json:"employee_number"`
	WorkshopTitle  string     `json:"workshop_title"`
	Date           time.Time  `json:"date"`
	FunnelType     FunnelType `json:"funnel_type"`
	Description    string     `json:"description"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	IPAddress      string     `json:"ip_address"`
}
