package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role carried in the session token.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// UserLogin is one successful sign-in through the identity provider.
type UserLogin struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}
