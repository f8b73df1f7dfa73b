package auth

import (
	"fmt"
	"strings"

	"github.com/stem-workshop/certificates/pkg/apperr"
	"github.com/stem-workshop/certificates/pkg/utils"
)

// Gate checks the shared admin code against a bcrypt hash.
type Gate struct {
	hash string
}

// NewGate builds a gate from a precomputed hash, or hashes plain when hash is empty.
func NewGate(plain, hash string) (*Gate, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		if plain == "" {
			return nil, fmt.Errorf("admin secret code is not configured")
		}
		h, err := utils.HashSecret(plain)
		if err != nil {
			return nil, fmt.Errorf("hash admin secret code: %w", err)
		}
		hash = h
	}
	return &Gate{hash: hash}, nil
}

// Check validates a submitted code.
func (g *Gate) Check(code string) error {
	if code == "" {
		return apperr.Validation("Kode Rahasia is required")
	}
	if !utils.CheckSecret(code, g.hash) {
		return apperr.Validation("Kode Rahasia invalid")
	}
	return nil
}
