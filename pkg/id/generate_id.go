package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (a random UUID without separators).
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
