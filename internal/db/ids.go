package db

import "github.com/google/uuid"

// NewID generates a random UUIDv4 identifier.
func NewID() string {
	return uuid.NewString()
}
