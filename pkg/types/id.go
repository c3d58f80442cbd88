package types

import "github.com/google/uuid"

// NewID returns a new UUID v7 string, falling back to a random v4 UUID if
// v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
