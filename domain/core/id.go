package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() uuid.UUID {
	// Falls back to v4 if v7 fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id
}

// ParseID parses a record identifier. Surrounding whitespace is trimmed.
func ParseID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fmt.Errorf("%w: id cannot be empty", ErrInvalidInput)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a valid id", ErrInvalidInput, s)
	}
	return id, nil
}

// IsID reports whether s parses as a record identifier
func IsID(s string) bool {
	_, err := ParseID(s)
	return err == nil
}
