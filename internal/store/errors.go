package store

import (
	"errors"
	"strings"
)

var (
	// ErrEmailConflict is returned when a user email already exists
	ErrEmailConflict = errors.New("email already exists")

	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrArtifactConsumed is returned by ConsumeArtifact when the row was
	// already deleted by a concurrent request (0 rows affected).
	ErrArtifactConsumed = errors.New("artifact already consumed")
)

// isUniqueViolation matches driver-specific unique constraint errors for
// both sqlite and postgres, which GORM does not always translate.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
