package store

import (
	"time"

	"github.com/google/uuid"
)

// newID returns a time-ordered UUIDv7 so primary keys sort by creation.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// now is truncated to microseconds so every driver round-trips it exactly.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
