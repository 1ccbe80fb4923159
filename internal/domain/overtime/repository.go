package overtime

import (
	"context"
	"time"
)

// Repository provides read access to approved overtime requests.
type Repository interface {
	// GetApprovedForDate returns the approved overtime request anchored to
	// the given calendar date, or nil when none exists.
	GetApprovedForDate(ctx context.Context, employeeID string, date time.Time) (*Request, error)

	// GetByID returns a request regardless of status.
	GetByID(ctx context.Context, id string) (Request, error)
}
