package schedule

import (
	"context"
	"time"
)

// ShiftRepository provides read access to shift assignments.
type ShiftRepository interface {
	// GetActiveShift returns the shift assigned to the employee on the
	// given calendar date. Returns ErrShiftNotFound when none applies.
	GetActiveShift(ctx context.Context, employeeID string, date time.Time) (ShiftDefinition, error)
}
