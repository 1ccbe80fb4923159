package schedule

import "errors"

// Shift domain errors
var (
	ErrShiftNotFound    = errors.New("no shift found for this employee and date")
	ErrInvalidShiftTime = errors.New("shift time must be in HH:MM format")
)
