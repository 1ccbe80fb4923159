package attendance

import "errors"

// Attendance domain errors
var (
	// Admission errors
	ErrAlreadyCheckedIn     = errors.New("you have already checked in for this period")
	ErrNotCheckedIn         = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut    = errors.New("you have already checked out")
	ErrOutsidePremises      = errors.New("you are outside the work premises")
	ErrNoActivePeriod       = errors.New("no active or upcoming work period")
	ErrOpenOvertimeBlocks   = errors.New("an open overtime session blocks a new regular check-in")
	ErrOutsideCheckInWindow = errors.New("outside the allowed check-in window")

	// Request errors
	ErrFutureCheckTime = errors.New("check time cannot be in the future")
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrUnauthorized    = errors.New("unauthorized to access this attendance record")
)
