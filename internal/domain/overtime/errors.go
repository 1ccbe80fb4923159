package overtime

import "errors"

// Overtime domain errors
var (
	ErrOvertimeNotFound    = errors.New("overtime request not found")
	ErrOvertimeNotApproved = errors.New("no approved overtime request for this date")
)
