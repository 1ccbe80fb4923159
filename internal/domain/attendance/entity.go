package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
)

// State is the day-level classification of a record.
type State string

const (
	StatePresent    State = "present"
	StateAbsent     State = "absent"
	StateIncomplete State = "incomplete"
	StateOff        State = "off"
	StateHoliday    State = "holiday"
)

// CheckStatus is the check-in/out lifecycle of a record.
// Pending -> CheckedIn -> CheckedOut, CheckedOut is terminal.
type CheckStatus string

const (
	CheckStatusPending    CheckStatus = "pending"
	CheckStatusCheckedIn  CheckStatus = "checked_in"
	CheckStatusCheckedOut CheckStatus = "checked_out"
)

// OvertimeSubState tracks overtime progress on overtime-period records.
// NotStarted -> InProgress -> Completed.
type OvertimeSubState string

const (
	OvertimeNotStarted OvertimeSubState = "not_started"
	OvertimeInProgress OvertimeSubState = "in_progress"
	OvertimeCompleted  OvertimeSubState = "completed"
)

// Record is one attendance entry, keyed by
// (EmployeeID, Date, PeriodType, Sequence). Sequence strictly increases per
// (employee, date, period type); a new sequence is created when the
// employee starts a different period type on the same day.
type Record struct {
	ID               string
	EmployeeID       string
	Date             time.Time // work day, not a timestamp
	PeriodType       period.Type
	Sequence         int
	CheckInTime      *time.Time
	CheckOutTime     *time.Time
	State            State
	CheckStatus      CheckStatus
	OvertimeSubState OvertimeSubState
	OvertimeID       *string
	IsManualEntry    bool
	IsDayOff         bool
	AutoCompleted    bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsOpen reports whether the record is checked in but not yet checked out.
// At most one open record may exist per employee at any instant.
func (r Record) IsOpen() bool {
	return r.CheckStatus == CheckStatusCheckedIn && r.CheckOutTime == nil
}
