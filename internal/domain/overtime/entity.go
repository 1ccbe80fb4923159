package overtime

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is an overtime request. Once approved it is immutable as far as
// the engine is concerned: the engine consumes it, never mutates it.
// The Date field is the calendar day the overtime window anchors to, even
// for early-morning overtime that precedes the regular shift.
type Request struct {
	ID                 string
	EmployeeID         string
	Date               time.Time
	StartTime          string // "15:04"
	EndTime            string // "15:04"
	IsDayOffOvertime   bool
	IsInsideShiftHours bool
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOvernight reports whether the overtime window crosses midnight.
func (r Request) IsOvernight() bool {
	return r.EndTime < r.StartTime
}

func (r Request) IsApproved() bool {
	return r.Status == StatusApproved
}
