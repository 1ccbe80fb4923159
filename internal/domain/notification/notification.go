package notification

import (
	"context"
	"time"
)

type Type string

const (
	TypeAutoCompleted Type = "attendance_auto_completed"
	TypeMarkedAbsent  Type = "attendance_marked_absent"
	TypeCheckRecorded Type = "attendance_check_recorded"
)

type Event struct {
	EmployeeID string
	Type       Type
	Message    string
	OccurredAt time.Time
	Data       map[string]interface{}
}

// Notifier is the fire-and-forget notification channel. Implementations
// must never block the caller on delivery; errors are swallowed.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}
