package period

import "time"

// Type identifies the kind of work period a record or window belongs to.
type Type string

const (
	TypeRegular  Type = "regular"
	TypeOvertime Type = "overtime"
)

var TypeValues = []string{
	string(TypeRegular),
	string(TypeOvertime),
}

// Period is a resolved work obligation for a concrete calendar date:
// the shift or approved overtime translated into absolute timestamps.
type Period struct {
	Type        Type
	Start       time.Time
	End         time.Time
	IsOvernight bool
	OvertimeID  *string
}

// Contains reports whether t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// ConnectsTo reports whether next starts exactly where this period ends.
// Transition windows exist only at exactly coinciding boundaries.
func (p Period) ConnectsTo(next *Period) bool {
	return next != nil && p.End.Equal(next.Start)
}

// Window is a plain resolved span, before validation tags are applied.
type Window struct {
	Start       time.Time
	End         time.Time
	IsOvernight bool
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
