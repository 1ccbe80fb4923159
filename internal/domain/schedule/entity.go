package schedule

import "time"

// ShiftDefinition describes a recurring work shift by time of day.
// A shift is overnight iff EndTime sorts before StartTime lexically; the
// resolved end then lands exactly one calendar day after the start date.
type ShiftDefinition struct {
	ID                 string
	Name               string
	StartTime          string // "15:04"
	EndTime            string // "15:04"
	WorkDays           []time.Weekday
	GracePeriodMinutes int
	Timezone           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOvernight reports whether the shift crosses midnight.
func (s ShiftDefinition) IsOvernight() bool {
	return s.EndTime < s.StartTime
}

// IsWorkDay reports whether the shift applies on the given weekday.
func (s ShiftDefinition) IsWorkDay(d time.Weekday) bool {
	for _, wd := range s.WorkDays {
		if wd == d {
			return true
		}
	}
	return false
}

// Location returns the shift's timezone, falling back to UTC when the
// stored name does not resolve.
func (s ShiftDefinition) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil || s.Timezone == "" {
		return time.UTC
	}
	return loc
}
