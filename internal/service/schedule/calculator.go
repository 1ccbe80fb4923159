package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// WindowCalculator resolves a shift definition's time-of-day strings into
// absolute timestamps anchored to a calendar date. An overnight boundary is
// always represented by adding exactly one calendar day to the naive end
// timestamp, never by hour-wrapping.
type WindowCalculator struct {
	thresholds period.Thresholds
}

func NewWindowCalculator(thresholds period.Thresholds) *WindowCalculator {
	return &WindowCalculator{thresholds: thresholds}
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", schedule.ErrInvalidShiftTime, s)
	}
	return t.Hour(), t.Minute(), nil
}

// ResolveWindow anchors the shift to the given reference date.
func (c *WindowCalculator) ResolveWindow(shift schedule.ShiftDefinition, date time.Time) (period.Window, error) {
	loc := shift.Location()

	sh, sm, err := parseTimeOfDay(shift.StartTime)
	if err != nil {
		return period.Window{}, err
	}
	eh, em, err := parseTimeOfDay(shift.EndTime)
	if err != nil {
		return period.Window{}, err
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), sh, sm, 0, 0, loc)
	end := time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, loc)

	overnight := shift.IsOvernight()
	if overnight {
		end = end.AddDate(0, 0, 1)
	}

	return period.Window{Start: start, End: end, IsOvernight: overnight}, nil
}

// ResolveOvertimeWindow anchors an approved overtime request strictly to
// its own Date field. Early-morning overtime preceding a shift therefore
// lands on the calendar day the approval names, regardless of wall clock.
func (c *WindowCalculator) ResolveOvertimeWindow(req overtime.Request, loc *time.Location) (period.Window, error) {
	if loc == nil {
		loc = time.UTC
	}

	sh, sm, err := parseTimeOfDay(req.StartTime)
	if err != nil {
		return period.Window{}, err
	}
	eh, em, err := parseTimeOfDay(req.EndTime)
	if err != nil {
		return period.Window{}, err
	}

	date := req.Date
	start := time.Date(date.Year(), date.Month(), date.Day(), sh, sm, 0, 0, loc)
	end := time.Date(date.Year(), date.Month(), date.Day(), eh, em, 0, 0, loc)

	overnight := req.IsOvernight()
	if overnight {
		end = end.AddDate(0, 0, 1)
	}

	return period.Window{Start: start, End: end, IsOvernight: overnight}, nil
}

// WindowOptions widen the shift window with the configured graces.
type WindowOptions struct {
	IncludeEarly bool
	IncludeLate  bool
}

// candidateWindows resolves the shift for now's date and, for overnight
// shifts, the previous date too. At 05:30 an employee on a 22:00-06:00
// shift is inside yesterday's window, not outside shift hours.
func (c *WindowCalculator) candidateWindows(shift schedule.ShiftDefinition, now time.Time) ([]period.Window, error) {
	local := now.In(shift.Location())

	today, err := c.ResolveWindow(shift, local)
	if err != nil {
		return nil, err
	}

	windows := []period.Window{today}
	if shift.IsOvernight() {
		yesterday, err := c.ResolveWindow(shift, local.AddDate(0, 0, -1))
		if err != nil {
			return nil, err
		}
		windows = append(windows, yesterday)
	}
	return windows, nil
}

// IsWithinShiftWindow reports whether now falls inside the shift window,
// optionally widened by the early check-in and late checkout graces.
func (c *WindowCalculator) IsWithinShiftWindow(shift schedule.ShiftDefinition, now time.Time, opts WindowOptions) (bool, error) {
	windows, err := c.candidateWindows(shift, now)
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		lo := w.Start
		hi := w.End
		if opts.IncludeEarly {
			lo = lo.Add(-c.thresholds.EarlyCheckIn)
		}
		if opts.IncludeLate {
			hi = hi.Add(c.thresholds.LateCheckOut)
		}
		if !now.Before(lo) && !now.After(hi) {
			return true, nil
		}
	}
	return false, nil
}

// IsOutsideShiftHours reports whether now is outside the raw shift window.
func (c *WindowCalculator) IsOutsideShiftHours(shift schedule.ShiftDefinition, now time.Time) (bool, error) {
	inside, err := c.IsWithinShiftWindow(shift, now, WindowOptions{})
	if err != nil {
		return false, err
	}
	return !inside, nil
}
