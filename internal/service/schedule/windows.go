package schedule

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
)

// WindowManager builds the full ordered set of validation windows for a
// shift plus optional approved overtime, and validates instants against
// them.
type WindowManager struct {
	calc       *WindowCalculator
	thresholds period.Thresholds
}

func NewWindowManager(thresholds period.Thresholds) *WindowManager {
	return &WindowManager{
		calc:       NewWindowCalculator(thresholds),
		thresholds: thresholds,
	}
}

func (m *WindowManager) Calculator() *WindowCalculator {
	return m.calc
}

type CalcOptions struct {
	// Timestamp is the reference instant that picks the anchor date.
	Timestamp time.Time

	// Overtime is the approved overtime request for the day, if any.
	Overtime *overtime.Request
}

// regularWindow picks the shift window covering Timestamp: for overnight
// shifts the previous day's window still applies until its late-checkout
// grace runs out.
func (m *WindowManager) regularWindow(shift schedule.ShiftDefinition, ts time.Time) (period.Window, error) {
	local := ts.In(shift.Location())

	if shift.IsOvernight() {
		yesterday, err := m.calc.ResolveWindow(shift, local.AddDate(0, 0, -1))
		if err != nil {
			return period.Window{}, err
		}
		if !ts.After(yesterday.End.Add(m.thresholds.LateCheckOut)) {
			return yesterday, nil
		}
	}

	return m.calc.ResolveWindow(shift, local)
}

// CalculateTimeWindows returns every validation window for the day, sorted
// by start time: the regular window and its early-checkin, late-checkin and
// late-checkout satellites, the overtime window when approved, and a
// transition window wherever two window boundaries coincide exactly.
func (m *WindowManager) CalculateTimeWindows(shift schedule.ShiftDefinition, opts CalcOptions) ([]period.TimeWindow, error) {
	rw, err := m.regularWindow(shift, opts.Timestamp)
	if err != nil {
		return nil, err
	}

	grace := shift.GracePeriodMinutes

	regular := period.TimeWindow{
		Start:              rw.Start,
		End:                rw.End,
		PeriodType:         period.TypeRegular,
		GracePeriodMinutes: grace,
	}

	windows := []period.TimeWindow{
		regular,
		{
			Start:          rw.Start.Add(-m.thresholds.EarlyCheckIn),
			End:            rw.Start,
			PeriodType:     period.TypeRegular,
			IsEarlyCheckin: true,
		},
		{
			Start:         rw.Start,
			End:           rw.Start.Add(m.thresholds.LateCheckIn),
			PeriodType:    period.TypeRegular,
			IsLateCheckin: true,
		},
		{
			Start:          rw.End,
			End:            rw.End.Add(m.thresholds.LateCheckOut),
			PeriodType:     period.TypeRegular,
			IsLateCheckout: true,
		},
	}

	if opts.Overtime != nil && opts.Overtime.IsApproved() {
		ot := *opts.Overtime
		otw, err := m.calc.ResolveOvertimeWindow(ot, shift.Location())
		if err != nil {
			return nil, err
		}
		windows = append(windows, period.TimeWindow{
			Start:              otw.Start,
			End:                otw.End,
			PeriodType:         period.TypeOvertime,
			GracePeriodMinutes: grace,
			LinkedOvertimeID:   &ot.ID,
		})
	}

	windows = append(windows, m.transitionWindows(windows)...)

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	return windows, nil
}

// transitionWindows inserts a window bridging every pair of period windows
// whose boundaries coincide exactly. Its span is
// [boundary - transition grace, boundary + late checkout grace], tagged with
// the following period's type.
func (m *WindowManager) transitionWindows(windows []period.TimeWindow) []period.TimeWindow {
	var periodWindows []period.TimeWindow
	for _, w := range windows {
		if !w.IsEarlyCheckin && !w.IsLateCheckin && !w.IsLateCheckout && !w.IsTransition {
			periodWindows = append(periodWindows, w)
		}
	}

	var transitions []period.TimeWindow
	for _, from := range periodWindows {
		for _, to := range periodWindows {
			if from == to || !from.End.Equal(to.Start) {
				continue
			}
			transitions = append(transitions, period.TimeWindow{
				Start:        from.End.Add(-m.thresholds.TransitionWindow),
				End:          from.End.Add(m.thresholds.LateCheckOut),
				PeriodType:   from.PeriodType,
				IsTransition: true,
				IsFlexible:   true,
				TransitionTo: to.PeriodType,
			})
		}
	}
	return transitions
}

// ValidateTimeWindow derives the early/late position of now relative to a
// window. Overtime windows use the narrower overtime graces.
func (m *WindowManager) ValidateTimeWindow(now time.Time, w period.TimeWindow) period.WindowValidation {
	early := m.thresholds.EarlyCheckInFor(w.PeriodType)
	lateIn := m.thresholds.LateCheckInFor(w.PeriodType)
	lateOut := m.thresholds.LateCheckOutFor(w.PeriodType)

	v := period.WindowValidation{}

	if now.Before(w.Start) {
		v.IsEarly = true
		v.MinutesEarly = int(w.Start.Sub(now).Minutes())
		v.IsWithinEarlyWindow = !now.Before(w.Start.Add(-early))
	} else if now.Sub(w.Start) > lateIn {
		v.IsLate = true
		v.MinutesLate = int(now.Sub(w.Start).Minutes())
	}

	v.IsWithinLateWindow = now.After(w.End) && !now.After(w.End.Add(lateOut))
	v.IsValid = m.IsWithinValidBounds(now, w)

	return v
}

// IsWithinValidBounds reports whether now is acceptable for the window.
// For the plain regular window the accepted set is
// [start-early, start+lateCheckIn] union [start, end]; every other window
// accepts [start-grace, end+grace]. Widening any grace can only grow the
// accepted interval.
func (m *WindowManager) IsWithinValidBounds(now time.Time, w period.TimeWindow) bool {
	plainRegular := w.PeriodType == period.TypeRegular &&
		!w.IsTransition && !w.IsEarlyCheckin && !w.IsLateCheckin && !w.IsLateCheckout

	if plainRegular {
		arrival := !now.Before(w.Start.Add(-m.thresholds.EarlyCheckIn)) &&
			!now.After(w.Start.Add(m.thresholds.LateCheckIn))
		working := !now.Before(w.Start) && !now.After(w.End)
		return arrival || working
	}

	grace := time.Duration(w.GracePeriodMinutes) * time.Minute
	return !now.Before(w.Start.Add(-grace)) && !now.After(w.End.Add(grace))
}

// ResolvePeriods builds the day's periods from the shift and approved
// overtime and splits them into the currently active one and the next one.
func (m *WindowManager) ResolvePeriods(shift *schedule.ShiftDefinition, ot *overtime.Request, now time.Time) (current, next *period.Period, err error) {
	var periods []period.Period

	if shift != nil {
		local := now.In(shift.Location())
		anchors := []time.Time{local}
		if shift.IsOvernight() {
			anchors = append(anchors, local.AddDate(0, 0, -1))
		}
		for _, anchor := range anchors {
			if !shift.IsWorkDay(anchor.Weekday()) {
				continue
			}
			w, werr := m.calc.ResolveWindow(*shift, anchor)
			if werr != nil {
				return nil, nil, werr
			}
			periods = append(periods, period.Period{
				Type:        period.TypeRegular,
				Start:       w.Start,
				End:         w.End,
				IsOvernight: w.IsOvernight,
			})
		}
	}

	if ot != nil && ot.IsApproved() {
		var loc *time.Location
		if shift != nil {
			loc = shift.Location()
		}
		w, werr := m.calc.ResolveOvertimeWindow(*ot, loc)
		if werr != nil {
			return nil, nil, werr
		}
		id := ot.ID
		periods = append(periods, period.Period{
			Type:        period.TypeOvertime,
			Start:       w.Start,
			End:         w.End,
			IsOvernight: w.IsOvernight,
			OvertimeID:  &id,
		})
	}

	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})

	for i := range periods {
		p := periods[i]
		lo := p.Start.Add(-m.thresholds.EarlyCheckInFor(p.Type))
		hi := p.End.Add(m.thresholds.LateCheckOutFor(p.Type))
		if current == nil && !now.Before(lo) && !now.After(hi) {
			current = &periods[i]
			continue
		}
		if next == nil && periods[i].Start.After(now) {
			next = &periods[i]
		}
	}

	// The period after the current one is "next" even when its widened
	// bounds already include now (back-to-back overtime).
	if current != nil && next == nil {
		for i := range periods {
			if periods[i].Start.After(current.Start) && periods[i] != *current {
				next = &periods[i]
				break
			}
		}
	}

	return current, next, nil
}
