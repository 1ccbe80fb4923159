package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
)

// FlagEvaluator derives timing flags from an attendance record, a resolved
// period and "now". The evaluator is pure; all state comes in as arguments.
type FlagEvaluator struct {
	thresholds period.Thresholds
}

func NewFlagEvaluator(thresholds period.Thresholds) *FlagEvaluator {
	return &FlagEvaluator{thresholds: thresholds}
}

// CalculateTimingFlags evaluates rec against p at now. next is the period
// following p, when one connects. Past the period end the late and
// very-late flags partition the elapsed-time axis: late covers
// (end, end+lateGrace], very-late everything beyond the very-late
// threshold.
func (e *FlagEvaluator) CalculateTimingFlags(rec *attendance.Record, p period.Period, next *period.Period, now time.Time) period.TimingFlags {
	th := e.thresholds
	flags := period.TimingFlags{}

	noCheckIn := rec == nil || rec.CheckInTime == nil
	open := rec != nil && rec.IsOpen()

	if noCheckIn {
		earlyStart := p.Start.Add(-th.EarlyCheckInFor(p.Type))
		flags.IsEarlyCheckIn = !now.Before(earlyStart) && now.Before(p.Start)
		flags.IsLateCheckIn = now.Sub(p.Start) > th.LateCheckInFor(p.Type)
	}

	if open {
		lateOut := th.LateCheckOutFor(p.Type)
		pastEnd := now.Sub(p.End)

		flags.IsLateCheckOut = pastEnd > 0 && pastEnd <= lateOut &&
			pastEnd <= th.VeryLateCheckOut
		flags.IsVeryLateCheckOut = pastEnd > th.VeryLateCheckOut
		flags.IsEarlyCheckOut = p.End.Sub(now) > th.EarlyCheckOut

		if pastEnd > 0 {
			flags.LateCheckOutMinutes = int(pastEnd.Minutes())
		}

		if p.ConnectsTo(next) {
			transitionStart := p.End.Add(-th.TransitionWindow)
			flags.RequiresTransition = !now.Before(transitionStart) && !now.After(p.End)
		}
	}

	// Policy threshold beyond which the system force-closes rather than
	// waits for the employee.
	flags.RequiresAutoCompletion = flags.IsVeryLateCheckOut

	return flags
}
