package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	scheduleSvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
)

// ValidationInput carries the authoritative state a queued unit re-read
// just before validating. The validator itself is pure.
type ValidationInput struct {
	Request  attendance.CheckInOutRequest
	Now      time.Time
	Latest   *attendance.Record
	Open     *attendance.Record
	Shift    *schedule.ShiftDefinition
	Overtime *overtime.Request
}

// AdmissionValidator makes the allow/deny/pending decision for a requested
// check-in or check-out.
type AdmissionValidator struct {
	windows    *scheduleSvc.WindowManager
	evaluator  *FlagEvaluator
	resolver   *StateResolver
	thresholds period.Thresholds
}

func NewAdmissionValidator(windows *scheduleSvc.WindowManager, thresholds period.Thresholds) *AdmissionValidator {
	return &AdmissionValidator{
		windows:    windows,
		evaluator:  NewFlagEvaluator(thresholds),
		resolver:   NewStateResolver(thresholds),
		thresholds: thresholds,
	}
}

func findPeriod(pt period.Type, candidates ...*period.Period) *period.Period {
	for _, p := range candidates {
		if p != nil && p.Type == pt {
			return p
		}
	}
	return nil
}

func (v *AdmissionValidator) Validate(in ValidationInput) period.AdmissionResult {
	req := in.Request
	now := in.Now

	if !req.OnPremises && req.Reason == nil {
		return period.Denied(attendance.ErrOutsidePremises.Error(), period.TimingFlags{})
	}

	current, next, err := v.windows.ResolvePeriods(in.Shift, in.Overtime, now)
	if err != nil {
		return period.Denied(err.Error(), period.TimingFlags{})
	}
	if current == nil && next == nil {
		return period.Denied(attendance.ErrNoActivePeriod.Error(), period.TimingFlags{})
	}

	if req.IsCheckIn {
		return v.validateCheckIn(in, current, next)
	}
	return v.validateCheckOut(in, current, next)
}

func (v *AdmissionValidator) validateCheckIn(in ValidationInput, current, next *period.Period) period.AdmissionResult {
	req := in.Request
	now := in.Now

	target := findPeriod(req.PeriodType, current, next)
	if target == nil {
		if req.PeriodType == period.TypeOvertime {
			return period.Denied(overtime.ErrOvertimeNotApproved.Error(), period.TimingFlags{})
		}
		return period.Denied(attendance.ErrNoActivePeriod.Error(), period.TimingFlags{})
	}

	if req.PeriodType == period.TypeOvertime && (in.Overtime == nil || !in.Overtime.IsApproved()) {
		return period.Denied(overtime.ErrOvertimeNotApproved.Error(), period.TimingFlags{})
	}

	if in.Open != nil {
		if in.Open.PeriodType == req.PeriodType {
			return period.Denied(attendance.ErrAlreadyCheckedIn.Error(), period.TimingFlags{})
		}

		openPeriod := findPeriod(in.Open.PeriodType, current, next)
		if in.Open.PeriodType == period.TypeOvertime {
			if openPeriod == nil {
				openPeriod = v.openOvertimePeriod(in)
			}
			// A prior open overtime record blocks a new regular check-in
			// unless it is already past the auto-completion threshold.
			if openPeriod != nil {
				openFlags := v.evaluator.CalculateTimingFlags(in.Open, *openPeriod, nil, now)
				if openFlags.RequiresAutoCompletion {
					result := period.Accepted(v.evaluator.CalculateTimingFlags(nil, *target, next, now))
					result.AutoCompleteOvertime = true
					return result
				}
			}
			return period.Denied(attendance.ErrOpenOvertimeBlocks.Error(), period.TimingFlags{})
		}

		// Open regular record, overtime check-in requested: inside the
		// transition interval this is the close-vs-switch choice.
		if openPeriod != nil {
			openFlags := v.evaluator.CalculateTimingFlags(in.Open, *openPeriod, next, now)
			if (openFlags.RequiresTransition || v.isNearTransition(next, now)) && !req.ConfirmTransition {
				state := v.resolver.ResolveState(in.Latest, current, next, now)
				return period.Pending(openFlags, target.Type, state.PendingTransitions)
			}
			if !req.ConfirmTransition {
				return period.Denied(attendance.ErrAlreadyCheckedIn.Error(), openFlags)
			}
		}
	}

	flags := v.evaluator.CalculateTimingFlags(nil, *target, next, now)

	tw := period.TimeWindow{
		Start:      target.Start,
		End:        target.End,
		PeriodType: target.Type,
	}
	if in.Shift != nil {
		tw.GracePeriodMinutes = in.Shift.GracePeriodMinutes
	}
	if !v.windows.IsWithinValidBounds(now, tw) {
		return period.Denied(attendance.ErrOutsideCheckInWindow.Error(), flags)
	}

	result := period.Accepted(flags)
	state := v.resolver.ResolveState(in.Latest, current, next, now)
	result.MissingEntries = state.MissingEntries
	return result
}

func (v *AdmissionValidator) validateCheckOut(in ValidationInput, current, next *period.Period) period.AdmissionResult {
	req := in.Request
	now := in.Now

	if in.Open == nil {
		if in.Latest != nil && in.Latest.CheckStatus == attendance.CheckStatusCheckedOut {
			return period.Denied(attendance.ErrAlreadyCheckedOut.Error(), period.TimingFlags{})
		}
		return period.Denied(attendance.ErrNotCheckedIn.Error(), period.TimingFlags{})
	}

	openPeriod := findPeriod(in.Open.PeriodType, current, next)
	if openPeriod == nil {
		openPeriod = current
	}
	if openPeriod == nil {
		return period.Denied(attendance.ErrNoActivePeriod.Error(), period.TimingFlags{})
	}

	flags := v.evaluator.CalculateTimingFlags(in.Open, *openPeriod, next, now)

	// Near a boundary between adjacent periods the checkout is widened but
	// deferred: the caller confirms whether to end the day or switch into
	// the next period.
	if !req.ConfirmTransition && (flags.RequiresTransition || v.isNearTransition(next, now)) {
		state := v.resolver.ResolveState(in.Latest, current, next, now)
		nextType := period.Type("")
		if next != nil {
			nextType = next.Type
		}
		return period.Pending(flags, nextType, state.PendingTransitions)
	}

	result := period.Accepted(flags)
	state := v.resolver.ResolveState(in.Latest, current, next, now)
	result.MissingEntries = state.MissingEntries
	return result
}

// openOvertimePeriod rebuilds the period of an open overtime record from
// its approved request. The record may belong to a day whose periods no
// longer resolve (an overnight overtime left open into the next morning).
func (v *AdmissionValidator) openOvertimePeriod(in ValidationInput) *period.Period {
	if in.Overtime == nil {
		return nil
	}
	if in.Open.OvertimeID != nil && *in.Open.OvertimeID != in.Overtime.ID {
		return nil
	}

	var loc *time.Location
	if in.Shift != nil {
		loc = in.Shift.Location()
	}
	w, err := v.windows.Calculator().ResolveOvertimeWindow(*in.Overtime, loc)
	if err != nil {
		return nil
	}

	id := in.Overtime.ID
	return &period.Period{
		Type:        period.TypeOvertime,
		Start:       w.Start,
		End:         w.End,
		IsOvernight: w.IsOvernight,
		OvertimeID:  &id,
	}
}

// isNearTransition reports whether now falls inside
// [nextStart - before, nextStart + after).
func (v *AdmissionValidator) isNearTransition(next *period.Period, now time.Time) bool {
	if next == nil {
		return false
	}
	lo := next.Start.Add(-v.thresholds.NearTransitionBefore)
	hi := next.Start.Add(v.thresholds.NearTransitionAfter)
	return !now.Before(lo) && now.Before(hi)
}
