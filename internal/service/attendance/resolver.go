package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
)

// StateResolver computes missing entries and pending transitions from the
// latest attendance record and the current/next period. Its output drives
// the auto-check-in/auto-check-out signaling consumed by the admission
// validator.
type StateResolver struct {
	thresholds period.Thresholds
}

func NewStateResolver(thresholds period.Thresholds) *StateResolver {
	return &StateResolver{thresholds: thresholds}
}

// PeriodState is the resolver's view of where the employee stands.
type PeriodState struct {
	MissingEntries     []period.MissingEntry
	PendingTransitions []period.PendingTransition
}

func (r *StateResolver) ResolveState(latest *attendance.Record, current, next *period.Period, now time.Time) PeriodState {
	state := PeriodState{}

	if current != nil {
		started := now.After(current.Start.Add(r.thresholds.LateCheckInFor(current.Type)))
		hasCheckIn := latest != nil && latest.CheckInTime != nil &&
			latest.PeriodType == current.Type && latest.CheckOutTime == nil

		if started && !hasCheckIn && now.Before(current.End) {
			state.MissingEntries = append(state.MissingEntries, period.MissingEntry{
				Kind:       "check_in",
				PeriodType: current.Type,
				ExpectedAt: current.Start,
			})
		}

		if latest != nil && latest.IsOpen() && now.After(current.End) {
			state.MissingEntries = append(state.MissingEntries, period.MissingEntry{
				Kind:       "check_out",
				PeriodType: latest.PeriodType,
				ExpectedAt: current.End,
			})
		}
	}

	if current != nil && current.ConnectsTo(next) {
		transitionStart := current.End.Add(-r.thresholds.TransitionWindow)
		if !now.Before(transitionStart) {
			completed := latest != nil && latest.PeriodType == next.Type &&
				latest.CheckInTime != nil
			state.PendingTransitions = append(state.PendingTransitions, period.PendingTransition{
				FromType:       current.Type,
				ToType:         next.Type,
				TransitionTime: current.End,
				IsCompleted:    completed,
			})
		}
	}

	return state
}
