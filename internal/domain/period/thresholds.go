package period

import "time"

// Thresholds are the grace durations that shape every validation window.
// Overtime periods get their own (narrower) check-in and checkout graces.
type Thresholds struct {
	EarlyCheckIn     time.Duration
	LateCheckIn      time.Duration
	LateCheckOut     time.Duration
	EarlyCheckOut    time.Duration
	VeryLateCheckOut time.Duration
	TransitionWindow time.Duration

	OvertimeEarlyCheckIn time.Duration
	OvertimeLateCheckIn  time.Duration
	OvertimeLateCheckOut time.Duration

	NearTransitionBefore time.Duration
	NearTransitionAfter  time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		EarlyCheckIn:     60 * time.Minute,
		LateCheckIn:      15 * time.Minute,
		LateCheckOut:     60 * time.Minute,
		EarlyCheckOut:    15 * time.Minute,
		VeryLateCheckOut: 60 * time.Minute,
		TransitionWindow: 15 * time.Minute,

		OvertimeEarlyCheckIn: 15 * time.Minute,
		OvertimeLateCheckIn:  10 * time.Minute,
		OvertimeLateCheckOut: 30 * time.Minute,

		NearTransitionBefore: 15 * time.Minute,
		NearTransitionAfter:  30 * time.Minute,
	}
}

// EarlyCheckInFor returns the early check-in grace for the given period type.
func (t Thresholds) EarlyCheckInFor(pt Type) time.Duration {
	if pt == TypeOvertime {
		return t.OvertimeEarlyCheckIn
	}
	return t.EarlyCheckIn
}

// LateCheckInFor returns the late check-in grace for the given period type.
func (t Thresholds) LateCheckInFor(pt Type) time.Duration {
	if pt == TypeOvertime {
		return t.OvertimeLateCheckIn
	}
	return t.LateCheckIn
}

// LateCheckOutFor returns the late checkout grace for the given period type.
func (t Thresholds) LateCheckOutFor(pt Type) time.Duration {
	if pt == TypeOvertime {
		return t.OvertimeLateCheckOut
	}
	return t.LateCheckOut
}
