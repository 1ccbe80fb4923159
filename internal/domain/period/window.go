package period

import "time"

// TimeWindow is a validation interval derived from a period. A window never
// represents work itself; it only bounds when a check action is admissible.
type TimeWindow struct {
	Start              time.Time
	End                time.Time
	PeriodType         Type
	IsFlexible         bool
	GracePeriodMinutes int

	IsEarlyCheckin   bool
	IsLateCheckin    bool
	IsLateCheckout   bool
	IsTransition     bool
	TransitionTo     Type // set when IsTransition
	LinkedOvertimeID *string
}

// WindowValidation is the result of validating an instant against a window.
type WindowValidation struct {
	IsValid             bool
	IsEarly             bool
	IsLate              bool
	MinutesEarly        int
	MinutesLate         int
	IsWithinEarlyWindow bool
	IsWithinLateWindow  bool
}

// TimingFlags are the derived booleans for an attendance record against its
// resolved period at a given instant. Along the elapsed-time axis past the
// period end, IsLateCheckOut and IsVeryLateCheckOut are mutually exclusive
// and totally ordered.
type TimingFlags struct {
	IsEarlyCheckIn         bool
	IsLateCheckIn          bool
	IsEarlyCheckOut        bool
	IsLateCheckOut         bool
	IsVeryLateCheckOut     bool
	LateCheckOutMinutes    int
	RequiresTransition     bool
	RequiresAutoCompletion bool
}
