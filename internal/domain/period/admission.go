package period

import "time"

// Outcome is the tagged result of an admission decision. A denial always
// carries a human-readable reason; a pending outcome defers the
// close-vs-switch choice at a period boundary to the caller.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeDenied   Outcome = "denied"
	OutcomePending  Outcome = "pending"
)

// MissingEntry describes a check action the record should have but doesn't.
type MissingEntry struct {
	Kind       string    `json:"kind"` // "check_in" or "check_out"
	PeriodType Type      `json:"period_type"`
	ExpectedAt time.Time `json:"expected_at"`
}

// PendingTransition describes a boundary between two adjacent periods that
// the employee has not crossed yet.
type PendingTransition struct {
	FromType       Type      `json:"from_type"`
	ToType         Type      `json:"to_type"`
	TransitionTime time.Time `json:"transition_time"`
	IsCompleted    bool      `json:"is_completed"`
}

// AdmissionResult is the allow/deny/pending decision for a requested
// check-in or check-out.
type AdmissionResult struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`

	Flags TimingFlags `json:"flags"`

	// Pending metadata: the caller must confirm whether to close the
	// current period or switch into the candidate next one.
	RequireConfirmation bool                `json:"require_confirmation,omitempty"`
	NextPeriodType      Type                `json:"next_period_type,omitempty"`
	TransitionOptions   []PendingTransition `json:"transition_options,omitempty"`

	// Accepted metadata.
	MissingEntries       []MissingEntry `json:"missing_entries,omitempty"`
	AutoCompleteOvertime bool           `json:"auto_complete_overtime,omitempty"`
}

func Denied(reason string, flags TimingFlags) AdmissionResult {
	return AdmissionResult{Outcome: OutcomeDenied, Reason: reason, Flags: flags}
}

func Accepted(flags TimingFlags) AdmissionResult {
	return AdmissionResult{Outcome: OutcomeAccepted, Flags: flags}
}

func Pending(flags TimingFlags, next Type, options []PendingTransition) AdmissionResult {
	return AdmissionResult{
		Outcome:             OutcomePending,
		Flags:               flags,
		RequireConfirmation: true,
		NextPeriodType:      next,
		TransitionOptions:   options,
	}
}
