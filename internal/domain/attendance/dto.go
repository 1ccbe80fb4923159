package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE ENGINE DTOs
// ========================================

// allowed clock skew for client-supplied check times
const checkTimeSkew = 5 * time.Minute

type CheckInOutRequest struct {
	EmployeeID string      `json:"employee_id"`
	PeriodType period.Type `json:"period_type"`
	IsCheckIn  bool        `json:"is_check_in"`

	// CheckTime is optional; zero means "now" as seen by the engine clock.
	CheckTime time.Time `json:"check_time,omitempty"`

	// Geofencing result, computed by the caller, opaque to the engine.
	OnPremises bool    `json:"on_premises"`
	Address    *string `json:"address,omitempty"`

	// Reason overrides an off-premises denial (e.g. field work).
	Reason *string `json:"reason,omitempty"`

	// ConfirmTransition resolves a prior pending outcome: the caller has
	// chosen to cross the period boundary.
	ConfirmTransition bool `json:"confirm_transition,omitempty"`
}

func (r *CheckInOutRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsInSlice(string(r.PeriodType), period.TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "period_type",
			Message: "period_type must be regular or overtime",
		})
	}

	if !r.CheckTime.IsZero() && r.CheckTime.After(now.Add(checkTimeSkew)) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_time",
			Message: ErrFutureCheckTime.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordResponse struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	Date             string           `json:"date"`
	PeriodType       period.Type      `json:"period_type"`
	Sequence         int              `json:"sequence"`
	CheckInTime      *string          `json:"check_in_time"`
	CheckOutTime     *string          `json:"check_out_time"`
	State            State            `json:"state"`
	CheckStatus      CheckStatus      `json:"check_status"`
	OvertimeSubState OvertimeSubState `json:"overtime_sub_state"`
	IsManualEntry    bool             `json:"is_manual_entry"`
	AutoCompleted    bool             `json:"auto_completed"`
}

type CheckInOutResponse struct {
	// Processing is true when the unit exceeded its wall-clock budget: the
	// request was accepted and keeps running, the caller should poll.
	Processing bool                   `json:"processing"`
	Admission  period.AdmissionResult `json:"admission"`
	Record     *RecordResponse        `json:"record,omitempty"`
}

type StatusResponse struct {
	State              State                      `json:"state"`
	CheckStatus        CheckStatus                `json:"check_status"`
	OvertimeSubState   OvertimeSubState           `json:"overtime_sub_state"`
	Flags              period.TimingFlags         `json:"flags"`
	MissingEntries     []period.MissingEntry      `json:"missing_entries,omitempty"`
	PendingTransitions []period.PendingTransition `json:"pending_transitions,omitempty"`
	Record             *RecordResponse            `json:"record,omitempty"`
}

type PeriodInfo struct {
	Type        period.Type `json:"type"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	IsOvernight bool        `json:"is_overnight"`
}

type OvertimeInfo struct {
	ID               string    `json:"id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	IsDayOffOvertime bool      `json:"is_day_off_overtime"`
}

type CurrentWindowResponse struct {
	Type       period.Type   `json:"type"`
	Current    PeriodInfo    `json:"current"`
	NextPeriod *PeriodInfo   `json:"next_period,omitempty"`
	Overtime   *OvertimeInfo `json:"overtime_info,omitempty"`
}
