package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	scheduleSvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator() *AdmissionValidator {
	thresholds := period.DefaultThresholds()
	return NewAdmissionValidator(scheduleSvc.NewWindowManager(thresholds), thresholds)
}

func testShift() *schedule.ShiftDefinition {
	return &schedule.ShiftDefinition{
		ID:        "shift-day",
		Name:      "Day Shift",
		StartTime: "09:00",
		EndTime:   "17:00",
		WorkDays: []time.Weekday{
			time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
		GracePeriodMinutes: 15,
	}
}

func approvedOvertime() *overtime.Request {
	return &overtime.Request{
		ID:         "ot-1",
		EmployeeID: "emp-1",
		Date:       time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime:  "17:00",
		EndTime:    "19:00",
		Status:     overtime.StatusApproved,
	}
}

func checkInRequest() attendance.CheckInOutRequest {
	return attendance.CheckInOutRequest{
		EmployeeID: "emp-1",
		PeriodType: period.TypeRegular,
		IsCheckIn:  true,
		OnPremises: true,
	}
}

func checkOutRequest() attendance.CheckInOutRequest {
	req := checkInRequest()
	req.IsCheckIn = false
	return req
}

func TestAdmissionValidator_OffPremisesWithoutReasonDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	req := checkInRequest()
	req.OnPremises = false

	result := v.Validate(ValidationInput{Request: req, Now: at(9, 0), Shift: testShift()})
	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrOutsidePremises.Error(), result.Reason)
}

func TestAdmissionValidator_OffPremisesWithReasonProceeds(t *testing.T) {
	t.Parallel()
	v := testValidator()

	reason := "client site visit"
	req := checkInRequest()
	req.OnPremises = false
	req.Reason = &reason

	result := v.Validate(ValidationInput{Request: req, Now: at(9, 0), Shift: testShift()})
	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
}

func TestAdmissionValidator_NoActivePeriodDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// No shift, no overtime: nothing to admit against.
	result := v.Validate(ValidationInput{Request: checkInRequest(), Now: at(9, 0)})
	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrNoActivePeriod.Error(), result.Reason)
}

func TestAdmissionValidator_CheckIn_Accepted(t *testing.T) {
	t.Parallel()
	v := testValidator()

	result := v.Validate(ValidationInput{Request: checkInRequest(), Now: at(8, 30), Shift: testShift()})

	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
	assert.True(t, result.Flags.IsEarlyCheckIn)
}

func TestAdmissionValidator_CheckIn_OutsideWindowDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// 07:30 is before the early check-in window opens at 08:00. The period
	// is visible as "next" but not yet admissible.
	result := v.Validate(ValidationInput{Request: checkInRequest(), Now: at(7, 30), Shift: testShift()})

	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrOutsideCheckInWindow.Error(), result.Reason)
}

func TestAdmissionValidator_CheckIn_AlreadyCheckedInDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	open := openRecord()
	result := v.Validate(ValidationInput{
		Request: checkInRequest(),
		Now:     at(10, 0),
		Latest:  open,
		Open:    open,
		Shift:   testShift(),
	})

	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrAlreadyCheckedIn.Error(), result.Reason)
}

func TestAdmissionValidator_CheckIn_OvertimeWithoutApprovalDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	req := checkInRequest()
	req.PeriodType = period.TypeOvertime

	result := v.Validate(ValidationInput{Request: req, Now: at(17, 5), Shift: testShift()})

	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, overtime.ErrOvertimeNotApproved.Error(), result.Reason)
}

func TestAdmissionValidator_CheckIn_OvertimeTransitionPending(t *testing.T) {
	t.Parallel()
	v := testValidator()

	req := checkInRequest()
	req.PeriodType = period.TypeOvertime

	open := openRecord()
	in := ValidationInput{
		Request:  req,
		Now:      at(16, 50),
		Latest:   open,
		Open:     open,
		Shift:    testShift(),
		Overtime: approvedOvertime(),
	}

	result := v.Validate(in)
	assert.Equal(t, period.OutcomePending, result.Outcome)
	assert.True(t, result.RequireConfirmation)
	assert.Equal(t, period.TypeOvertime, result.NextPeriodType)

	// The caller confirms the boundary crossing; same instant now admits.
	in.Request.ConfirmTransition = true
	result = v.Validate(in)
	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
}

func TestAdmissionValidator_CheckIn_OpenOvertimeBlocksRegular(t *testing.T) {
	t.Parallel()
	v := testValidator()

	in := at(17, 0)
	otID := "ot-1"
	open := &attendance.Record{
		ID:          "rec-ot",
		EmployeeID:  "emp-1",
		Date:        time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		PeriodType:  period.TypeOvertime,
		CheckInTime: &in,
		CheckStatus: attendance.CheckStatusCheckedIn,
		OvertimeID:  &otID,
	}

	result := v.Validate(ValidationInput{
		Request:  checkInRequest(),
		Now:      at(17, 30),
		Latest:   open,
		Open:     open,
		Shift:    testShift(),
		Overtime: approvedOvertime(),
	})

	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrOpenOvertimeBlocks.Error(), result.Reason)
}

func TestAdmissionValidator_CheckIn_AbandonedOvertimeAutoCompletes(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// Overnight overtime from yesterday evening left open. The next
	// morning's regular check-in auto-completes it instead of blocking.
	ot := approvedOvertime()
	ot.Date = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	ot.StartTime = "18:00"
	ot.EndTime = "20:00"

	in := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	open := &attendance.Record{
		ID:          "rec-ot",
		EmployeeID:  "emp-1",
		Date:        ot.Date,
		PeriodType:  period.TypeOvertime,
		CheckInTime: &in,
		CheckStatus: attendance.CheckStatusCheckedIn,
		OvertimeID:  &ot.ID,
	}

	result := v.Validate(ValidationInput{
		Request:  checkInRequest(),
		Now:      at(8, 30),
		Latest:   open,
		Open:     open,
		Shift:    testShift(),
		Overtime: ot,
	})

	require.Equal(t, period.OutcomeAccepted, result.Outcome)
	assert.True(t, result.AutoCompleteOvertime)
}

func TestAdmissionValidator_CheckOut_NotCheckedInDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	result := v.Validate(ValidationInput{Request: checkOutRequest(), Now: at(12, 0), Shift: testShift()})
	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrNotCheckedIn.Error(), result.Reason)
}

func TestAdmissionValidator_CheckOut_AlreadyCheckedOutDenied(t *testing.T) {
	t.Parallel()
	v := testValidator()

	out := at(17, 0)
	latest := openRecord()
	latest.CheckOutTime = &out
	latest.CheckStatus = attendance.CheckStatusCheckedOut

	result := v.Validate(ValidationInput{
		Request: checkOutRequest(),
		Now:     at(17, 30),
		Latest:  latest,
		Shift:   testShift(),
	})
	assert.Equal(t, period.OutcomeDenied, result.Outcome)
	assert.Equal(t, attendance.ErrAlreadyCheckedOut.Error(), result.Reason)
}

func TestAdmissionValidator_CheckOut_Accepted(t *testing.T) {
	t.Parallel()
	v := testValidator()

	open := openRecord()
	result := v.Validate(ValidationInput{
		Request: checkOutRequest(),
		Now:     at(17, 10),
		Latest:  open,
		Open:    open,
		Shift:   testShift(),
	})

	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
	assert.True(t, result.Flags.IsLateCheckOut)
	assert.Equal(t, 10, result.Flags.LateCheckOutMinutes)
}

func TestAdmissionValidator_CheckOut_EarlyFlagged(t *testing.T) {
	t.Parallel()
	v := testValidator()

	open := openRecord()
	result := v.Validate(ValidationInput{
		Request: checkOutRequest(),
		Now:     at(16, 30),
		Latest:  open,
		Open:    open,
		Shift:   testShift(),
	})

	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
	assert.True(t, result.Flags.IsEarlyCheckOut)
}

func TestAdmissionValidator_CheckOut_NearTransitionPending(t *testing.T) {
	t.Parallel()
	v := testValidator()

	open := openRecord()
	in := ValidationInput{
		Request:  checkOutRequest(),
		Now:      at(16, 50),
		Latest:   open,
		Open:     open,
		Shift:    testShift(),
		Overtime: approvedOvertime(),
	}

	result := v.Validate(in)
	assert.Equal(t, period.OutcomePending, result.Outcome)
	assert.Equal(t, period.TypeOvertime, result.NextPeriodType)
	require.Len(t, result.TransitionOptions, 1)
	assert.Equal(t, period.TypeOvertime, result.TransitionOptions[0].ToType)

	in.Request.ConfirmTransition = true
	result = v.Validate(in)
	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
}

func TestAdmissionValidator_CheckOut_NoTransitionWithoutOvertime(t *testing.T) {
	t.Parallel()
	v := testValidator()

	// Same instant, but no adjacent period: a plain checkout.
	open := openRecord()
	result := v.Validate(ValidationInput{
		Request: checkOutRequest(),
		Now:     at(16, 50),
		Latest:  open,
		Open:    open,
		Shift:   testShift(),
	})

	assert.Equal(t, period.OutcomeAccepted, result.Outcome)
	assert.False(t, result.RequireConfirmation)
}
