package schedule

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eveningOvertime() *overtime.Request {
	return &overtime.Request{
		ID:        "ot-evening",
		Date:      testDate(),
		StartTime: "17:00",
		EndTime:   "19:00",
		Status:    overtime.StatusApproved,
	}
}

func TestWindowManager_CalculateTimeWindows_RegularOnly(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	windows, err := m.CalculateTimeWindows(dayShift(), CalcOptions{Timestamp: at(10, 0)})
	require.NoError(t, err)
	require.Len(t, windows, 4)

	for i := 1; i < len(windows); i++ {
		assert.False(t, windows[i].Start.Before(windows[i-1].Start), "windows are sorted by start")
	}

	var early, lateIn, lateOut, plain int
	for _, w := range windows {
		switch {
		case w.IsEarlyCheckin:
			early++
			assert.Equal(t, at(8, 0), w.Start)
			assert.Equal(t, at(9, 0), w.End)
		case w.IsLateCheckin:
			lateIn++
			assert.Equal(t, at(9, 0), w.Start)
			assert.Equal(t, at(9, 15), w.End)
		case w.IsLateCheckout:
			lateOut++
			assert.Equal(t, at(17, 0), w.Start)
			assert.Equal(t, at(18, 0), w.End)
		default:
			plain++
			assert.Equal(t, at(9, 0), w.Start)
			assert.Equal(t, at(17, 0), w.End)
			assert.Equal(t, 15, w.GracePeriodMinutes)
		}
	}
	assert.Equal(t, []int{1, 1, 1, 1}, []int{early, lateIn, lateOut, plain})
}

func TestWindowManager_CalculateTimeWindows_TransitionOnExactBoundary(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	windows, err := m.CalculateTimeWindows(dayShift(), CalcOptions{
		Timestamp: at(10, 0),
		Overtime:  eveningOvertime(),
	})
	require.NoError(t, err)

	var transitions []period.TimeWindow
	var otWindows []period.TimeWindow
	for _, w := range windows {
		if w.IsTransition {
			transitions = append(transitions, w)
		}
		if w.PeriodType == period.TypeOvertime && !w.IsTransition {
			otWindows = append(otWindows, w)
		}
	}

	require.Len(t, otWindows, 1)
	assert.Equal(t, "ot-evening", *otWindows[0].LinkedOvertimeID)

	require.Len(t, transitions, 1)
	tr := transitions[0]
	assert.Equal(t, at(16, 45), tr.Start)
	assert.Equal(t, at(18, 0), tr.End)
	assert.Equal(t, period.TypeOvertime, tr.TransitionTo)
	assert.True(t, tr.IsFlexible)
}

func TestWindowManager_CalculateTimeWindows_NoTransitionWhenGap(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	ot := eveningOvertime()
	ot.StartTime = "17:30"

	windows, err := m.CalculateTimeWindows(dayShift(), CalcOptions{
		Timestamp: at(10, 0),
		Overtime:  ot,
	})
	require.NoError(t, err)

	for _, w := range windows {
		assert.False(t, w.IsTransition, "a 30 minute gap between periods must not produce a transition window")
	}
}

func TestWindowManager_CalculateTimeWindows_UnapprovedOvertimeIgnored(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	ot := eveningOvertime()
	ot.Status = overtime.StatusPending

	windows, err := m.CalculateTimeWindows(dayShift(), CalcOptions{
		Timestamp: at(10, 0),
		Overtime:  ot,
	})
	require.NoError(t, err)

	for _, w := range windows {
		assert.NotEqual(t, period.TypeOvertime, w.PeriodType)
	}
}

func TestWindowManager_IsWithinValidBounds_PlainRegular(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	w := period.TimeWindow{
		Start:              at(9, 0),
		End:                at(17, 0),
		PeriodType:         period.TypeRegular,
		GracePeriodMinutes: 15,
	}

	tests := []struct {
		name  string
		now   time.Time
		valid bool
	}{
		{"before early window", at(7, 59), false},
		{"start of early window", at(8, 0), true},
		{"within early window", at(8, 30), true},
		{"late arrival inside grace", at(9, 10), true},
		{"mid shift", at(13, 0), true},
		{"end of shift", at(17, 0), true},
		{"after end", at(17, 1), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, m.IsWithinValidBounds(tc.now, w))
		})
	}
}

func TestWindowManager_IsWithinValidBounds_GraceWindows(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	w := period.TimeWindow{
		Start:              at(17, 0),
		End:                at(19, 0),
		PeriodType:         period.TypeOvertime,
		GracePeriodMinutes: 15,
	}

	assert.True(t, m.IsWithinValidBounds(at(16, 50), w))
	assert.False(t, m.IsWithinValidBounds(at(16, 40), w))
	assert.True(t, m.IsWithinValidBounds(at(19, 10), w))
	assert.False(t, m.IsWithinValidBounds(at(19, 20), w))
}

func TestWindowManager_IsWithinValidBounds_WideningGraceGrowsAcceptance(t *testing.T) {
	t.Parallel()

	narrow := period.DefaultThresholds()
	wide := period.DefaultThresholds()
	wide.EarlyCheckIn = 2 * time.Hour

	w := period.TimeWindow{
		Start:      at(9, 0),
		End:        at(17, 0),
		PeriodType: period.TypeRegular,
	}
	instant := at(7, 30)

	assert.False(t, NewWindowManager(narrow).IsWithinValidBounds(instant, w))
	assert.True(t, NewWindowManager(wide).IsWithinValidBounds(instant, w))
}

func TestWindowManager_ValidateTimeWindow(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	w := period.TimeWindow{
		Start:      at(9, 0),
		End:        at(17, 0),
		PeriodType: period.TypeRegular,
	}

	v := m.ValidateTimeWindow(at(8, 30), w)
	assert.True(t, v.IsEarly)
	assert.Equal(t, 30, v.MinutesEarly)
	assert.True(t, v.IsWithinEarlyWindow)
	assert.True(t, v.IsValid)

	v = m.ValidateTimeWindow(at(9, 20), w)
	assert.True(t, v.IsLate)
	assert.Equal(t, 20, v.MinutesLate)
	assert.True(t, v.IsValid, "late arrival is still inside the working interval")

	v = m.ValidateTimeWindow(at(17, 30), w)
	assert.True(t, v.IsWithinLateWindow)
	assert.False(t, v.IsValid)
}

func TestWindowManager_ResolvePeriods_CurrentAndNext(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())
	shift := dayShift()

	current, next, err := m.ResolvePeriods(&shift, eveningOvertime(), at(10, 0))
	require.NoError(t, err)

	require.NotNil(t, current)
	assert.Equal(t, period.TypeRegular, current.Type)
	assert.Equal(t, at(9, 0), current.Start)

	require.NotNil(t, next)
	assert.Equal(t, period.TypeOvertime, next.Type)
	assert.Equal(t, at(17, 0), next.Start)
	assert.True(t, current.ConnectsTo(next))
}

func TestWindowManager_ResolvePeriods_BackToBackOvertimeStillNext(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())
	shift := dayShift()

	// 17:30: the regular window's widened bounds still hold, and the
	// overtime window has already begun. Overtime must surface as next.
	current, next, err := m.ResolvePeriods(&shift, eveningOvertime(), at(17, 30))
	require.NoError(t, err)

	require.NotNil(t, current)
	assert.Equal(t, period.TypeRegular, current.Type)
	require.NotNil(t, next)
	assert.Equal(t, period.TypeOvertime, next.Type)
}

func TestWindowManager_ResolvePeriods_OvernightAnchorsYesterday(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())
	shift := nightShift()

	now := time.Date(2026, 3, 5, 5, 30, 0, 0, time.UTC)
	current, _, err := m.ResolvePeriods(&shift, nil, now)
	require.NoError(t, err)

	require.NotNil(t, current)
	assert.Equal(t, at(22, 0), current.Start, "period anchors to yesterday's date")
	assert.Equal(t, time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC), current.End)
	assert.True(t, current.IsOvernight)
}

func TestWindowManager_ResolvePeriods_DayOff(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	shift := dayShift()
	shift.WorkDays = []time.Weekday{time.Monday}

	// 2026-03-04 is a Wednesday.
	current, next, err := m.ResolvePeriods(&shift, nil, at(10, 0))
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Nil(t, next)
}

func TestWindowManager_ResolvePeriods_NilShiftWithOvertime(t *testing.T) {
	t.Parallel()
	m := NewWindowManager(period.DefaultThresholds())

	current, next, err := m.ResolvePeriods(nil, eveningOvertime(), at(17, 30))
	require.NoError(t, err)

	require.NotNil(t, current)
	assert.Equal(t, period.TypeOvertime, current.Type)
	assert.Nil(t, next)
}
