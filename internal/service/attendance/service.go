package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/cache"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/clock"
	scheduleSvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
	"github.com/google/uuid"
)

type EngineServiceImpl struct {
	records   attendance.Repository
	shifts    schedule.ShiftRepository
	overtimes overtime.Repository

	windows   *scheduleSvc.WindowManager
	validator *AdmissionValidator
	evaluator *FlagEvaluator
	resolver  *StateResolver
	queue     *ProcessingQueue

	statusCache *cache.Cache[attendance.StatusResponse]
	notifier    notification.Notifier
	clock       clock.Clock
	thresholds  period.Thresholds
}

func NewEngineService(
	records attendance.Repository,
	shifts schedule.ShiftRepository,
	overtimes overtime.Repository,
	windows *scheduleSvc.WindowManager,
	queue *ProcessingQueue,
	statusCache *cache.Cache[attendance.StatusResponse],
	notifier notification.Notifier,
	clk clock.Clock,
	thresholds period.Thresholds,
) attendance.EngineService {
	return &EngineServiceImpl{
		records:     records,
		shifts:      shifts,
		overtimes:   overtimes,
		windows:     windows,
		validator:   NewAdmissionValidator(windows, thresholds),
		evaluator:   NewFlagEvaluator(thresholds),
		resolver:    NewStateResolver(thresholds),
		queue:       queue,
		statusCache: statusCache,
		notifier:    notifier,
		clock:       clk,
		thresholds:  thresholds,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format("2006-01-02 15:04:05")
	return &format
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toRecordResponse(rec attendance.Record) *attendance.RecordResponse {
	return &attendance.RecordResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		Date:             rec.Date.Format("2006-01-02"),
		PeriodType:       rec.PeriodType,
		Sequence:         rec.Sequence,
		CheckInTime:      timePtrToString(rec.CheckInTime),
		CheckOutTime:     timePtrToString(rec.CheckOutTime),
		State:            rec.State,
		CheckStatus:      rec.CheckStatus,
		OvertimeSubState: rec.OvertimeSubState,
		IsManualEntry:    rec.IsManualEntry,
		AutoCompleted:    rec.AutoCompleted,
	}
}

// CheckInOut implements attendance.EngineService.
func (s *EngineServiceImpl) CheckInOut(ctx context.Context, req attendance.CheckInOutRequest) (attendance.CheckInOutResponse, error) {
	now := s.clock.Now()
	if err := req.Validate(now); err != nil {
		return attendance.CheckInOutResponse{}, err
	}

	checkTime := req.CheckTime
	if checkTime.IsZero() {
		checkTime = now
	}

	signature := fmt.Sprintf("%s|%s|%t|%s",
		req.EmployeeID, checkTime.UTC().Format(time.RFC3339), req.IsCheckIn, req.PeriodType)

	return s.queue.Do(ctx, req.EmployeeID, signature, func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		return s.processUnit(ctx, req, checkTime)
	})
}

// authoritativeState is what a queued unit re-reads from the store. The
// status cache is never consulted here.
type authoritativeState struct {
	latest   *attendance.Record
	open     *attendance.Record
	shift    *schedule.ShiftDefinition
	overtime *overtime.Request
}

func (s *EngineServiceImpl) readState(ctx context.Context, employeeID string, ref time.Time) (authoritativeState, error) {
	var state authoritativeState

	latest, err := s.records.GetLatest(ctx, employeeID)
	if err != nil {
		return state, fmt.Errorf("failed to get latest record: %w", err)
	}
	state.latest = latest

	open, err := s.records.GetOpenRecord(ctx, employeeID)
	if err != nil {
		return state, fmt.Errorf("failed to get open record: %w", err)
	}
	state.open = open

	shift, err := s.shifts.GetActiveShift(ctx, employeeID, dateOnly(ref))
	if err != nil && !errors.Is(err, schedule.ErrShiftNotFound) {
		return state, fmt.Errorf("failed to get active shift: %w", err)
	}
	if err == nil {
		state.shift = &shift
	}

	loc := time.UTC
	if state.shift != nil {
		loc = state.shift.Location()
	}
	ot, err := s.lookupOvertime(ctx, employeeID, ref, loc, open)
	if err != nil {
		return state, err
	}
	state.overtime = ot

	return state, nil
}

// lookupOvertime finds the approved overtime request relevant at ref: the
// one anchored to ref's date, the previous day's (overnight overtime
// reaching past midnight), or the one an open record already links to.
func (s *EngineServiceImpl) lookupOvertime(ctx context.Context, employeeID string, ref time.Time, loc *time.Location, open *attendance.Record) (*overtime.Request, error) {
	if open != nil && open.OvertimeID != nil {
		req, err := s.overtimes.GetByID(ctx, *open.OvertimeID)
		if err == nil {
			return &req, nil
		}
		if !errors.Is(err, overtime.ErrOvertimeNotFound) {
			return nil, fmt.Errorf("failed to get linked overtime: %w", err)
		}
	}

	local := ref.In(loc)
	ot, err := s.overtimes.GetApprovedForDate(ctx, employeeID, dateOnly(local))
	if err != nil {
		return nil, fmt.Errorf("failed to get approved overtime: %w", err)
	}
	if ot != nil {
		return ot, nil
	}

	prev, err := s.overtimes.GetApprovedForDate(ctx, employeeID, dateOnly(local.AddDate(0, 0, -1)))
	if err != nil {
		return nil, fmt.Errorf("failed to get approved overtime: %w", err)
	}
	if prev != nil && prev.IsOvernight() {
		return prev, nil
	}
	return nil, nil
}

// processUnit is the serialized admission-plus-write unit.
func (s *EngineServiceImpl) processUnit(ctx context.Context, req attendance.CheckInOutRequest, checkTime time.Time) (attendance.CheckInOutResponse, error) {
	state, err := s.readState(ctx, req.EmployeeID, checkTime)
	if err != nil {
		return attendance.CheckInOutResponse{}, err
	}

	admission := s.validator.Validate(ValidationInput{
		Request:  req,
		Now:      checkTime,
		Latest:   state.latest,
		Open:     state.open,
		Shift:    state.shift,
		Overtime: state.overtime,
	})

	if admission.Outcome != period.OutcomeAccepted {
		return attendance.CheckInOutResponse{Admission: admission}, nil
	}

	current, next, err := s.windows.ResolvePeriods(state.shift, state.overtime, checkTime)
	if err != nil {
		return attendance.CheckInOutResponse{}, err
	}

	var rec attendance.Record
	if req.IsCheckIn {
		rec, err = s.applyCheckIn(ctx, req, state, admission, current, next, checkTime)
	} else {
		rec, err = s.applyCheckOut(ctx, req, state, admission, current, next, checkTime)
	}
	if err != nil {
		return attendance.CheckInOutResponse{}, err
	}

	s.statusCache.Delete(req.EmployeeID)

	s.notifier.Notify(ctx, notification.Event{
		EmployeeID: req.EmployeeID,
		Type:       notification.TypeCheckRecorded,
		Message:    fmt.Sprintf("attendance %s recorded", rec.CheckStatus),
		OccurredAt: checkTime,
		Data: map[string]interface{}{
			"record_id":   rec.ID,
			"period_type": string(rec.PeriodType),
		},
	})

	return attendance.CheckInOutResponse{
		Admission: admission,
		Record:    toRecordResponse(rec),
	}, nil
}

func (s *EngineServiceImpl) applyCheckIn(ctx context.Context, req attendance.CheckInOutRequest, state authoritativeState, admission period.AdmissionResult, current, next *period.Period, checkTime time.Time) (attendance.Record, error) {
	// Admission only accepts a check-in over an open record for a confirmed
	// period switch or an abandoned overtime. Either way the open record is
	// closed first, so at most one record is ever open.
	if state.open != nil {
		if err := s.closeOpenRecord(ctx, state, admission.AutoCompleteOvertime, current, next); err != nil {
			return attendance.Record{}, err
		}
	}

	target := findPeriod(req.PeriodType, current, next)
	if target == nil {
		return attendance.Record{}, attendance.ErrNoActivePeriod
	}

	// Work day is the period's anchor date, which differs from the check
	// time's date when an overnight period started yesterday.
	workDay := dateOnly(target.Start)

	seq, err := s.records.NextSequence(ctx, req.EmployeeID, workDay, req.PeriodType)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get next sequence: %w", err)
	}

	rec := attendance.Record{
		ID:               uuid.NewString(),
		EmployeeID:       req.EmployeeID,
		Date:             workDay,
		PeriodType:       req.PeriodType,
		Sequence:         seq,
		CheckInTime:      &checkTime,
		State:            attendance.StatePresent,
		CheckStatus:      attendance.CheckStatusCheckedIn,
		OvertimeSubState: attendance.OvertimeNotStarted,
		OvertimeID:       target.OvertimeID,
	}
	if req.PeriodType == period.TypeOvertime {
		rec.OvertimeSubState = attendance.OvertimeInProgress
		if state.overtime != nil {
			rec.IsDayOff = state.overtime.IsDayOffOvertime
		}
	}

	created, err := s.records.Create(ctx, rec)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return created, nil
}

func (s *EngineServiceImpl) applyCheckOut(ctx context.Context, req attendance.CheckInOutRequest, state authoritativeState, admission period.AdmissionResult, current, next *period.Period, checkTime time.Time) (attendance.Record, error) {
	open := state.open
	if open == nil {
		return attendance.Record{}, attendance.ErrNotCheckedIn
	}

	rec := *open
	rec.CheckOutTime = &checkTime
	rec.CheckStatus = attendance.CheckStatusCheckedOut
	rec.State = attendance.StatePresent
	if admission.Flags.IsEarlyCheckOut {
		rec.State = attendance.StateIncomplete
	}
	if rec.PeriodType == period.TypeOvertime {
		rec.OvertimeSubState = attendance.OvertimeCompleted
	}

	if err := s.records.Update(ctx, rec); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return rec, nil
}

// closeOpenRecord closes the record an accepted check-in found still open,
// stamping the checkout with its period's end boundary. The period may no
// longer resolve for an overtime record left open past midnight; it is then
// rebuilt from the linked approved request. A record whose period cannot be
// determined fails the unit rather than being left open.
func (s *EngineServiceImpl) closeOpenRecord(ctx context.Context, state authoritativeState, auto bool, current, next *period.Period) error {
	open := state.open

	p := findPeriod(open.PeriodType, current, next)
	if p == nil && open.PeriodType == period.TypeOvertime {
		p = s.validator.openOvertimePeriod(ValidationInput{
			Open:     open,
			Shift:    state.shift,
			Overtime: state.overtime,
		})
	}
	if p == nil {
		return fmt.Errorf("cannot resolve period of open record %s: %w", open.ID, attendance.ErrNoActivePeriod)
	}

	if auto {
		return s.autoComplete(ctx, *open, *p)
	}

	rec := *open
	end := p.End
	rec.CheckOutTime = &end
	rec.CheckStatus = attendance.CheckStatusCheckedOut
	rec.State = attendance.StatePresent
	if rec.PeriodType == period.TypeOvertime {
		rec.OvertimeSubState = attendance.OvertimeCompleted
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return fmt.Errorf("failed to close open record: %w", err)
	}
	return nil
}

// autoComplete force-closes an abandoned open record, stamping the
// checkout with the period's effective end boundary, never "now".
func (s *EngineServiceImpl) autoComplete(ctx context.Context, open attendance.Record, p period.Period) error {
	end := p.End
	open.CheckOutTime = &end
	open.CheckStatus = attendance.CheckStatusCheckedOut
	open.State = attendance.StatePresent
	open.AutoCompleted = true
	if open.PeriodType == period.TypeOvertime {
		open.OvertimeSubState = attendance.OvertimeCompleted
	}

	if err := s.records.Update(ctx, open); err != nil {
		return fmt.Errorf("failed to auto-complete record: %w", err)
	}

	s.notifier.Notify(ctx, notification.Event{
		EmployeeID: open.EmployeeID,
		Type:       notification.TypeAutoCompleted,
		Message:    fmt.Sprintf("attendance for %s was automatically closed", open.Date.Format("2006-01-02")),
		OccurredAt: end,
		Data: map[string]interface{}{
			"record_id": open.ID,
		},
	})
	return nil
}

// GetAttendanceStatus implements attendance.EngineService. Reads go through
// the short-TTL cache; a write invalidates the employee's entry.
func (s *EngineServiceImpl) GetAttendanceStatus(ctx context.Context, employeeID string) (attendance.StatusResponse, error) {
	return s.statusCache.GetOrLoad(employeeID, func() (attendance.StatusResponse, error) {
		return s.computeStatus(ctx, employeeID, s.clock.Now())
	})
}

func (s *EngineServiceImpl) computeStatus(ctx context.Context, employeeID string, now time.Time) (attendance.StatusResponse, error) {
	state, err := s.readState(ctx, employeeID, now)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	current, next, err := s.windows.ResolvePeriods(state.shift, state.overtime, now)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	resp := attendance.StatusResponse{
		State:            attendance.StateOff,
		CheckStatus:      attendance.CheckStatusPending,
		OvertimeSubState: attendance.OvertimeNotStarted,
	}

	rec := state.open
	if rec == nil {
		rec = state.latest
	}
	if rec != nil {
		resp.State = rec.State
		resp.CheckStatus = rec.CheckStatus
		resp.OvertimeSubState = rec.OvertimeSubState
		resp.Record = toRecordResponse(*rec)
	} else if current != nil {
		resp.State = attendance.StateAbsent
	}

	if current != nil {
		resp.Flags = s.evaluator.CalculateTimingFlags(rec, *current, next, now)
	}

	periodState := s.resolver.ResolveState(state.latest, current, next, now)
	resp.MissingEntries = periodState.MissingEntries
	resp.PendingTransitions = periodState.PendingTransitions

	return resp, nil
}

// GetCurrentWindow implements attendance.EngineService.
func (s *EngineServiceImpl) GetCurrentWindow(ctx context.Context, employeeID string, now time.Time) (attendance.CurrentWindowResponse, error) {
	if now.IsZero() {
		now = s.clock.Now()
	}

	state, err := s.readState(ctx, employeeID, now)
	if err != nil {
		return attendance.CurrentWindowResponse{}, err
	}

	current, next, err := s.windows.ResolvePeriods(state.shift, state.overtime, now)
	if err != nil {
		return attendance.CurrentWindowResponse{}, err
	}

	chosen := current
	if chosen == nil {
		chosen = next
		next = nil
	}
	if chosen == nil {
		return attendance.CurrentWindowResponse{}, attendance.ErrNoActivePeriod
	}

	resp := attendance.CurrentWindowResponse{
		Type: chosen.Type,
		Current: attendance.PeriodInfo{
			Type:        chosen.Type,
			Start:       chosen.Start,
			End:         chosen.End,
			IsOvernight: chosen.IsOvernight,
		},
	}
	if next != nil {
		resp.NextPeriod = &attendance.PeriodInfo{
			Type:        next.Type,
			Start:       next.Start,
			End:         next.End,
			IsOvernight: next.IsOvernight,
		}
	}

	if state.overtime != nil {
		var loc *time.Location
		if state.shift != nil {
			loc = state.shift.Location()
		}
		w, werr := s.windows.Calculator().ResolveOvertimeWindow(*state.overtime, loc)
		if werr == nil {
			resp.Overtime = &attendance.OvertimeInfo{
				ID:               state.overtime.ID,
				Start:            w.Start,
				End:              w.End,
				IsDayOffOvertime: state.overtime.IsDayOffOvertime,
			}
		}
	}

	return resp, nil
}
