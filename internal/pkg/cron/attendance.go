package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/google/uuid"

	scheduleService "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
)

// staleOpenAge is how long after check-in an open record becomes a
// candidate for auto-completion. Generous enough to clear the longest
// overnight shift plus the very-late checkout grace.
const staleOpenAge = 16 * time.Hour

type AttendanceJobs struct {
	records   attendance.Repository
	shifts    schedule.ShiftRepository
	overtimes overtime.Repository
	calc      *scheduleService.WindowCalculator
	notifier  notification.Notifier
	clock     clock.Clock
	db        *database.DB
}

func NewAttendanceJobs(
	records attendance.Repository,
	shifts schedule.ShiftRepository,
	overtimes overtime.Repository,
	calc *scheduleService.WindowCalculator,
	notifier notification.Notifier,
	clk clock.Clock,
	db *database.DB,
) *AttendanceJobs {
	return &AttendanceJobs{
		records:   records,
		shifts:    shifts,
		overtimes: overtimes,
		calc:      calc,
		notifier:  notifier,
		clock:     clk,
		db:        db,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_complete_stale_records", 1*time.Hour, j.AutoCompleteStaleRecords)
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// AutoCompleteStaleRecords closes open records whose period ended long ago.
// The synthetic checkout lands exactly on the period end boundary, never on
// the sweep time, so worked hours stay honest.
func (j *AttendanceJobs) AutoCompleteStaleRecords(ctx context.Context) error {
	now := j.clock.Now()

	stale, err := j.records.GetStaleOpenRecords(ctx, now.Add(-staleOpenAge))
	if err != nil {
		return fmt.Errorf("failed to get stale open records: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	closedCount := 0
	for _, rec := range stale {
		end, err := j.periodEnd(ctx, rec)
		if err != nil {
			slog.Error("Cron: Cannot resolve period end for stale record",
				"record_id", rec.ID,
				"employee_id", rec.EmployeeID,
				"error", err)
			continue
		}
		if now.Before(end) {
			continue
		}

		rec.CheckOutTime = &end
		rec.CheckStatus = attendance.CheckStatusCheckedOut
		rec.State = attendance.StatePresent
		rec.AutoCompleted = true
		if rec.PeriodType == period.TypeOvertime {
			rec.OvertimeSubState = attendance.OvertimeCompleted
		}

		if err := j.records.Update(ctx, rec); err != nil {
			slog.Error("Cron: Failed to auto-complete record",
				"record_id", rec.ID,
				"employee_id", rec.EmployeeID,
				"error", err)
			continue
		}

		j.notifier.Notify(ctx, notification.Event{
			EmployeeID: rec.EmployeeID,
			Type:       notification.TypeAutoCompleted,
			Message:    fmt.Sprintf("Attendance for %s was automatically completed", rec.Date.Format("2006-01-02")),
			OccurredAt: now,
			Data: map[string]interface{}{
				"record_id":      rec.ID,
				"check_out_time": end,
			},
		})
		closedCount++
	}

	slog.Info("Cron: Auto-completed stale records", "count", closedCount)
	return nil
}

// periodEnd resolves the end boundary of the period the record belongs to.
func (j *AttendanceJobs) periodEnd(ctx context.Context, rec attendance.Record) (time.Time, error) {
	loc := time.UTC
	shift, shiftErr := j.shifts.GetActiveShift(ctx, rec.EmployeeID, rec.Date)
	if shiftErr == nil {
		loc = shift.Location()
	}

	if rec.PeriodType == period.TypeOvertime && rec.OvertimeID != nil {
		req, err := j.overtimes.GetByID(ctx, *rec.OvertimeID)
		if err != nil {
			return time.Time{}, err
		}
		w, err := j.calc.ResolveOvertimeWindow(req, loc)
		if err != nil {
			return time.Time{}, err
		}
		return w.End, nil
	}

	if shiftErr != nil {
		return time.Time{}, shiftErr
	}
	w, err := j.calc.ResolveWindow(shift, rec.Date.In(loc))
	if err != nil {
		return time.Time{}, err
	}
	return w.End, nil
}

// MarkAbsentEmployees writes absence records for yesterday's no-shows.
// Runs in the first hour of the day only; the hourly tick makes missed
// runs self-healing.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	now := j.clock.Now()
	if now.UTC().Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting mark absent employees job")

	rows, err := j.db.Pool.Query(ctx, `
		SELECT DISTINCT employee_id FROM employee_shifts
		WHERE effective_date <= $1
	`, now)
	if err != nil {
		return fmt.Errorf("failed to list assigned employees: %w", err)
	}
	defer rows.Close()

	var employeeIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		employeeIDs = append(employeeIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list assigned employees: %w", err)
	}

	var absences []attendance.Record
	for _, employeeID := range employeeIDs {
		shift, err := j.shifts.GetActiveShift(ctx, employeeID, now)
		if err != nil {
			continue
		}

		yesterday := now.In(shift.Location()).AddDate(0, 0, -1)
		if !shift.IsWorkDay(yesterday.Weekday()) {
			continue
		}

		workDay := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
		has, err := j.records.HasRecordForDate(ctx, employeeID, workDay)
		if err != nil || has {
			continue
		}

		absences = append(absences, attendance.Record{
			ID:               uuid.NewString(),
			EmployeeID:       employeeID,
			Date:             workDay,
			PeriodType:       period.TypeRegular,
			Sequence:         1,
			State:            attendance.StateAbsent,
			CheckStatus:      attendance.CheckStatusPending,
			OvertimeSubState: attendance.OvertimeNotStarted,
		})
	}

	if len(absences) == 0 {
		slog.Info("Cron: No absences to record")
		return nil
	}

	if err := j.records.BulkCreateAbsences(ctx, absences); err != nil {
		return fmt.Errorf("failed to bulk create absences: %w", err)
	}

	for _, rec := range absences {
		j.notifier.Notify(ctx, notification.Event{
			EmployeeID: rec.EmployeeID,
			Type:       notification.TypeMarkedAbsent,
			Message:    fmt.Sprintf("Marked absent for %s", rec.Date.Format("2006-01-02")),
			OccurredAt: now,
		})
	}

	slog.Info("Cron: Marked absent employees", "count", len(absences))
	return nil
}
