package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/retry"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const recordColumns = `
	id, employee_id, date, period_type, sequence,
	check_in_time, check_out_time,
	state, check_status, overtime_sub_state, overtime_id,
	is_manual_entry, is_day_off, auto_completed,
	created_at, updated_at
`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.PeriodType, &rec.Sequence,
		&rec.CheckInTime, &rec.CheckOutTime,
		&rec.State, &rec.CheckStatus, &rec.OvertimeSubState, &rec.OvertimeID,
		&rec.IsManualEntry, &rec.IsDayOff, &rec.AutoCompleted,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// GetOpenRecord implements attendance.Repository.
func (a *attendanceRepository) GetOpenRecord(ctx context.Context, employeeID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND check_status = 'checked_in'
		  AND check_out_time IS NULL
		ORDER BY check_in_time DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, retry.Transient(fmt.Errorf("failed to get open record: %w", err))
	}

	return &rec, nil
}

// GetLatest implements attendance.Repository.
func (a *attendanceRepository) GetLatest(ctx context.Context, employeeID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		ORDER BY date DESC, sequence DESC, created_at DESC
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, retry.Transient(fmt.Errorf("failed to get latest record: %w", err))
	}

	return &rec, nil
}

// NextSequence implements attendance.Repository.
func (a *attendanceRepository) NextSequence(ctx context.Context, employeeID string, date time.Time, pt period.Type) (int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT COALESCE(MAX(sequence), 0) + 1
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2 AND period_type = $3
	`

	var seq int
	if err := q.QueryRow(ctx, query, employeeID, date, pt).Scan(&seq); err != nil {
		return 0, retry.Transient(fmt.Errorf("failed to get next sequence: %w", err))
	}
	return seq, nil
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, period_type, sequence,
			check_in_time, check_out_time,
			state, check_status, overtime_sub_state, overtime_id,
			is_manual_entry, is_day_off, auto_completed
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID, rec.EmployeeID, rec.Date, rec.PeriodType, rec.Sequence,
		rec.CheckInTime, rec.CheckOutTime,
		rec.State, rec.CheckStatus, rec.OvertimeSubState, rec.OvertimeID,
		rec.IsManualEntry, rec.IsDayOff, rec.AutoCompleted,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return attendance.Record{}, retry.Transient(fmt.Errorf("failed to create attendance record: %w", err))
	}

	return rec, nil
}

// Update implements attendance.Repository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET check_in_time = $2,
			check_out_time = $3,
			state = $4,
			check_status = $5,
			overtime_sub_state = $6,
			is_manual_entry = $7,
			auto_completed = $8,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID,
		rec.CheckInTime, rec.CheckOutTime,
		rec.State, rec.CheckStatus, rec.OvertimeSubState,
		rec.IsManualEntry, rec.AutoCompleted,
	)
	if err != nil {
		return retry.Transient(fmt.Errorf("failed to update attendance record: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// GetStaleOpenRecords implements attendance.Repository.
func (a *attendanceRepository) GetStaleOpenRecords(ctx context.Context, checkedInBefore time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE check_status = 'checked_in'
		  AND check_out_time IS NULL
		  AND check_in_time < $1
		ORDER BY check_in_time
	`

	rows, err := q.Query(ctx, query, checkedInBefore)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("failed to get stale open records: %w", err))
	}
	defer rows.Close()

	var recs []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// HasRecordForDate implements attendance.Repository.
func (a *attendanceRepository) HasRecordForDate(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE employee_id = $1 AND date = $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, date).Scan(&exists); err != nil {
		return false, retry.Transient(fmt.Errorf("failed to check record existence: %w", err))
	}
	return exists, nil
}

// BulkCreateAbsences implements attendance.Repository.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, recs []attendance.Record) error {
	if len(recs) == 0 {
		return nil
	}
	q := GetQuerier(ctx, a.db)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO attendance_records (
			id, employee_id, date, period_type, sequence,
			state, check_status, overtime_sub_state,
			is_manual_entry, is_day_off, auto_completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT DO NOTHING
	`
	for _, rec := range recs {
		batch.Queue(query,
			rec.ID, rec.EmployeeID, rec.Date, rec.PeriodType, rec.Sequence,
			rec.State, rec.CheckStatus, rec.OvertimeSubState,
			rec.IsManualEntry, rec.IsDayOff, rec.AutoCompleted,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for range recs {
		if _, err := results.Exec(); err != nil {
			return retry.Transient(fmt.Errorf("failed to bulk create absences: %w", err))
		}
	}
	return nil
}
