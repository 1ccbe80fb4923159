package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/retry"
	"github.com/jackc/pgx/v5"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.Repository {
	return &overtimeRepository{db: db}
}

const overtimeColumns = `
	id, employee_id, date, start_time, end_time,
	is_day_off_overtime, is_inside_shift_hours, status,
	created_at, updated_at
`

func scanOvertime(row pgx.Row) (overtime.Request, error) {
	var req overtime.Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Date, &req.StartTime, &req.EndTime,
		&req.IsDayOffOvertime, &req.IsInsideShiftHours, &req.Status,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

// GetApprovedForDate implements overtime.Repository.
func (o *overtimeRepository) GetApprovedForDate(ctx context.Context, employeeID string, date time.Time) (*overtime.Request, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE employee_id = $1
		  AND date = $2
		  AND status = 'approved'
		ORDER BY start_time
		LIMIT 1
	`

	req, err := scanOvertime(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, retry.Transient(fmt.Errorf("failed to get approved overtime: %w", err))
	}

	return &req, nil
}

// GetByID implements overtime.Repository.
func (o *overtimeRepository) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	q := GetQuerier(ctx, o.db)

	query := `
		SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE id = $1
	`

	req, err := scanOvertime(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Request{}, overtime.ErrOvertimeNotFound
		}
		return overtime.Request{}, retry.Transient(fmt.Errorf("failed to get overtime request: %w", err))
	}

	return req, nil
}
