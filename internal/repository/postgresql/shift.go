package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/retry"
	"github.com/jackc/pgx/v5"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetActiveShift implements schedule.ShiftRepository. The assignment with
// the most recent effective_date not after the given date wins.
func (s *shiftRepository) GetActiveShift(ctx context.Context, employeeID string, date time.Time) (schedule.ShiftDefinition, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT sh.id, sh.name, sh.start_time, sh.end_time, sh.work_days,
			sh.grace_period_minutes, sh.timezone, sh.created_at, sh.updated_at
		FROM shifts sh
		JOIN employee_shifts es ON es.shift_id = sh.id
		WHERE es.employee_id = $1
		  AND es.effective_date <= $2
		ORDER BY es.effective_date DESC
		LIMIT 1
	`

	var shift schedule.ShiftDefinition
	var workDays []int
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime, &workDays,
		&shift.GracePeriodMinutes, &shift.Timezone, &shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ShiftDefinition{}, schedule.ErrShiftNotFound
		}
		return schedule.ShiftDefinition{}, retry.Transient(fmt.Errorf("failed to get active shift: %w", err))
	}

	shift.WorkDays = make([]time.Weekday, len(workDays))
	for i, d := range workDays {
		shift.WorkDays[i] = time.Weekday(d)
	}

	return shift, nil
}
