package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
)

// Repository is the persistence collaborator for attendance records.
type Repository interface {
	// GetOpenRecord returns the employee's open (checked-in, not checked-out)
	// record, or nil when none exists.
	GetOpenRecord(ctx context.Context, employeeID string) (*Record, error)

	// GetLatest returns the most recent record for the employee, or nil.
	GetLatest(ctx context.Context, employeeID string) (*Record, error)

	// NextSequence returns the next sequence number for the
	// (employee, date, period type) key, starting at 1.
	NextSequence(ctx context.Context, employeeID string, date time.Time, pt period.Type) (int, error)

	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, rec Record) error

	// GetStaleOpenRecords returns open records whose check-in is older than
	// the cutoff, for the auto-completion sweep.
	GetStaleOpenRecords(ctx context.Context, checkedInBefore time.Time) ([]Record, error)

	// HasRecordForDate reports whether any record exists for the work day.
	HasRecordForDate(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// BulkCreateAbsences inserts absence records in one batch.
	BulkCreateAbsences(ctx context.Context, recs []Record) error
}
