package attendance

import (
	"context"
	"time"
)

// EngineService defines the attendance engine operations.
type EngineService interface {
	// CheckInOut runs a check-in or check-out request through admission
	// validation and, when accepted, persists the state change. Requests
	// for one employee are serialized; identical requests within the
	// dedupe window return the prior result.
	CheckInOut(ctx context.Context, req CheckInOutRequest) (CheckInOutResponse, error)

	// GetCurrentWindow resolves which period is active (or next) for the
	// employee at the given instant.
	GetCurrentWindow(ctx context.Context, employeeID string, now time.Time) (CurrentWindowResponse, error)

	// GetAttendanceStatus returns the computed status for the employee.
	// Served through the short-TTL read cache.
	GetAttendanceStatus(ctx context.Context, employeeID string) (StatusResponse, error)
}
