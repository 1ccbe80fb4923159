package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Admission denials are
// not errors; they come back as tagged results with a 200. Only transport
// and lookup failures land here.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, attendance.ErrUnauthorized):
		Unauthorized(w, "Not authorized")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNoActivePeriod):
		NotFound(w, "No active attendance period")
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "No shift assigned")
	case errors.Is(err, schedule.ErrInvalidShiftTime):
		BadRequest(w, "Shift has an invalid time definition", nil)
	case errors.Is(err, overtime.ErrOvertimeNotFound):
		NotFound(w, "Overtime request not found")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
