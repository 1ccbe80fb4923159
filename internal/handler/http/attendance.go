package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type AttendanceHandler interface {
	Check(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	Window(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	engine attendance.EngineService
}

func NewAttendanceHandler(engine attendance.EngineService) AttendanceHandler {
	return &attendanceHandlerImpl{
		engine: engine,
	}
}

// employeeIDFromToken reads the authenticated employee from JWT claims.
// AuthRequired already rejected tokens without one.
func employeeIDFromToken(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", attendance.ErrUnauthorized
	}
	return employeeID, nil
}

// Check implements AttendanceHandler.
func (h *attendanceHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromToken(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckInOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// The token, not the body, decides whose attendance is touched.
	req.EmployeeID = employeeID

	result, err := h.engine.CheckInOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Processing {
		response.Accepted(w, "Request accepted, processing continues", result)
		return
	}

	response.Success(w, result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromToken(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.engine.GetAttendanceStatus(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Window implements AttendanceHandler.
func (h *attendanceHandlerImpl) Window(w http.ResponseWriter, r *http.Request) {
	employeeID, err := employeeIDFromToken(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Optional "at" query parameter, RFC3339. Zero means "now" as seen by
	// the engine clock.
	var at time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, "Invalid 'at' timestamp, expected RFC3339", nil)
			return
		}
		at = parsed.UTC()
	}

	result, err := h.engine.GetCurrentWindow(r.Context(), employeeID, at)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
