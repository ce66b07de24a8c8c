package handler

import (
	"encoding/json"
	"net/http"

	"hr-portal/internal/middleware"
	"hr-portal/internal/model"
	"hr-portal/internal/service"
	"hr-portal/pkg/apierror"
)

type AttendanceHandler struct {
	attendance *service.AttendanceService
}

func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Today returns the caller's attendance row for the current day; data is null
// when nothing was logged yet.
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	_, employee, err := callerEmployee(r)
	if err != nil {
		writeError(w, err)
		return
	}

	row, err := h.attendance.Today(r.Context(), employee.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, row, nil)
}

func (h *AttendanceHandler) Log(w http.ResponseWriter, r *http.Request) {
	_, employee, err := callerEmployee(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.AttendanceLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("malformed JSON body"))
		return
	}

	identity, _ := middleware.IdentityFromContext(r.Context())
	row, err := h.attendance.Log(r.Context(), identity, employee.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, row, nil)
}
