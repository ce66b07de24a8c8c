package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrAccountInactive) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Account is inactive"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrSessionNotFound) || errors.Is(err, model.ErrSessionRevoked) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Session is no longer valid"
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrEmployeeNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Employee not found"
	} else if errors.Is(err, model.ErrLeaveNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Leave request not found"
	} else if errors.Is(err, model.ErrAlreadyCheckedIn) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Already checked in today"
	} else if errors.Is(err, model.ErrAlreadyCheckedOut) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Already checked out today"
	} else if errors.Is(err, model.ErrNotCheckedIn) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "No check-in recorded today"
	} else if errors.Is(err, model.ErrLeaveAlreadyDecided) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Leave request already decided"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
