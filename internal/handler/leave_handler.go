package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hr-portal/internal/model"
	"hr-portal/internal/service"
	"hr-portal/pkg/apierror"
)

type LeaveHandler struct {
	leaves *service.LeaveService
}

func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

func (h *LeaveHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, employee, err := callerEmployee(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.LeaveSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("malformed JSON body"))
		return
	}

	leave, err := h.leaves.Submit(r.Context(), claims.UserID, employee.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, leave, nil)
}

func (h *LeaveHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	_, employee, err := callerEmployee(r)
	if err != nil {
		writeError(w, err)
		return
	}

	leaves, err := h.leaves.ListMine(r.Context(), employee.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, leaves, &model.Meta{Total: len(leaves)})
}

func (h *LeaveHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.leaves.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, leaves, &model.Meta{Total: len(leaves)})
}

func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apierror.BadRequest("leave id must be numeric"))
		return
	}

	var req model.LeaveDecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("malformed JSON body"))
		return
	}

	leave, err := h.leaves.Decide(r.Context(), claims.UserID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, leave, nil)
}
