package handler

import (
	"encoding/json"
	"net/http"

	"hr-portal/internal/model"
	"hr-portal/internal/service"
	"hr-portal/pkg/apierror"
)

type AnnouncementHandler struct {
	announcements *service.AnnouncementService
}

func NewAnnouncementHandler(announcements *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.announcements.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, announcements, &model.Meta{Total: len(announcements)})
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.AnnouncementCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("malformed JSON body"))
		return
	}

	announcement, err := h.announcements.Create(r.Context(), claims.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, announcement, nil)
}
