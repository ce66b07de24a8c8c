package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hr-portal/internal/model"
	"hr-portal/internal/service"
	"hr-portal/pkg/apierror"
)

// SessionHandler exposes the operator view of the session table: list every
// issued session and force-revoke one by jti.
type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, sessions, &model.Meta{Total: len(sessions)})
}

func (h *SessionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	jti := chi.URLParam(r, "jti")
	if jti == "" {
		writeError(w, apierror.BadRequest("session jti is required"))
		return
	}

	if err := h.sessions.Revoke(r.Context(), jti, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"revoked": true}, nil)
}
