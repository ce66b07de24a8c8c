package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hr-portal/internal/csrf"
	"hr-portal/internal/middleware"
	"hr-portal/internal/model"
	"hr-portal/internal/service"
	"hr-portal/pkg/apierror"
)

type AuthHandler struct {
	auth         *service.AuthService
	csrf         *csrf.Manager
	cookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, csrfManager *csrf.Manager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, csrf: csrfManager, cookieSecure: cookieSecure}
}

// Csrf hands the client a fresh double-submit token. The token is also echoed
// in the body for non-browser clients.
func (h *AuthHandler) Csrf(w http.ResponseWriter, r *http.Request) {
	token := h.csrf.Issue(w)
	writeSuccess(w, http.StatusOK, map[string]string{"csrf_token": token}, nil)
}

// Login runs the credential pipeline and sets the session cookie. A failed
// CSRF check self-heals: the response carries a fresh CSRF cookie so the
// client's immediate retry can succeed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.BadRequest("malformed JSON body"))
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		writeError(w, apierror.BadRequest("identifier and password are required"))
		return
	}

	if !h.csrf.Check(r) {
		h.csrf.Issue(w)
		writeError(w, apierror.New("CSRF_FAILED", "CSRF validation failed, retry with the new token", "", http.StatusBadRequest))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Identifier, req.Password, middleware.ExtractClientIP(r))
	if err != nil {
		var rlErr *service.RateLimitError
		if errors.As(err, &rlErr) {
			w.Header().Set("Retry-After", strconv.Itoa(rlErr.RetryAfterSeconds()))
			writeError(w, apierror.New("RATE_LIMITED", "Too many login attempts", "", http.StatusTooManyRequests))
			return
		}
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token, int(h.auth.SessionTTL().Seconds()))
	writeSuccess(w, http.StatusOK, result.User, nil)
}

// Logout always succeeds. Revocation is best-effort; both session cookies and
// the CSRF cookie are cleared regardless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(model.SessionCookieName); err == nil {
		h.auth.Logout(r.Context(), cookie.Value)
	}

	h.clearCookie(w, model.SessionCookieName, true)
	h.clearCookie(w, model.ProviderCookieName, true)
	h.csrf.Clear(w)
	writeSuccess(w, http.StatusOK, map[string]bool{"logged_out": true}, nil)
}

// Me answers 200 for every caller; anonymous callers get null fields. When
// the service refreshed a missing employee linkage, the re-minted token
// replaces the session cookie with its remaining lifetime.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		identity = model.Anonymous()
	}

	me, refreshed := h.auth.Me(r.Context(), identity)
	if refreshed != "" && identity.Kind == model.IdentityCustom {
		remaining := int(time.Until(identity.Claims.ExpiresAt).Seconds())
		if remaining > 0 {
			h.setSessionCookie(w, refreshed, remaining)
		}
	}

	writeSuccess(w, http.StatusOK, me, nil)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.SessionCookieName,
		Value:    token,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
		Path:     "/",
		MaxAge:   -1,
	})
}
