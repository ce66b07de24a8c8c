package csrf

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	CookieName = "csrf_token"
	HeaderName = "X-CSRF-Token"
)

// Manager implements the double-submit pattern: the token is set as a
// script-readable cookie and must be echoed back in a request header.
type Manager struct {
	maxAge int
	secure bool
}

func NewManager(maxAgeSeconds int, secure bool) *Manager {
	if maxAgeSeconds <= 0 {
		maxAgeSeconds = 3600
	}
	return &Manager{maxAge: maxAgeSeconds, secure: secure}
}

// Issue mints a fresh token and sets it as a cookie on the response. Returns
// the token so handlers can echo it in the body.
func (m *Manager) Issue(w http.ResponseWriter) string {
	t := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    t,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		Path:     "/",
		MaxAge:   m.maxAge,
	})
	return t
}

// Check compares the cookie value to the header value by exact equality. Both
// must be present and non-empty.
func (m *Manager) Check(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	header := r.Header.Get(HeaderName)
	if header == "" {
		return false
	}
	return cookie.Value == header
}

// Clear expires the CSRF cookie, used on logout.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		Path:     "/",
		MaxAge:   -1,
	})
}
