package handler

import (
	"net/http"

	"github.com/google/uuid"

	"hr-portal/internal/model"
	"hr-portal/internal/oauth"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler drives the secondary provider's auth-code flow. The callback
// stores the raw ID token in the provider cookie; the session bridge verifies
// it on every request.
type OAuthHandler struct {
	provider     *oauth.Provider
	cookieSecure bool
	providerTTL  int
}

func NewOAuthHandler(provider *oauth.Provider, cookieSecure bool, providerTTLSeconds int) *OAuthHandler {
	return &OAuthHandler{provider: provider, cookieSecure: cookieSecure, providerTTL: providerTTLSeconds}
}

func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
		Path:     "/",
		MaxAge:   300,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Redirect(w, r, "/login?error=state_mismatch", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=missing_code", http.StatusFound)
		return
	}

	rawIDToken, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		http.Redirect(w, r, "/login?error=exchange_failed", http.StatusFound)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, SameSite: http.SameSiteLaxMode, Secure: h.cookieSecure,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     model.ProviderCookieName,
		Value:    rawIDToken,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
		Path:     "/",
		MaxAge:   h.providerTTL,
	})
	http.Redirect(w, r, "/home", http.StatusFound)
}
