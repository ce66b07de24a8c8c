package middleware

import (
	"context"
	"net/http"
	"strings"

	"hr-portal/internal/model"
	"hr-portal/internal/policy"
)

type identityResolver interface {
	ResolveIdentity(ctx context.Context, customToken string, providerToken string) model.Identity
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	resolver identityResolver
}

func NewAuthMiddleware(resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Resolve attaches the caller's identity to the request context. It never
// rejects: anonymous callers pass through as anonymous so endpoints like the
// me route can answer 200 with nulls.
func (m *AuthMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var customToken, providerToken string
		if cookie, err := r.Cookie(model.SessionCookieName); err == nil {
			customToken = cookie.Value
		}
		if cookie, err := r.Cookie(model.ProviderCookieName); err == nil {
			providerToken = cookie.Value
		}

		identity := m.resolver.ResolveIdentity(r.Context(), customToken, providerToken)
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects anonymous callers. Run after Resolve.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity.Kind == model.IdentityAnonymous {
			writeDenied(w, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnyPermission admits a caller holding at least one of the given
// permission codes, or whose role is implicitly granted one by the policy
// table. Provider-bridged sessions carry no permissions and are refused.
func (m *AuthMiddleware) RequireAnyPermission(codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity.Kind == model.IdentityAnonymous {
				writeDenied(w, "UNAUTHORIZED", "authentication required")
				return
			}
			if identity.Kind != model.IdentityCustom || !grantsAny(identity.Claims, codes) {
				writeDenied(w, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles admits only custom sessions whose role name matches one of the
// allowed roles, case-insensitively.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || identity.Kind == model.IdentityAnonymous {
				writeDenied(w, "UNAUTHORIZED", "authentication required")
				return
			}
			if identity.Kind != model.IdentityCustom || identity.Claims.Role == nil {
				writeDenied(w, "FORBIDDEN", "insufficient permissions")
				return
			}
			for _, role := range allowedRoles {
				if strings.EqualFold(role, *identity.Claims.Role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeDenied(w, "FORBIDDEN", "insufficient permissions")
		})
	}
}

func grantsAny(claims *model.SessionClaims, codes []string) bool {
	for _, code := range codes {
		for _, held := range claims.Permissions {
			if held == code {
				return true
			}
		}
	}
	if claims.Role != nil {
		for _, code := range codes {
			if policy.Allows(*claims.Role, []string{code}) {
				return true
			}
		}
	}
	return false
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// ContextWithIdentity is used by handler tests to inject an identity without
// running the middleware chain.
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func writeDenied(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
