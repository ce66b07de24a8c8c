package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-portal/internal/model"
)

type stubResolver struct {
	identities map[string]model.Identity
}

func (s *stubResolver) ResolveIdentity(_ context.Context, customToken string, _ string) model.Identity {
	if identity, ok := s.identities[customToken]; ok {
		return identity
	}
	return model.Anonymous()
}

func customIdentity(role *string, permissions ...string) model.Identity {
	return model.Identity{
		Kind: model.IdentityCustom,
		Claims: &model.SessionClaims{
			UserID:      "user-1",
			JTI:         "jti-1",
			Role:        role,
			Permissions: permissions,
		},
	}
}

func runChain(t *testing.T, m *AuthMiddleware, wrap func(http.Handler) http.Handler, cookie string) *httptest.ResponseRecorder {
	t.Helper()

	final := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: model.SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	m.Resolve(wrap(final)).ServeHTTP(rec, req)
	return rec
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	m := NewAuthMiddleware(&stubResolver{identities: map[string]model.Identity{}})

	rec := runChain(t, m, m.RequireSession, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSessionAdmitsCustomSession(t *testing.T) {
	m := NewAuthMiddleware(&stubResolver{identities: map[string]model.Identity{
		"good": customIdentity(nil),
	}})

	rec := runChain(t, m, m.RequireSession, "good")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyPermission(t *testing.T) {
	hr := "HR"
	karyawan := "Karyawan"

	tests := []struct {
		name     string
		identity model.Identity
		codes    []string
		want     int
	}{
		{
			name:     "held permission admits",
			identity: customIdentity(nil, "LEAVE_APPROVE"),
			codes:    []string{"LEAVE_APPROVE"},
			want:     http.StatusOK,
		},
		{
			name:     "any-of semantics",
			identity: customIdentity(nil, "EMP_VIEW"),
			codes:    []string{"EMP_EDIT", "EMP_VIEW"},
			want:     http.StatusOK,
		},
		{
			name:     "missing permission denied",
			identity: customIdentity(nil, "ATTENDANCE_LOG"),
			codes:    []string{"LEAVE_APPROVE"},
			want:     http.StatusForbidden,
		},
		{
			name:     "role override grants without explicit permission",
			identity: customIdentity(&hr),
			codes:    []string{"LEAVE_APPROVE"},
			want:     http.StatusOK,
		},
		{
			name:     "role override does not grant unlisted role",
			identity: customIdentity(&karyawan),
			codes:    []string{"LEAVE_APPROVE"},
			want:     http.StatusForbidden,
		},
		{
			name:     "provider session denied",
			identity: model.Identity{Kind: model.IdentityProvider, Provider: &model.ProviderSession{Subject: "oidc|1"}},
			codes:    []string{"LEAVE_APPROVE"},
			want:     http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(&stubResolver{identities: map[string]model.Identity{"tok": tt.identity}})
			rec := runChain(t, m, m.RequireAnyPermission(tt.codes...), "tok")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRolesCaseInsensitive(t *testing.T) {
	admin := "admin"
	m := NewAuthMiddleware(&stubResolver{identities: map[string]model.Identity{
		"tok": customIdentity(&admin),
	}})

	rec := runChain(t, m, m.RequireRoles("Admin"), "tok")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runChain(t, m, m.RequireRoles("HR"), "tok")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResolveAttachesAnonymousIdentity(t *testing.T) {
	m := NewAuthMiddleware(&stubResolver{identities: map[string]model.Identity{}})

	var got model.Identity
	var ok bool
	final := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	m.Resolve(final).ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, model.IdentityAnonymous, got.Kind)
}
