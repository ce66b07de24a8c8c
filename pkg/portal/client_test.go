package portal

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hr-portal/internal/csrf"
	"hr-portal/internal/event"
	"hr-portal/internal/guard"
	"hr-portal/internal/handler"
	"hr-portal/internal/idle"
	"hr-portal/internal/middleware"
	"hr-portal/internal/model"
	"hr-portal/internal/ratelimit"
	"hr-portal/internal/service"
	"hr-portal/internal/token"
)

type memUsers struct {
	user model.User
}

func (m *memUsers) FindByIdentifier(_ context.Context, identifier string) (model.User, error) {
	if identifier == m.user.Email || identifier == m.user.Username {
		return m.user, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return m.FindByIdentifier(ctx, email)
}

func (m *memUsers) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error { return nil }

type memSessions struct {
	state map[string]bool // jti -> revoked
}

func (m *memSessions) Create(_ context.Context, jti string, _ string, _ time.Time) error {
	m.state[jti] = false
	return nil
}

func (m *memSessions) Revoke(_ context.Context, jti string, _ time.Time) error {
	m.state[jti] = true
	return nil
}

func (m *memSessions) RevokeAllForUser(_ context.Context, _ string, _ time.Time) error { return nil }

func (m *memSessions) IsRevoked(_ context.Context, jti string) (bool, error) {
	revoked, exists := m.state[jti]
	return !exists || revoked, nil
}

type memRoles struct{}

func (memRoles) RoleName(_ context.Context, _ string) (string, error) { return "Admin", nil }
func (memRoles) PermissionCodes(_ context.Context, _ string) ([]string, error) {
	return []string{"EMP_VIEW", "LEAVE_APPROVE"}, nil
}

type memEmployees struct{}

func (memEmployees) SnapshotByUserID(_ context.Context, _ string) (*model.EmployeeSnapshot, error) {
	return &model.EmployeeSnapshot{ID: 1, FullName: "Andi Wijaya"}, nil
}

func (memEmployees) SnapshotByEmail(_ context.Context, _ string) (*model.EmployeeSnapshot, error) {
	return nil, nil
}

type memAudit struct{}

func (memAudit) Insert(_ context.Context, _ model.AuditEntry) error { return nil }

func startPortalServer(t *testing.T) *httptest.Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	roleID := "role-admin"

	authService := service.NewAuthService(
		token.NewCodec("portal-test-secret"),
		&memUsers{user: model.User{
			ID: "user-1", Username: "andi", Email: "andi@example.com",
			PasswordHash: string(hash), RoleID: &roleID, Status: model.StatusActive,
		}},
		&memSessions{state: map[string]bool{}},
		memRoles{},
		memEmployees{},
		service.NewAuditService(memAudit{}),
		ratelimit.NewWindow(5, time.Minute),
		nil,
		time.Hour,
		false,
	)

	csrfManager := csrf.NewManager(3600, false)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService, csrfManager, false)

	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(auth chi.Router) {
		auth.Use(authMiddleware.Resolve)
		auth.Get("/csrf", authHandler.Csrf)
		auth.Post("/login", authHandler.Login)
		auth.Post("/logout", authHandler.Logout)
		auth.Get("/me", authHandler.Me)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestClientLoginAndIdentity(t *testing.T) {
	server := startPortalServer(t)
	client, err := New(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := client.Login(ctx, "andi@example.com", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, user.Role)
	assert.Equal(t, "Admin", *user.Role)

	me, err := client.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, me.User)
	assert.Equal(t, "user-1", me.User.ID)
	require.NotNil(t, me.Employee)
	assert.Equal(t, "Andi Wijaya", me.Employee.FullName)
}

func TestClientLoginSelfHealsCSRF(t *testing.T) {
	server := startPortalServer(t)
	client, err := New(server.URL)
	require.NoError(t, err)

	// Poison the cached token so the first attempt fails the double-submit
	// check; the transparent retry must use the healed cookie and succeed.
	client.csrfToken = "stale-token"

	user, err := client.Login(context.Background(), "andi", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "andi", user.Username)
}

func TestClientSurfacesAPIErrorViaErrorsAs(t *testing.T) {
	server := startPortalServer(t)
	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "andi", "wrong-password")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestGuardOverClient(t *testing.T) {
	server := startPortalServer(t)
	client, err := New(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Login(ctx, "andi", "s3cret")
	require.NoError(t, err)

	var redirected string
	roleGuard := guard.NewRoleGuard(client, []string{"Admin"}, "", func(dest string) { redirected = dest })
	state := roleGuard.Run(ctx, nil)
	assert.Equal(t, guard.StateAllow, state)
	assert.Empty(t, redirected)

	require.NoError(t, client.Logout(ctx))

	roleGuard = guard.NewRoleGuard(client, []string{"Admin"}, "", func(dest string) { redirected = dest })
	state = roleGuard.Run(ctx, nil)
	assert.Equal(t, guard.StateDeny, state)
	assert.Equal(t, "/login", redirected)
}

func TestIdleMonitorLogsClientOut(t *testing.T) {
	server := startPortalServer(t)
	client, err := New(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Login(ctx, "andi", "s3cret")
	require.NoError(t, err)

	redirects := make(chan string, 1)
	monitor := client.NewIdleMonitor(event.NewBus(), idle.Config{
		IdleTimeout: 50 * time.Millisecond,
		Ping:        10 * time.Millisecond,
	}, func(dest string) { redirects <- dest })
	monitor.Start()
	defer monitor.Stop()

	select {
	case dest := <-redirects:
		assert.Equal(t, "/login", dest)
	case <-time.After(2 * time.Second):
		t.Fatal("idle monitor did not fire")
	}

	<-monitor.Fired()
	me, err := client.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, me.User)
}
