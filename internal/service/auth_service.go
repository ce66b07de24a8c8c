package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hr-portal/internal/model"
	"hr-portal/internal/ratelimit"
	"hr-portal/internal/token"
	"hr-portal/pkg/apierror"
)

type userStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

type sessionStore interface {
	Create(ctx context.Context, jti string, userID string, createdAt time.Time) error
	Revoke(ctx context.Context, jti string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type roleStore interface {
	RoleName(ctx context.Context, roleID string) (string, error)
	PermissionCodes(ctx context.Context, roleID string) ([]string, error)
}

type employeeStore interface {
	SnapshotByUserID(ctx context.Context, userID string) (*model.EmployeeSnapshot, error)
	SnapshotByEmail(ctx context.Context, email string) (*model.EmployeeSnapshot, error)
}

type providerVerifier interface {
	VerifySession(ctx context.Context, rawIDToken string) (*model.ProviderSession, error)
}

// RateLimitError carries the window reset time so the handler can emit a
// Retry-After hint.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return "too many login attempts"
}

func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(time.Until(e.ResetAt).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

type AuthService struct {
	codec          *token.Codec
	users          userStore
	sessions       sessionStore
	roles          roleStore
	employees      employeeStore
	audit          *AuditService
	limiter        *ratelimit.Window
	provider       providerVerifier // nil when the secondary provider is not configured
	sessionTTL     time.Duration
	allowPlaintext bool
	now            func() time.Time
}

func NewAuthService(
	codec *token.Codec,
	users userStore,
	sessions sessionStore,
	roles roleStore,
	employees employeeStore,
	audit *AuditService,
	limiter *ratelimit.Window,
	provider providerVerifier,
	sessionTTL time.Duration,
	allowPlaintext bool,
) *AuthService {
	return &AuthService{
		codec:          codec,
		users:          users,
		sessions:       sessions,
		roles:          roles,
		employees:      employees,
		audit:          audit,
		limiter:        limiter,
		provider:       provider,
		sessionTTL:     sessionTTL,
		allowPlaintext: allowPlaintext,
		now:            time.Now,
	}
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

type LoginResult struct {
	Token string
	User  model.PublicUser
}

// Login runs the credential pipeline: rate limit, user resolution, status
// gate, password verification, role/permission load, employee snapshot,
// best-effort bookkeeping, session issuance, token mint. The CSRF check
// happens in the handler, which owns the response cookies.
func (s *AuthService) Login(ctx context.Context, identifier string, password string, clientIP string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)

	rl := s.limiter.Allow("login:" + clientIP + ":" + strings.ToLower(identifier))
	if !rl.OK {
		return LoginResult{}, &RateLimitError{ResetAt: rl.ResetAt}
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		// Same response as a wrong password so accounts cannot be enumerated.
		return LoginResult{}, apierror.Unauthorized("invalid credentials")
	}

	if user.Status != model.StatusActive {
		return LoginResult{}, apierror.Forbidden("account inactive")
	}

	if !s.verifyPassword(user.PasswordHash, password) {
		return LoginResult{}, apierror.Unauthorized("invalid credentials")
	}

	var roleName *string
	permissions := []string{}
	if user.RoleID != nil {
		if name, err := s.roles.RoleName(ctx, *user.RoleID); err != nil {
			slog.Warn("login: role lookup failed", "user_id", user.ID, "error", err)
		} else if name != "" {
			roleName = &name
		}
		if codes, err := s.roles.PermissionCodes(ctx, *user.RoleID); err != nil {
			slog.Warn("login: permission lookup failed", "user_id", user.ID, "error", err)
		} else {
			permissions = codes
		}
	}

	employee, err := s.employees.SnapshotByUserID(ctx, user.ID)
	if err != nil {
		slog.Warn("login: employee lookup failed", "user_id", user.ID, "error", err)
		employee = nil
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		slog.Warn("login: last-login update failed", "user_id", user.ID, "error", err)
	}
	s.audit.Record(ctx, &user.ID, "LOGIN", "LOGIN", "User login")

	// Single active session per user: revoke prior sessions, then persist the
	// new one. Both are best-effort; a session row that fails to persist
	// leaves the token valid but unrevocable until the next login.
	jti := uuid.NewString()
	if err := s.sessions.RevokeAllForUser(ctx, user.ID, now); err != nil {
		slog.Warn("login: revoking prior sessions failed", "user_id", user.ID, "error", err)
	}
	if err := s.sessions.Create(ctx, jti, user.ID, now); err != nil {
		slog.Warn("login: session row not persisted; session cannot be revoked", "user_id", user.ID, "jti", jti, "error", err)
	}

	claims := model.SessionClaims{
		UserID:      user.ID,
		Email:       user.Email,
		Username:    user.Username,
		Role:        roleName,
		Permissions: permissions,
		JTI:         jti,
		Employee:    employee,
		LastLoginAt: now,
	}
	raw, err := s.codec.Mint(claims, s.sessionTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("mint session token: %w", err)
	}

	return LoginResult{
		Token: raw,
		User: model.PublicUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Role:        roleName,
			Permissions: permissions,
			Employee:    employee,
			LastLoginAt: now,
		},
	}, nil
}

// verifyPassword dispatches on the stored material's prefix. Anything without
// a recognized strong-hash prefix falls back to plaintext equality when the
// legacy compatibility flag is on; with the flag off such accounts always
// fail verification.
func (s *AuthService) verifyPassword(stored string, given string) bool {
	switch {
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	case strings.HasPrefix(stored, "$argon2"):
		return false // not supported
	default:
		// Legacy plaintext storage.
		return s.allowPlaintext && stored != "" && stored == given
	}
}

// Logout revokes the session behind the raw token, best-effort. An
// unverifiable token is ignored; logout succeeds regardless.
func (s *AuthService) Logout(ctx context.Context, rawToken string) {
	if rawToken == "" {
		return
	}
	claims, err := s.codec.Verify(rawToken)
	if err != nil {
		return
	}
	if err := s.sessions.Revoke(ctx, claims.JTI, s.now().UTC()); err != nil {
		slog.Warn("logout: session revocation failed", "jti", claims.JTI, "error", err)
	}
	s.audit.Record(ctx, &claims.UserID, "LOGIN", "LOGOUT", "User logout")
}

// ResolveIdentity decides who the caller is: the custom session cookie wins
// when it verifies and is not revoked, the provider session is the fallback,
// anything else is anonymous. Revocation-check failures count as revoked.
func (s *AuthService) ResolveIdentity(ctx context.Context, customToken string, providerToken string) model.Identity {
	if customToken != "" {
		if claims, err := s.codec.Verify(customToken); err == nil {
			revoked, rerr := s.sessions.IsRevoked(ctx, claims.JTI)
			if rerr != nil {
				slog.Warn("identity: revocation check failed; treating session as revoked", "jti", claims.JTI, "error", rerr)
				revoked = true
			}
			if !revoked {
				return model.Identity{Kind: model.IdentityCustom, Claims: &claims}
			}
		}
	}

	if providerToken != "" && s.provider != nil {
		if ps, err := s.provider.VerifySession(ctx, providerToken); err == nil {
			return model.Identity{Kind: model.IdentityProvider, Provider: ps}
		}
	}

	return model.Anonymous()
}

// Me builds the identity payload for the me endpoint. For a custom session
// lacking an employee linkage it refreshes the linkage and returns the
// re-minted token so the handler can overwrite the cookie; the returned
// token is empty when no refresh happened.
func (s *AuthService) Me(ctx context.Context, identity model.Identity) (model.MeData, string) {
	switch identity.Kind {
	case model.IdentityCustom:
		return s.meFromClaims(ctx, *identity.Claims)
	case model.IdentityProvider:
		return s.meFromProvider(ctx, *identity.Provider), ""
	default:
		return model.MeData{Permissions: []string{}}, ""
	}
}

func (s *AuthService) meFromClaims(ctx context.Context, claims model.SessionClaims) (model.MeData, string) {
	me := model.MeData{
		User:        &model.MeUser{ID: claims.UserID, Email: claims.Email},
		Employee:    claims.Employee,
		Permissions: claims.Permissions,
	}
	if claims.Username != "" {
		name := claims.Username
		me.User.Name = &name
	}
	if claims.Role != nil {
		me.Role = &model.MeRole{Name: *claims.Role}
	}
	if me.Permissions == nil {
		me.Permissions = []string{}
	}

	// Older tokens may predate role embedding; fill from the datastore.
	if me.Role == nil && claims.Email != "" {
		if user, err := s.users.FindByEmail(ctx, claims.Email); err == nil && user.RoleID != nil {
			if name, err := s.roles.RoleName(ctx, *user.RoleID); err == nil && name != "" {
				me.Role = &model.MeRole{Name: name}
			}
			if len(me.Permissions) == 0 {
				if codes, err := s.roles.PermissionCodes(ctx, *user.RoleID); err == nil {
					me.Permissions = codes
				}
			}
		}
	}

	refreshed := ""
	if me.Employee == nil {
		newToken, snapshot, err := s.RefreshEmployeeLinkage(ctx, claims)
		if err != nil {
			slog.Warn("identity: employee linkage refresh failed", "user_id", claims.UserID, "error", err)
		} else if snapshot != nil {
			me.Employee = snapshot
			refreshed = newToken
		}
	}

	return me, refreshed
}

func (s *AuthService) meFromProvider(ctx context.Context, ps model.ProviderSession) model.MeData {
	me := model.MeData{
		User:        &model.MeUser{ID: ps.Subject, Email: ps.Email},
		Permissions: []string{},
	}
	if ps.Name != "" {
		name := ps.Name
		me.User.Name = &name
	}
	if ps.Email == "" {
		return me
	}

	if user, err := s.users.FindByEmail(ctx, ps.Email); err == nil {
		me.User.ID = user.ID
		if user.RoleID != nil {
			if name, err := s.roles.RoleName(ctx, *user.RoleID); err == nil && name != "" {
				me.Role = &model.MeRole{Name: name}
			}
			if codes, err := s.roles.PermissionCodes(ctx, *user.RoleID); err == nil {
				me.Permissions = codes
			}
		}
	}
	if snapshot, err := s.employees.SnapshotByEmail(ctx, ps.Email); err == nil && snapshot != nil {
		me.Employee = snapshot
	}

	return me
}

// RefreshEmployeeLinkage looks up the employee record for a session that
// lacks one and re-mints the token with the linkage embedded. The jti and the
// original issued-at/expiration are preserved: this is an enrichment, not a
// new login. Returns ("", nil, nil) when no linkage exists.
func (s *AuthService) RefreshEmployeeLinkage(ctx context.Context, claims model.SessionClaims) (string, *model.EmployeeSnapshot, error) {
	snapshot, err := s.employees.SnapshotByUserID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}
	if snapshot == nil && claims.Email != "" {
		snapshot, err = s.employees.SnapshotByEmail(ctx, claims.Email)
		if err != nil {
			return "", nil, err
		}
	}
	if snapshot == nil {
		return "", nil, nil
	}

	claims.Employee = snapshot
	raw, err := s.codec.MintWithExpiry(claims, claims.IssuedAt, claims.ExpiresAt)
	if err != nil {
		return "", nil, err
	}
	return raw, snapshot, nil
}
