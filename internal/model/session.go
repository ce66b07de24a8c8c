package model

import "time"

// Cookie names shared by handlers, middleware and the client SDK.
const (
	SessionCookieName  = "hr_session"
	ProviderCookieName = "provider_session"
)

// SessionClaims is the decoded payload of a session token. The JTI mirrors a
// row in app_sessions and is the revocation key.
type SessionClaims struct {
	UserID      string            `json:"sub"`
	Email       string            `json:"email"`
	Username    string            `json:"username,omitempty"`
	Role        *string           `json:"role"`
	Permissions []string          `json:"permissions"`
	JTI         string            `json:"jti"`
	Employee    *EmployeeSnapshot `json:"employee"`
	LastLoginAt time.Time         `json:"last_login_at"`
	IssuedAt    time.Time         `json:"iat"`
	ExpiresAt   time.Time         `json:"exp"`
}

// Session is a persisted session row keyed by JTI.
type Session struct {
	JTI       string     `json:"jti"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// SessionWithUser is the operator-facing session listing row.
type SessionWithUser struct {
	JTI       string      `json:"jti"`
	CreatedAt time.Time   `json:"created_at"`
	RevokedAt *time.Time  `json:"revoked_at"`
	User      SessionUser `json:"user"`
}

type SessionUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     *string `json:"role"`
}
