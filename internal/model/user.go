package model

import "time"

type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
)

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	RoleID       *string    `json:"role_id"`
	Status       UserStatus `json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicUser is the login/me projection of a user. Password material never
// leaves the service layer.
type PublicUser struct {
	ID          string            `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	Role        *string           `json:"role"`
	Permissions []string          `json:"permissions"`
	Employee    *EmployeeSnapshot `json:"employee"`
	LastLoginAt time.Time         `json:"last_login_at"`
}
