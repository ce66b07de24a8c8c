package model

import "time"

// EmployeeSnapshot is the denormalized employee record embedded in session
// tokens and identity responses. It may go stale until the next refresh.
type EmployeeSnapshot struct {
	ID               int64   `json:"id"`
	FullName         string  `json:"full_name"`
	Department       *string `json:"department"`
	Position         *string `json:"position"`
	EmploymentStatus *string `json:"employment_status"`
}

type Employee struct {
	ID               int64     `json:"id"`
	UserID           *string   `json:"user_id"`
	FullName         string    `json:"full_name"`
	Email            *string   `json:"email"`
	Department       *string   `json:"department"`
	Position         *string   `json:"position"`
	EmploymentStatus string    `json:"employment_status"`
	CreatedAt        time.Time `json:"created_at"`
}
