package model

import "time"

type AuditEntry struct {
	ID          int64     `json:"id"`
	UserID      *string   `json:"user_id"`
	EntityType  string    `json:"entity_type"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
