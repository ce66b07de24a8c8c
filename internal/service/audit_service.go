package service

import (
	"context"
	"log/slog"
	"time"

	"hr-portal/internal/model"
)

type auditStore interface {
	Insert(ctx context.Context, entry model.AuditEntry) error
}

// AuditService writes activity-log rows. Recording is always best-effort; a
// failed insert is logged and never propagated to the caller.
type AuditService struct {
	store auditStore
	now   func() time.Time
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (s *AuditService) Record(ctx context.Context, userID *string, entityType string, action string, description string) {
	entry := model.AuditEntry{
		UserID:      userID,
		EntityType:  entityType,
		Action:      action,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		slog.Warn("audit record dropped", "entity_type", entityType, "action", action, "error", err)
	}
}
