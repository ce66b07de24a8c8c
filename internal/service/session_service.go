package service

import (
	"context"
	"time"

	"hr-portal/internal/model"
)

type sessionAdminStore interface {
	Revoke(ctx context.Context, jti string, at time.Time) error
	ListWithUsers(ctx context.Context) ([]model.SessionWithUser, error)
}

// SessionService backs the operator session endpoints: list every session row
// and force-revoke one by jti.
type SessionService struct {
	sessions sessionAdminStore
	audit    *AuditService
	now      func() time.Time
}

func NewSessionService(sessions sessionAdminStore, audit *AuditService) *SessionService {
	return &SessionService{sessions: sessions, audit: audit, now: time.Now}
}

func (s *SessionService) List(ctx context.Context) ([]model.SessionWithUser, error) {
	return s.sessions.ListWithUsers(ctx)
}

func (s *SessionService) Revoke(ctx context.Context, jti string, actorID string) error {
	if err := s.sessions.Revoke(ctx, jti, s.now().UTC()); err != nil {
		return err
	}
	s.audit.Record(ctx, &actorID, "SESSION", "REVOKE", "Session "+jti+" revoked by operator")
	return nil
}
