package service

import (
	"context"
	"strings"

	"hr-portal/internal/model"
	"hr-portal/pkg/apierror"
)

type announcementStore interface {
	List(ctx context.Context) ([]model.Announcement, error)
	Create(ctx context.Context, title string, body string, authorID *string) (model.Announcement, error)
}

type AnnouncementService struct {
	announcements announcementStore
	audit         *AuditService
}

func NewAnnouncementService(announcements announcementStore, audit *AuditService) *AnnouncementService {
	return &AnnouncementService{announcements: announcements, audit: audit}
}

func (s *AnnouncementService) List(ctx context.Context) ([]model.Announcement, error) {
	return s.announcements.List(ctx)
}

func (s *AnnouncementService) Create(ctx context.Context, authorID string, req model.AnnouncementCreateRequest) (model.Announcement, error) {
	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return model.Announcement{}, apierror.BadRequest("title and body are required")
	}

	announcement, err := s.announcements.Create(ctx, title, body, &authorID)
	if err != nil {
		return model.Announcement{}, err
	}
	s.audit.Record(ctx, &authorID, "ANNOUNCEMENT", "CREATE", "Announcement created: "+title)
	return announcement, nil
}
