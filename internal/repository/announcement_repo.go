package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"hr-portal/internal/model"
)

type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]model.Announcement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, body, author_id, created_at FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	announcements := make([]model.Announcement, 0)
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.AuthorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (r *AnnouncementRepository) Create(ctx context.Context, title string, body string, authorID *string) (model.Announcement, error) {
	var a model.Announcement
	err := r.pool.QueryRow(ctx,
		`INSERT INTO announcements (title, body, author_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, body, author_id, created_at`,
		title, body, authorID).
		Scan(&a.ID, &a.Title, &a.Body, &a.AuthorID, &a.CreatedAt)
	if err != nil {
		return model.Announcement{}, fmt.Errorf("create announcement: %w", err)
	}
	return a, nil
}
