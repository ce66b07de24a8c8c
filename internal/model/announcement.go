package model

import "time"

type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	AuthorID  *string   `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
