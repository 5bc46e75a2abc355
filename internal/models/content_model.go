package models

import "time"

type ContentRecord struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	PlainText   string    `db:"plain_text" json:"plain_text"`
	ImageURLs   []string  `db:"image_urls" json:"image_urls"`
	CreditsUsed int64     `db:"credits_used" json:"credits_used"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
)
