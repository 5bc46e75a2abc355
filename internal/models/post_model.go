package models

import (
	"database/sql"
	"time"
)

type ScheduledPost struct {
	ID            int64         `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	ContentID     sql.NullInt64 `db:"content_id" json:"content_id"`
	Title         string        `db:"title" json:"title"`
	Body          string        `db:"body" json:"body"`
	ImageURLs     []string      `db:"image_urls" json:"image_urls"`
	ScheduledTime time.Time     `db:"scheduled_time" json:"scheduled_time"`
	Status        string        `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// PostTarget ties one scheduled post to one social connection.
type PostTarget struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	Platform     string    `db:"platform" json:"platform"`
	ConnectionID int64     `db:"connection_id" json:"connection_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusPending    = "pending"
	PostStatusProcessing = "processing"
	PostStatusCompleted  = "completed"
	PostStatusFailed     = "failed"
	PostStatusCancelled  = "cancelled"
)
