package models

import (
	"database/sql"
	"time"
)

// PublishingLog is the append-only audit trail: one row per publish
// attempt against one target, scheduled or ad-hoc (PostID null).
type PublishingLog struct {
	ID           int64         `db:"id" json:"id"`
	UserID       int64         `db:"user_id" json:"user_id"`
	PostID       sql.NullInt64 `db:"post_id" json:"post_id"`
	ConnectionID int64         `db:"connection_id" json:"connection_id"`
	Platform     string        `db:"platform" json:"platform"`
	Success      bool          `db:"success" json:"success"`
	RemoteID     string        `db:"remote_id" json:"remote_id"`
	RemoteURL    string        `db:"remote_url" json:"remote_url"`
	ErrorMessage string        `db:"error_message" json:"error_message"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
