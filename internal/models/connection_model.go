package models

import (
	"database/sql"
	"time"
)

// SocialConnection stores one linked publishing target. Credentials is an
// AES-GCM encrypted JSON blob whose shape only the matching platform
// adapter understands.
type SocialConnection struct {
	ID          int64        `db:"id" json:"id"`
	UserID      int64        `db:"user_id" json:"user_id"`
	Platform    string       `db:"platform" json:"platform"`
	AccountName string       `db:"account_name" json:"account_name"`
	Credentials string       `db:"credentials" json:"-"`
	ExpiresAt   sql.NullTime `db:"expires_at" json:"expires_at"`
	Active      bool         `db:"active" json:"active"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	PlatformWordPress = "wordpress"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedin  = "linkedin"
	PlatformTwitter   = "twitter"
)
