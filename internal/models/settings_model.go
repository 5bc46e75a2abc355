package models

import "time"

// Setting is one operator-configured key under a category, e.g.
// ("generation", "webhook_url") or ("pricing", "length_medium").
type Setting struct {
	ID        int64     `db:"id" json:"id"`
	Category  string    `db:"category" json:"category"`
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
