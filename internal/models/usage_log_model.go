package models

import "time"

// UsageLog records every generation invocation, charged or not. It is the
// system of record for support disputes about credit charges.
type UsageLog struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Action        string    `db:"action" json:"action"`
	RequestParams string    `db:"request_params" json:"request_params"`
	CostBreakdown string    `db:"cost_breakdown" json:"cost_breakdown"`
	CreditsUsed   int64     `db:"credits_used" json:"credits_used"`
	ResultTitle   string    `db:"result_title" json:"result_title"`
	WordCount     int       `db:"word_count" json:"word_count"`
	Success       bool      `db:"success" json:"success"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

const (
	ActionGenerateArticle = "generate_article"
	ActionGenerateImage   = "generate_image"
)
