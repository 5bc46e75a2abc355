package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/scribely/content-api/internal/models"
)

type UsageLogRepository interface {
	Create(ctx context.Context, entry *models.UsageLog) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.UsageLog, error)
}

type usageLogRepository struct {
	db *sql.DB
}

func NewUsageLogRepository(db *sql.DB) UsageLogRepository {
	return &usageLogRepository{db: db}
}

func (r *usageLogRepository) Create(ctx context.Context, entry *models.UsageLog) (int64, error) {
	query := `
		INSERT INTO usage_logs (user_id, action, request_params, cost_breakdown, credits_used, result_title, word_count, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.UserID, entry.Action, entry.RequestParams, entry.CostBreakdown, entry.CreditsUsed, entry.ResultTitle, entry.WordCount, entry.Success, entry.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *usageLogRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.UsageLog, error) {
	query := `SELECT id, user_id, action, request_params, cost_breakdown, credits_used, result_title, word_count, success, error_message, created_at FROM usage_logs WHERE user_id = $1 ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.UsageLog
	for rows.Next() {
		var e models.UsageLog
		err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.RequestParams, &e.CostBreakdown, &e.CreditsUsed, &e.ResultTitle, &e.WordCount, &e.Success, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
