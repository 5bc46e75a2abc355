package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/scribely/content-api/internal/models"
)

type PublishLogRepository interface {
	Create(ctx context.Context, entry *models.PublishingLog) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PublishingLog, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.PublishingLog, error)
}

type publishLogRepository struct {
	db *sql.DB
}

func NewPublishLogRepository(db *sql.DB) PublishLogRepository {
	return &publishLogRepository{db: db}
}

func (r *publishLogRepository) Create(ctx context.Context, entry *models.PublishingLog) (int64, error) {
	query := `
		INSERT INTO publishing_logs (user_id, post_id, connection_id, platform, success, remote_id, remote_url, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.UserID, entry.PostID, entry.ConnectionID, entry.Platform, entry.Success, entry.RemoteID, entry.RemoteURL, entry.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publishLogRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PublishingLog, error) {
	query := `SELECT id, user_id, post_id, connection_id, platform, success, remote_id, remote_url, error_message, created_at FROM publishing_logs WHERE post_id = $1`
	return r.list(ctx, query, postID)
}

func (r *publishLogRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.PublishingLog, error) {
	query := `SELECT id, user_id, post_id, connection_id, platform, success, remote_id, remote_url, error_message, created_at FROM publishing_logs WHERE user_id = $1 ORDER BY id DESC`
	return r.list(ctx, query, userID)
}

func (r *publishLogRepository) list(ctx context.Context, query string, arg int64) ([]*models.PublishingLog, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PublishingLog
	for rows.Next() {
		var e models.PublishingLog
		err := rows.Scan(&e.ID, &e.UserID, &e.PostID, &e.ConnectionID, &e.Platform, &e.Success, &e.RemoteID, &e.RemoteURL, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
