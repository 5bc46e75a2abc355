package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/scribely/content-api/internal/models"
)

type ContentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, record *models.ContentRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ContentRecord, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.ContentRecord, error)
	CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error)
	UpdateStatus(ctx context.Context, status string, contentID int64) error
	Remove(ctx context.Context, id int64) error
}

type contentRepository struct {
	db *sql.DB
}

func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, tx *sql.Tx, record *models.ContentRecord) (int64, error) {
	query := `
		INSERT INTO content_records (user_id, title, content, plain_text, image_urls, credits_used, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	status := record.Status
	if status == "" {
		status = models.ContentStatusDraft
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, record.UserID, record.Title, record.Content, record.PlainText, pq.Array(record.ImageURLs), record.CreditsUsed, status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, record.UserID, record.Title, record.Content, record.PlainText, pq.Array(record.ImageURLs), record.CreditsUsed, status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id int64) (*models.ContentRecord, error) {
	query := `SELECT id, user_id, title, content, plain_text, image_urls, credits_used, status, created_at, updated_at FROM content_records WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var record models.ContentRecord
	err := row.Scan(&record.ID, &record.UserID, &record.Title, &record.Content, &record.PlainText, pq.Array(&record.ImageURLs), &record.CreditsUsed, &record.Status, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &record, nil
}

func (r *contentRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.ContentRecord, error) {
	query := `SELECT id, user_id, title, content, plain_text, image_urls, credits_used, status, created_at, updated_at FROM content_records WHERE user_id = $1 ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.ContentRecord
	for rows.Next() {
		var record models.ContentRecord
		err := rows.Scan(&record.ID, &record.UserID, &record.Title, &record.Content, &record.PlainText, pq.Array(&record.ImageURLs), &record.CreditsUsed, &record.Status, &record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (r *contentRepository) CheckByUserID(ctx context.Context, contentID, userID int64) (bool, error) {
	query := "SELECT 1 FROM content_records WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, contentID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *contentRepository) UpdateStatus(ctx context.Context, status string, contentID int64) error {
	query := `
		UPDATE content_records
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), contentID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM content_records WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
