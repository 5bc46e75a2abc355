package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/scribely/content-api/internal/models"
)

type TargetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, target *models.PostTarget) error
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostTarget, error)
	RemoveByPostID(ctx context.Context, tx *sql.Tx, postID int64) error
}

type targetRepository struct {
	db *sql.DB
}

func NewTargetRepository(db *sql.DB) TargetRepository {
	return &targetRepository{db: db}
}

func (r *targetRepository) Create(ctx context.Context, tx *sql.Tx, target *models.PostTarget) error {
	query := `INSERT INTO post_targets (post_id, platform, connection_id) VALUES ($1, $2, $3)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, target.PostID, target.Platform, target.ConnectionID)
	} else {
		_, err = r.db.ExecContext(ctx, query, target.PostID, target.Platform, target.ConnectionID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *targetRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostTarget, error) {
	query := `SELECT post_id, platform, connection_id, created_at FROM post_targets WHERE post_id = $1`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var targets []*models.PostTarget
	for rows.Next() {
		var t models.PostTarget
		err := rows.Scan(&t.PostID, &t.Platform, &t.ConnectionID, &t.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		targets = append(targets, &t)
	}
	return targets, rows.Err()
}

func (r *targetRepository) RemoveByPostID(ctx context.Context, tx *sql.Tx, postID int64) error {
	query := `DELETE FROM post_targets WHERE post_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, postID)
	} else {
		_, err = r.db.ExecContext(ctx, query, postID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
