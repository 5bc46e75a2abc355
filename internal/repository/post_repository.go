package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/scribely/content-api/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	ClaimPending(ctx context.Context, postID int64) (bool, error)
	UpdateStatusFrom(ctx context.Context, postID int64, from, to string) (bool, error)
	UpdatePending(ctx context.Context, post *models.ScheduledPost) (bool, error)
	ListDuePending(ctx context.Context, due time.Time) ([]*models.ScheduledPost, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (user_id, content_id, title, body, image_urls, scheduled_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.ContentID, post.Title, post.Body, pq.Array(post.ImageURLs), post.ScheduledTime, models.PostStatusPending).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.ContentID, post.Title, post.Body, pq.Array(post.ImageURLs), post.ScheduledTime, models.PostStatusPending).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT id, user_id, content_id, title, body, image_urls, scheduled_time, status, created_at, updated_at FROM scheduled_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.ScheduledPost
	err := row.Scan(&post.ID, &post.UserID, &post.ContentID, &post.Title, &post.Body, pq.Array(&post.ImageURLs), &post.ScheduledTime, &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	query := `SELECT id, user_id, content_id, title, body, image_urls, scheduled_time, status, created_at, updated_at FROM scheduled_posts WHERE user_id = $1 ORDER BY scheduled_time DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		var post models.ScheduledPost
		err := rows.Scan(&post.ID, &post.UserID, &post.ContentID, &post.Title, &post.Body, pq.Array(&post.ImageURLs), &post.ScheduledTime, &post.Status, &post.CreatedAt, &post.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM scheduled_posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

// ClaimPending is the scheduler's mutual-exclusion point: the conditional
// UPDATE succeeds for exactly one caller, so a queue redelivery racing a
// cron sweep cannot both process the same post.
func (r *postRepository) ClaimPending(ctx context.Context, postID int64) (bool, error) {
	return r.UpdateStatusFrom(ctx, postID, models.PostStatusPending, models.PostStatusProcessing)
}

func (r *postRepository) UpdateStatusFrom(ctx context.Context, postID int64, from, to string) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), postID, from)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// UpdatePending edits title/body/images/time only while the post is still
// pending. Zero rows affected means the post has left the editable state.
func (r *postRepository) UpdatePending(ctx context.Context, post *models.ScheduledPost) (bool, error) {
	query := `
		UPDATE scheduled_posts
		SET title = $1,
			body = $2,
			image_urls = $3,
			scheduled_time = $4,
			updated_at = $5
		WHERE id = $6 AND status = $7
	`
	result, err := r.db.ExecContext(ctx, query, post.Title, post.Body, pq.Array(post.ImageURLs), post.ScheduledTime, time.Now(), post.ID, models.PostStatusPending)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) ListDuePending(ctx context.Context, due time.Time) ([]*models.ScheduledPost, error) {
	query := `SELECT id, user_id, content_id, title, body, image_urls, scheduled_time, status, created_at, updated_at FROM scheduled_posts WHERE status = $1 AND scheduled_time <= $2`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPending, due)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		var post models.ScheduledPost
		err := rows.Scan(&post.ID, &post.UserID, &post.ContentID, &post.Title, &post.Body, pq.Array(&post.ImageURLs), &post.ScheduledTime, &post.Status, &post.CreatedAt, &post.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM scheduled_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
