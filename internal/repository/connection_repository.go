package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/scribely/content-api/internal/models"
)

type ConnectionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, conn *models.SocialConnection) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialConnection, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialConnection, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialConnection, error)
	CheckByUserID(ctx context.Context, connectionID, userID int64) (bool, error)
	SetCredentials(ctx context.Context, connectionID int64, credentials string, expiresAt sql.NullTime) error
	Remove(ctx context.Context, id int64) error
}

type connectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, tx *sql.Tx, conn *models.SocialConnection) (int64, error) {
	insertQuery := `
		INSERT INTO social_connections (user_id, platform, account_name, credentials, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var err error
	var id int64

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, conn.UserID, conn.Platform, conn.AccountName, conn.Credentials, conn.ExpiresAt, true).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, conn.UserID, conn.Platform, conn.AccountName, conn.Credentials, conn.ExpiresAt, true).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id int64) (*models.SocialConnection, error) {
	query := `SELECT id, user_id, platform, account_name, credentials, expires_at, active, created_at, updated_at FROM social_connections WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var conn models.SocialConnection
	err := row.Scan(&conn.ID, &conn.UserID, &conn.Platform, &conn.AccountName, &conn.Credentials, &conn.ExpiresAt, &conn.Active, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &conn, nil
}

func (r *connectionRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialConnection, error) {
	query := `SELECT id, user_id, platform, account_name, credentials, expires_at, active, created_at, updated_at FROM social_connections WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var conns []*models.SocialConnection
	for rows.Next() {
		var conn models.SocialConnection
		err := rows.Scan(&conn.ID, &conn.UserID, &conn.Platform, &conn.AccountName, &conn.Credentials, &conn.ExpiresAt, &conn.Active, &conn.CreatedAt, &conn.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conns = append(conns, &conn)
	}
	return conns, rows.Err()
}

// ListInfoByUserID returns display fields only, never credential blobs.
func (r *connectionRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialConnection, error) {
	query := `SELECT id, platform, account_name, expires_at, active FROM social_connections WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var conns []*models.SocialConnection
	for rows.Next() {
		var conn models.SocialConnection
		err := rows.Scan(&conn.ID, &conn.Platform, &conn.AccountName, &conn.ExpiresAt, &conn.Active)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conns = append(conns, &conn)
	}
	return conns, rows.Err()
}

func (r *connectionRepository) CheckByUserID(ctx context.Context, connectionID, userID int64) (bool, error) {
	query := "SELECT 1 FROM social_connections WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, connectionID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *connectionRepository) SetCredentials(ctx context.Context, connectionID int64, credentials string, expiresAt sql.NullTime) error {
	query := `
		UPDATE social_connections
		SET credentials = $1,
			expires_at = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, credentials, expiresAt, time.Now(), connectionID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *connectionRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_connections WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
