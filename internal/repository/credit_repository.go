package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/scribely/content-api/internal/models"
)

// ErrInsufficientBalance is returned when a debit would drive the account
// balance below zero. The balance and the transaction log are untouched.
var ErrInsufficientBalance = errors.New("insufficient credit balance")

type CreditRepository interface {
	Debit(ctx context.Context, userID, amount int64, reason string) (int64, error)
	Credit(ctx context.Context, userID, amount int64, reason string) (int64, error)
	Balance(ctx context.Context, userID int64) (int64, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.CreditTransaction, error)
}

type creditRepository struct {
	db *sql.DB
}

func NewCreditRepository(db *sql.DB) CreditRepository {
	return &creditRepository{db: db}
}

// Debit performs the balance check and the mutation as one conditional
// UPDATE inside a transaction, so two concurrent debits on the same
// account can never both pass the check when only one can afford it.
func (r *creditRepository) Debit(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET credits = credits - $1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND credits >= $1
		RETURNING credits
	`
	var newBalance int64
	err = tx.QueryRowContext(ctx, query, amount, userID).Scan(&newBalance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrInsufficientBalance
		}
		slog.Info(err.Error())
		return 0, err
	}

	insertQuery := `INSERT INTO credit_transactions (user_id, amount, reason) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, insertQuery, userID, -amount, reason); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return newBalance, nil
}

func (r *creditRepository) Credit(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET credits = credits + $1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING credits
	`
	var newBalance int64
	err = tx.QueryRowContext(ctx, query, amount, userID).Scan(&newBalance)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	insertQuery := `INSERT INTO credit_transactions (user_id, amount, reason) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, insertQuery, userID, amount, reason); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return newBalance, nil
}

func (r *creditRepository) Balance(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT credits FROM users WHERE id = $1`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&balance)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return balance, nil
}

func (r *creditRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.CreditTransaction, error) {
	query := `
		SELECT id, user_id, amount, reason, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var txs []*models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Reason, &t.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}
