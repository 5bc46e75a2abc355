package models

import "time"

// CreditTransaction is one row of the append-only ledger. The account
// balance is always reconstructable as the sum of its amounts.
type CreditTransaction struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Amount    int64     `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
