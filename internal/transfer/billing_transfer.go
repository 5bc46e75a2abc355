package transfer

import "time"

// CreditPurchaseEvent is the payment provider's webhook payload for a
// completed credit-pack purchase.
type CreditPurchaseEvent struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	CreatedAt int64  `json:"created_at"`
	Object    struct {
		ID      string `json:"id"`
		Product struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Price    int    `json:"price"`
			Currency string `json:"currency"`
			Metadata struct {
				Credits string `json:"credits"`
			} `json:"metadata"`
		} `json:"product"`
		Customer struct {
			ID        string    `json:"id"`
			Email     string    `json:"email"`
			Name      string    `json:"name"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"customer"`
		Status            string `json:"status"`
		LastTransactionID string `json:"last_transaction_id"`
	} `json:"object"`
}
