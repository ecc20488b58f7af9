package models

import (
	"time"
)

// Supporter records one completed donation. The same user may appear
// multiple times; the supporters page aggregates by user.
type Supporter struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	SessionID   string    `json:"-" db:"session_id"` // Checkout session, for idempotency
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Tier        string    `json:"tier" db:"tier"`
	Message     string    `json:"message" db:"message"`
	Public      bool      `json:"public" db:"public"` // Show on the supporters page
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	SupporterProfile *Profile `json:"supporter,omitempty"`
}

// Purchase records one completed product sale, one row per checkout session.
type Purchase struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	SessionID   string    `json:"-" db:"session_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty"`
}
