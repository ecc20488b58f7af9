package services

import (
	"context"

	"blenderforge/internal/domain/models"
)

// StartDonationRequest begins a supporter donation checkout.
type StartDonationRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Message     string `json:"message"`
	Public      bool   `json:"public"`
}

// CheckoutRedirect is the hosted-checkout handoff returned to the client.
type CheckoutRedirect struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CheckoutService defines checkout and fulfillment operations
type CheckoutService interface {
	// StartDonation creates a donation checkout session
	StartDonation(ctx context.Context, userID, email string, req *StartDonationRequest) (*CheckoutRedirect, error)

	// StartPurchase creates a product checkout session
	StartPurchase(ctx context.Context, userID, email, productID string) (*CheckoutRedirect, error)

	// VerifyDonation confirms a paid session and records the donation.
	// Idempotent: re-verifying a recorded session returns the existing row.
	VerifyDonation(ctx context.Context, sessionID string) (*models.Supporter, error)

	// VerifyPurchase confirms a paid session and records the purchase.
	// Idempotent like VerifyDonation.
	VerifyPurchase(ctx context.Context, sessionID string) (*models.Purchase, error)
}

// SupporterService defines read operations for the supporters page
type SupporterService interface {
	// ListSupporters lists public donations, newest first
	ListSupporters(ctx context.Context, limit, offset int) ([]models.Supporter, error)

	// ListUserDonations lists the caller's own donations
	ListUserDonations(ctx context.Context, userID string) ([]models.Supporter, error)

	// ListUserPurchases lists the caller's purchases
	ListUserPurchases(ctx context.Context, userID string) ([]models.Purchase, error)

	// GetPurchase retrieves the caller's purchase by checkout session ID
	GetPurchase(ctx context.Context, sessionID, userID string) (*models.Purchase, error)
}
