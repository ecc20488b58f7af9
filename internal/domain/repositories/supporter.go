package repositories

import (
	"context"

	"blenderforge/internal/domain/models"
)

// SupporterRepository defines data access operations for donations
type SupporterRepository interface {
	// Create records a completed donation
	Create(ctx context.Context, s *models.Supporter) error

	// GetBySessionID retrieves a donation by checkout session, for
	// idempotent verification
	GetBySessionID(ctx context.Context, sessionID string) (*models.Supporter, error)

	// ListPublic lists public donations for the supporters page, newest first
	ListPublic(ctx context.Context, limit, offset int) ([]models.Supporter, error)

	// ListByUser lists a user's own donations
	ListByUser(ctx context.Context, userID string) ([]models.Supporter, error)
}

// PurchaseRepository defines data access operations for product purchases
type PurchaseRepository interface {
	// Create records a completed purchase
	Create(ctx context.Context, p *models.Purchase) error

	// GetBySessionID retrieves a purchase by checkout session, for
	// idempotent verification
	GetBySessionID(ctx context.Context, sessionID string) (*models.Purchase, error)

	// HasPurchased reports whether a user owns a product
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)

	// ListByUser lists a user's purchases, newest first
	ListByUser(ctx context.Context, userID string) ([]models.Purchase, error)
}
