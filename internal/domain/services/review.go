package services

import (
	"context"

	"blenderforge/internal/domain/models"
)

// ReviewService defines business logic operations for product reviews
type ReviewService interface {
	// CreateReview creates a review and refreshes the product's rating
	// aggregate in the same transaction. Requires a prior purchase for
	// paid products.
	CreateReview(ctx context.Context, productID, userID string, req *models.CreateReviewRequest) (*models.Review, error)

	// GetOwnReview retrieves the caller's review of a product
	GetOwnReview(ctx context.Context, productID, userID string) (*models.Review, error)

	// UpdateReview updates a review and refreshes the aggregate
	UpdateReview(ctx context.Context, id, userID string, req *models.UpdateReviewRequest) (*models.Review, error)

	// DeleteReview deletes a review and refreshes the aggregate
	DeleteReview(ctx context.Context, id, userID string) error

	// ListReviews lists a product's reviews, newest first
	ListReviews(ctx context.Context, productID string, limit, offset int) ([]models.Review, error)
}
