package repositories

import (
	"context"

	"blenderforge/internal/domain/models"
)

// ProductRepository defines data access operations for marketplace products
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *models.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id string) (*models.Product, error)

	// GetBySlug retrieves a product by its URL slug
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)

	// Update updates an existing product; only the seller may update
	Update(ctx context.Context, id, sellerID string, req *models.UpdateProductRequest) (*models.Product, error)

	// Delete deletes a product; only the seller may delete
	Delete(ctx context.Context, id, sellerID string) error

	// List lists published products matching the filter
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)

	// Count counts products matching the filter (ignoring limit/offset)
	Count(ctx context.Context, filter models.ProductFilter) (int, error)

	// SlugExists reports whether a slug is already taken
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ApplyReviewAggregate sets the denormalized rating columns.
	// Call inside the same transaction as the review write.
	ApplyReviewAggregate(ctx context.Context, id string, avg float64, count int) error

	// IncrementSales bumps the sales counter
	IncrementSales(ctx context.Context, id string) error
}

// ReviewRepository defines data access operations for product reviews
type ReviewRepository interface {
	// Create creates a review; one review per user per product
	Create(ctx context.Context, review *models.Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*models.Review, error)

	// GetByProductAndUser retrieves a user's review of a product
	GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error)

	// Update updates a review; only the reviewer may update
	Update(ctx context.Context, id, userID string, req *models.UpdateReviewRequest) (*models.Review, error)

	// Delete deletes a review; only the reviewer may delete
	Delete(ctx context.Context, id, userID string) error

	// ListByProduct lists a product's reviews, newest first
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]models.Review, error)

	// Aggregate computes the current average rating and count for a product
	Aggregate(ctx context.Context, productID string) (avg float64, count int, err error)
}
