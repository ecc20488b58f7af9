package repositories

import (
	"context"

	"blenderforge/internal/domain/models"
)

// ArticleRepository defines data access operations for articles
type ArticleRepository interface {
	// Create creates a new article
	Create(ctx context.Context, article *models.Article) error

	// GetByID retrieves an article by ID
	GetByID(ctx context.Context, id string) (*models.Article, error)

	// GetBySlug retrieves an article by its URL slug
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)

	// Update updates an existing article; only the owner may update
	Update(ctx context.Context, id, authorID string, req *models.UpdateArticleRequest) (*models.Article, error)

	// Delete deletes an article; only the owner may delete
	Delete(ctx context.Context, id, authorID string) error

	// List lists articles matching the filter
	List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error)

	// Count counts articles matching the filter (ignoring limit/offset)
	Count(ctx context.Context, filter models.ArticleFilter) (int, error)

	// SlugExists reports whether a slug is already taken
	SlugExists(ctx context.Context, slug string) (bool, error)

	// IncrementViews bumps the view counter
	IncrementViews(ctx context.Context, id string) error

	// Vote records or replaces a user's vote and returns updated tallies
	Vote(ctx context.Context, id, userID string, kind models.VoteKind) (upvotes, downvotes int, err error)
}
