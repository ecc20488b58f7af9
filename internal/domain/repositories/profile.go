package repositories

import (
	"context"

	"blenderforge/internal/domain/models"
)

// ProfileRepository defines data access operations for user profiles
type ProfileRepository interface {
	// GetByID retrieves a profile by auth user ID
	GetByID(ctx context.Context, id string) (*models.Profile, error)

	// GetByUsername retrieves a profile by username
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)

	// Upsert creates or replaces the caller's profile row
	Upsert(ctx context.Context, profile *models.Profile) error

	// Update applies a partial update to the caller's profile
	Update(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error)

	// SetSupporter flags a profile as a supporter
	SetSupporter(ctx context.Context, id string, isSupporter bool) error
}

// CategoryRepository defines data access operations for content categories
type CategoryRepository interface {
	// ListByKind lists categories for articles or products, in sort order
	ListByKind(ctx context.Context, kind string) ([]models.Category, error)

	// Create creates a category (seeding and admin use)
	Create(ctx context.Context, c *models.Category) error
}

// StatsRepository computes platform-wide aggregates
type StatsRepository interface {
	// PlatformStats returns the landing-page aggregate snapshot
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}
