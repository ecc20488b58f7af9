package services

import (
	"context"

	"blenderforge/internal/domain/models"
)

// ProfileService defines business logic operations for user profiles
type ProfileService interface {
	// GetProfile retrieves a profile by username
	GetProfile(ctx context.Context, username string) (*models.Profile, error)

	// GetOwnProfile retrieves the caller's profile, creating a stub row on
	// first access
	GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error)

	// UpdateProfile applies a partial update, validating usernames and
	// social platform IDs
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Profile, error)

	// UpdateAvatar uploads a new avatar and stores its URL
	UpdateAvatar(ctx context.Context, userID string, upload *PendingUpload) (*models.Profile, error)
}

// CategoryService defines read operations for content categories
type CategoryService interface {
	// ListCategories lists categories for the given kind
	ListCategories(ctx context.Context, kind string) ([]models.Category, error)
}

// StatsService defines platform-wide aggregate reads
type StatsService interface {
	// PlatformStats returns the landing-page snapshot
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}
