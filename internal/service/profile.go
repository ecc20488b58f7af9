package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blenderforge/internal/config"
	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/platforms"
	"blenderforge/internal/storage"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// profileService implements the ProfileService interface
type profileService struct {
	profileRepo repositories.ProfileRepository
	uploader    storage.Uploader
	registry    *platforms.Registry
	logger      *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	uploader storage.Uploader,
	registry *platforms.Registry,
	logger *slog.Logger,
) services.ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		uploader:    uploader,
		registry:    registry,
		logger:      logger,
	}
}

// GetProfile retrieves a profile by username
func (s *profileService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	return s.profileRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
}

// GetOwnProfile retrieves the caller's profile, creating a stub row on
// first access so the account page always has something to edit.
func (s *profileService) GetOwnProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	stub := &models.Profile{
		ID:          userID,
		Username:    "user-" + shortID(userID),
		SocialLinks: map[string]string{},
	}
	if err := s.profileRepo.Upsert(ctx, stub); err != nil {
		return nil, err
	}
	s.logger.Info("profile created", "user_id", userID, "username", stub.Username)
	return stub, nil
}

// UpdateProfile applies a partial update
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validateUpdate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.Username != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Username))
		req.Username = &normalized
	}

	profile, err := s.profileRepo.Update(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID)
	return profile, nil
}

// UpdateAvatar uploads a new avatar and stores its URL
func (s *profileService) UpdateAvatar(ctx context.Context, userID string, upload *services.PendingUpload) (*models.Profile, error) {
	in := storage.UploadInput{
		Bucket:      storage.BucketAvatars,
		OwnerID:     userID,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	}
	if err := storage.ValidateUpload(in); err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.profileRepo.Update(ctx, userID, &models.UpdateProfileRequest{AvatarURL: &url})
}

func (s *profileService) validateUpdate(req *models.UpdateProfileRequest) error {
	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if err := validation.Validate(username,
			validation.Required,
			validation.Length(3, config.MaxUsernameLength),
			validation.Match(usernamePattern).Error("username may only contain lowercase letters, digits, hyphens and underscores"),
		); err != nil {
			return fmt.Errorf("username: %v", err)
		}
	}
	if req.Bio != nil {
		if err := validation.Validate(*req.Bio, validation.Length(0, config.MaxBioLength)); err != nil {
			return fmt.Errorf("bio: %v", err)
		}
	}
	if req.SocialLinks != nil {
		for platformID := range *req.SocialLinks {
			if _, err := s.registry.SocialPlatform(platformID); err != nil {
				return err
			}
		}
	}
	return nil
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// categoryService implements the CategoryService interface
type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repositories.CategoryRepository) services.CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(ctx context.Context, kind string) ([]models.Category, error) {
	if kind != "article" && kind != "product" {
		return nil, fmt.Errorf("%w: kind must be \"article\" or \"product\"", domain.ErrValidation)
	}
	return s.categoryRepo.ListByKind(ctx, kind)
}

// statsService implements the StatsService interface
type statsService struct {
	statsRepo repositories.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo repositories.StatsRepository) services.StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	return s.statsRepo.PlatformStats(ctx)
}
