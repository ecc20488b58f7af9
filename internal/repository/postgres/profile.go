package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
)

// PostgresProfileRepository implements the ProfileRepository interface
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *RepositoryConfig) repositories.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const profileColumns = `id, username, display_name, bio, avatar_url, social_links, is_supporter, payment_account_id, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Username, &p.DisplayName, &p.Bio, &p.AvatarURL,
		&p.SocialLinks, &p.IsSupporter, &p.PaymentAccountID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a profile by auth user ID
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, profileColumns, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	profile, err := scanProfile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// GetByUsername retrieves a profile by username
func (r *PostgresProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, profileColumns, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	profile, err := scanProfile(executor.QueryRow(ctx, query, username))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile %s: %w", username, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get profile by username: %w", err)
	}
	return profile, nil
}

// Upsert creates or replaces the caller's profile row
func (r *PostgresProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, username, display_name, bio, avatar_url, social_links, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			avatar_url = EXCLUDED.avatar_url,
			social_links = EXCLUDED.social_links,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		profile.ID,
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.AvatarURL,
		profile.SocialLinks,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			// Username collision (the id conflict is handled by the upsert)
			return &domain.ConflictError{
				Message:      fmt.Sprintf("username '%s' is taken", profile.Username),
				ResourceType: "profile",
			}
		}
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// Update applies a partial update to the caller's profile
func (r *PostgresProfileRepository) Update(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	idx := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if req.Username != nil {
		addSet("username", *req.Username)
	}
	if req.DisplayName != nil {
		addSet("display_name", *req.DisplayName)
	}
	if req.Bio != nil {
		addSet("bio", *req.Bio)
	}
	if req.AvatarURL != nil {
		addSet("avatar_url", *req.AvatarURL)
	}
	if req.SocialLinks != nil {
		addSet("social_links", *req.SocialLinks)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id = $%d
		RETURNING %s
	`, r.tables.Profiles, strings.Join(sets, ", "), idx, profileColumns)
	args = append(args, id)

	executor := GetExecutor(ctx, r.pool)
	profile, err := scanProfile(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return nil, &domain.ConflictError{
				Message:      "username is taken",
				ResourceType: "profile",
			}
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// SetSupporter flags a profile as a supporter
func (r *PostgresProfileRepository) SetSupporter(ctx context.Context, id string, isSupporter bool) error {
	query := fmt.Sprintf(`UPDATE %s SET is_supporter = $1, updated_at = NOW() WHERE id = $2`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, isSupporter, id)
	if err != nil {
		return fmt.Errorf("set supporter flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
