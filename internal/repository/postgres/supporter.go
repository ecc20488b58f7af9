package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
)

// PostgresSupporterRepository implements the SupporterRepository interface
type PostgresSupporterRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSupporterRepository creates a new supporter repository
func NewSupporterRepository(config *RepositoryConfig) repositories.SupporterRepository {
	return &PostgresSupporterRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create records a completed donation. The session_id unique constraint
// makes double verification a conflict, not a duplicate row.
func (r *PostgresSupporterRepository) Create(ctx context.Context, s *models.Supporter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, session_id, amount_cents, tier, message, public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, r.tables.Supporters)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		s.UserID,
		s.SessionID,
		s.AmountCents,
		s.Tier,
		s.Message,
		s.Public,
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "donation already recorded",
				ResourceType: "supporter",
			}
		}
		return fmt.Errorf("create supporter: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a donation by checkout session
func (r *PostgresSupporterRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Supporter, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, session_id, amount_cents, tier, message, public, created_at
		FROM %s
		WHERE session_id = $1
	`, r.tables.Supporters)

	var s models.Supporter
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, sessionID).Scan(
		&s.ID, &s.UserID, &s.SessionID, &s.AmountCents,
		&s.Tier, &s.Message, &s.Public, &s.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("donation: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get supporter by session: %w", err)
	}
	return &s, nil
}

// ListPublic lists public donations for the supporters page, newest first
func (r *PostgresSupporterRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Supporter, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, user_id, session_id, amount_cents, tier, message, public, created_at
		FROM %s
		WHERE public
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d
	`, r.tables.Supporters, limit, offset)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list supporters: %w", err)
	}
	defer rows.Close()

	return scanSupporters(rows)
}

// ListByUser lists a user's own donations
func (r *PostgresSupporterRepository) ListByUser(ctx context.Context, userID string) ([]models.Supporter, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, session_id, amount_cents, tier, message, public, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Supporters)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user donations: %w", err)
	}
	defer rows.Close()

	return scanSupporters(rows)
}

func scanSupporters(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]models.Supporter, error) {
	supporters := []models.Supporter{}
	for rows.Next() {
		var s models.Supporter
		err := rows.Scan(
			&s.ID, &s.UserID, &s.SessionID, &s.AmountCents,
			&s.Tier, &s.Message, &s.Public, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan supporter: %w", err)
		}
		supporters = append(supporters, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supporters: %w", err)
	}
	return supporters, nil
}
