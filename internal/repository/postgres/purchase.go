package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
)

// PostgresPurchaseRepository implements the PurchaseRepository interface
type PostgresPurchaseRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(config *RepositoryConfig) repositories.PurchaseRepository {
	return &PostgresPurchaseRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create records a completed purchase. The session_id unique constraint
// makes double verification a conflict, not a duplicate row.
func (r *PostgresPurchaseRepository) Create(ctx context.Context, p *models.Purchase) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, product_id, session_id, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`, r.tables.Purchases)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.UserID,
		p.ProductID,
		p.SessionID,
		p.AmountCents,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "purchase already recorded",
				ResourceType: "purchase",
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("product %s: %w", p.ProductID, domain.ErrNotFound)
		}
		return fmt.Errorf("create purchase: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a purchase by checkout session
func (r *PostgresPurchaseRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, product_id, session_id, amount_cents, created_at
		FROM %s
		WHERE session_id = $1
	`, r.tables.Purchases)

	var p models.Purchase
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, sessionID).Scan(
		&p.ID, &p.UserID, &p.ProductID, &p.SessionID, &p.AmountCents, &p.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("purchase: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase by session: %w", err)
	}
	return &p, nil
}

// HasPurchased reports whether a user owns a product
func (r *PostgresPurchaseRepository) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = $1 AND product_id = $2)
	`, r.tables.Purchases)

	var owns bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, productID).Scan(&owns); err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return owns, nil
}

// ListByUser lists a user's purchases, newest first
func (r *PostgresPurchaseRepository) ListByUser(ctx context.Context, userID string) ([]models.Purchase, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, product_id, session_id, amount_cents, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Purchases)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	for rows.Next() {
		var p models.Purchase
		err := rows.Scan(&p.ID, &p.UserID, &p.ProductID, &p.SessionID, &p.AmountCents, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return purchases, nil
}
