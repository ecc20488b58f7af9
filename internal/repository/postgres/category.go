package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
)

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *RepositoryConfig) repositories.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ListByKind lists categories for articles or products, in sort order
func (r *PostgresCategoryRepository) ListByKind(ctx context.Context, kind string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT id, name, slug, kind, sort_order, created_at
		FROM %s
		WHERE kind = $1
		ORDER BY sort_order ASC, name ASC
	`, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Kind, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// Create creates a category (seeding and admin use)
func (r *PostgresCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, kind, sort_order, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`, r.tables.Categories)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, c.Name, c.Slug, c.Kind, c.SortOrder).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category '%s' already exists", c.Slug),
				ResourceType: "category",
			}
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}
