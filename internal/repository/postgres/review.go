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

// PostgresReviewRepository implements the ReviewRepository interface
type PostgresReviewRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(config *RepositoryConfig) repositories.ReviewRepository {
	return &PostgresReviewRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a review; the (product_id, user_id) unique constraint
// enforces one review per user per product.
func (r *PostgresReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (product_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.tables.Reviews)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "you have already reviewed this product",
				ResourceType: "review",
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("product %s: %w", review.ProductID, domain.ErrNotFound)
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by ID
func (r *PostgresReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	query := fmt.Sprintf(`
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Reviews)

	var review models.Review
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&review.ID, &review.ProductID, &review.UserID,
		&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// GetByProductAndUser retrieves a user's review of a product
func (r *PostgresReviewRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*models.Review, error) {
	query := fmt.Sprintf(`
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM %s
		WHERE product_id = $1 AND user_id = $2
	`, r.tables.Reviews)

	var review models.Review
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, productID, userID).Scan(
		&review.ID, &review.ProductID, &review.UserID,
		&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("review: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// Update updates a review; the user_id predicate enforces ownership
func (r *PostgresReviewRepository) Update(ctx context.Context, id, userID string, req *models.UpdateReviewRequest) (*models.Review, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	idx := 2

	if req.Rating != nil {
		sets = append(sets, fmt.Sprintf("rating = $%d", idx))
		args = append(args, *req.Rating)
		idx++
	}
	if req.Comment != nil {
		sets = append(sets, fmt.Sprintf("comment = $%d", idx))
		args = append(args, *req.Comment)
		idx++
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING id, product_id, user_id, rating, comment, created_at, updated_at
	`, r.tables.Reviews, strings.Join(sets, ", "), idx, idx+1)
	args = append(args, id, userID)

	var review models.Review
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&review.ID, &review.ProductID, &review.UserID,
		&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return &review, nil
}

// Delete deletes a review; only the reviewer's rows match
func (r *PostgresReviewRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Reviews)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByProduct lists a product's reviews, newest first
func (r *PostgresReviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM %s
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d
	`, r.tables.Reviews, limit, offset)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		err := rows.Scan(
			&review.ID, &review.ProductID, &review.UserID,
			&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// Aggregate computes the current average rating and count for a product
func (r *PostgresReviewRepository) Aggregate(ctx context.Context, productID string) (float64, int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM %s
		WHERE product_id = $1
	`, r.tables.Reviews)

	var avg float64
	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, productID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("aggregate reviews: %w", err)
	}
	return avg, count, nil
}
