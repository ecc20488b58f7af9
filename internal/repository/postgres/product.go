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

// PostgresProductRepository implements the ProductRepository interface
type PostgresProductRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProductRepository creates a new product repository
func NewProductRepository(config *RepositoryConfig) repositories.ProductRepository {
	return &PostgresProductRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const productColumns = `id, seller_id, title, slug, description, content, category, price,
	thumbnail_url, gallery_urls, file_key, file_name, file_size,
	rating_avg, rating_count, sales_count, published, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Title, &p.Slug, &p.Description, &p.Content,
		&p.Category, &p.Price, &p.ThumbnailURL, &p.GalleryURLs,
		&p.FileKey, &p.FileName, &p.FileSize,
		&p.RatingAvg, &p.RatingCount, &p.SalesCount, &p.Published,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new product
func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (seller_id, title, slug, description, content, category, price,
			thumbnail_url, gallery_urls, file_key, file_name, file_size, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.tables.Products)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		product.SellerID,
		product.Title,
		product.Slug,
		product.Description,
		product.Content,
		product.Category,
		product.Price,
		product.ThumbnailURL,
		product.GalleryURLs,
		product.FileKey,
		product.FileName,
		product.FileSize,
		product.Published,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("product slug '%s' already exists", product.Slug),
				ResourceType: "product",
			}
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, productColumns, r.tables.Products)

	executor := GetExecutor(ctx, r.pool)
	product, err := scanProduct(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// GetBySlug retrieves a product by its URL slug
func (r *PostgresProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, productColumns, r.tables.Products)

	executor := GetExecutor(ctx, r.pool)
	product, err := scanProduct(executor.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("product %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// Update updates an existing product. The seller_id predicate enforces
// ownership.
func (r *PostgresProductRepository) Update(ctx context.Context, id, sellerID string, req *models.UpdateProductRequest) (*models.Product, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	idx := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Content != nil {
		addSet("content", *req.Content)
	}
	if req.Category != nil {
		addSet("category", *req.Category)
	}
	if req.Price != nil {
		addSet("price", *req.Price)
	}
	if req.ThumbnailURL != nil {
		addSet("thumbnail_url", *req.ThumbnailURL)
	}
	if req.GalleryURLs != nil {
		addSet("gallery_urls", *req.GalleryURLs)
	}
	if req.FileKey != nil {
		addSet("file_key", *req.FileKey)
	}
	if req.FileName != nil {
		addSet("file_name", *req.FileName)
	}
	if req.FileSize != nil {
		addSet("file_size", *req.FileSize)
	}
	if req.Published != nil {
		addSet("published", *req.Published)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id = $%d AND seller_id = $%d
		RETURNING %s
	`, r.tables.Products, strings.Join(sets, ", "), idx, idx+1, productColumns)
	args = append(args, id, sellerID)

	executor := GetExecutor(ctx, r.pool)
	product, err := scanProduct(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// Delete deletes a product; only the seller's rows match
func (r *PostgresProductRepository) Delete(ctx context.Context, id, sellerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND seller_id = $2`, r.tables.Products)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, sellerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List lists published products matching the filter
func (r *PostgresProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	where, args := r.filterClauses(filter)

	order := "created_at DESC"
	switch filter.SortBy {
	case "popular":
		order = "sales_count DESC, created_at DESC"
	case "price_asc":
		order = "price ASC, created_at DESC"
	case "price_desc":
		order = "price DESC, created_at DESC"
	case "rating":
		order = "rating_avg DESC, rating_count DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		%s
		ORDER BY %s
		LIMIT %d OFFSET %d
	`, productColumns, r.tables.Products, where, order, limit, filter.Offset)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Count counts products matching the filter (ignoring limit/offset)
func (r *PostgresProductRepository) Count(ctx context.Context, filter models.ProductFilter) (int, error) {
	where, args := r.filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Products, where)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *PostgresProductRepository) filterClauses(filter models.ProductFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	idx := 1

	add := func(clause string, value interface{}) {
		clauses = append(clauses, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	// Listings only ever show published products. A seller filter is that
	// seller's own view, drafts included. The seller_id column is a UUID, so
	// it must never be bound when the filter is empty.
	if filter.SellerID != "" {
		add("seller_id = $%d", filter.SellerID)
	} else {
		clauses = append(clauses, "published")
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}
	if filter.FreeOnly {
		clauses = append(clauses, "price = 0")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// SlugExists reports whether a slug is already taken
func (r *PostgresProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.tables.Products)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}
	return exists, nil
}

// ApplyReviewAggregate sets the denormalized rating columns
func (r *PostgresProductRepository) ApplyReviewAggregate(ctx context.Context, id string, avg float64, count int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET rating_avg = $1, rating_count = $2, updated_at = NOW()
		WHERE id = $3
	`, r.tables.Products)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, avg, count, id)
	if err != nil {
		return fmt.Errorf("apply review aggregate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IncrementSales bumps the sales counter
func (r *PostgresProductRepository) IncrementSales(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET sales_count = sales_count + 1 WHERE id = $1`, r.tables.Products)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("increment product sales: %w", err)
	}
	return nil
}
