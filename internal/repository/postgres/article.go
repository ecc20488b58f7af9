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

// PostgresArticleRepository implements the ArticleRepository interface
type PostgresArticleRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(config *RepositoryConfig) repositories.ArticleRepository {
	return &PostgresArticleRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const articleColumns = `id, author_id, title, slug, excerpt, content, category, difficulty,
	read_time, image_url, upvotes, downvotes, view_count, created_at, updated_at`

func scanArticle(row interface{ Scan(...interface{}) error }) (*models.Article, error) {
	var a models.Article
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Slug, &a.Excerpt, &a.Content,
		&a.Category, &a.Difficulty, &a.ReadTime, &a.ImageURL,
		&a.Upvotes, &a.Downvotes, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create creates a new article
func (r *PostgresArticleRepository) Create(ctx context.Context, article *models.Article) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (author_id, title, slug, excerpt, content, category, difficulty, read_time, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.tables.Articles)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		article.AuthorID,
		article.Title,
		article.Slug,
		article.Excerpt,
		article.Content,
		article.Category,
		article.Difficulty,
		article.ReadTime,
		article.ImageURL,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("article slug '%s' already exists", article.Slug),
				ResourceType: "article",
			}
		}
		return fmt.Errorf("create article: %w", err)
	}

	return nil
}

// GetByID retrieves an article by ID
func (r *PostgresArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, articleColumns, r.tables.Articles)

	executor := GetExecutor(ctx, r.pool)
	article, err := scanArticle(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// GetBySlug retrieves an article by its URL slug
func (r *PostgresArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, articleColumns, r.tables.Articles)

	executor := GetExecutor(ctx, r.pool)
	article, err := scanArticle(executor.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("article %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get article by slug: %w", err)
	}
	return article, nil
}

// Update updates an existing article. The author_id predicate enforces
// ownership: updating someone else's article reads as not found.
func (r *PostgresArticleRepository) Update(ctx context.Context, id, authorID string, req *models.UpdateArticleRequest) (*models.Article, error) {
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
	if req.Excerpt != nil {
		addSet("excerpt", *req.Excerpt)
	}
	if req.Content != nil {
		addSet("content", *req.Content)
	}
	if req.Category != nil {
		addSet("category", *req.Category)
	}
	if req.Difficulty != nil {
		addSet("difficulty", *req.Difficulty)
	}
	if req.ReadTime != nil {
		addSet("read_time", *req.ReadTime)
	}
	if req.ImageURL != nil {
		addSet("image_url", *req.ImageURL)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id = $%d AND author_id = $%d
		RETURNING %s
	`, r.tables.Articles, strings.Join(sets, ", "), idx, idx+1, articleColumns)
	args = append(args, id, authorID)

	executor := GetExecutor(ctx, r.pool)
	article, err := scanArticle(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

// Delete deletes an article; only the owner's rows match
func (r *PostgresArticleRepository) Delete(ctx context.Context, id, authorID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND author_id = $2`, r.tables.Articles)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List lists articles matching the filter
func (r *PostgresArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	where, args := r.filterClauses(filter)

	order := "created_at DESC"
	switch filter.SortBy {
	case "oldest":
		order = "created_at ASC"
	case "popular":
		order = "(upvotes - downvotes) DESC, created_at DESC"
	case "views":
		order = "view_count DESC, created_at DESC"
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
	`, articleColumns, r.tables.Articles, where, order, limit, filter.Offset)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, nil
}

// Count counts articles matching the filter (ignoring limit/offset)
func (r *PostgresArticleRepository) Count(ctx context.Context, filter models.ArticleFilter) (int, error) {
	where, args := r.filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Articles, where)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func (r *PostgresArticleRepository) filterClauses(filter models.ArticleFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	idx := 1

	add := func(clause string, value interface{}) {
		clauses = append(clauses, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Difficulty != "" {
		add("difficulty = $%d", filter.Difficulty)
	}
	if filter.AuthorID != "" {
		add("author_id = $%d", filter.AuthorID)
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR excerpt ILIKE $%d)", idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// SlugExists reports whether a slug is already taken
func (r *PostgresArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.tables.Articles)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check article slug: %w", err)
	}
	return exists, nil
}

// IncrementViews bumps the view counter
func (r *PostgresArticleRepository) IncrementViews(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET view_count = view_count + 1 WHERE id = $1`, r.tables.Articles)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("increment article views: %w", err)
	}
	return nil
}

// Vote records or replaces a user's vote and returns updated tallies.
// The vote row and the denormalized tallies move together in one statement
// chain so concurrent votes never drift.
func (r *PostgresArticleRepository) Vote(ctx context.Context, id, userID string, kind models.VoteKind) (int, int, error) {
	upsert := fmt.Sprintf(`
		INSERT INTO %s (article_id, user_id, kind, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (article_id, user_id) DO UPDATE SET kind = EXCLUDED.kind
	`, r.tables.ArticleVotes)

	recount := fmt.Sprintf(`
		UPDATE %s SET
			upvotes = (SELECT COUNT(*) FROM %s WHERE article_id = $1 AND kind = 'up'),
			downvotes = (SELECT COUNT(*) FROM %s WHERE article_id = $1 AND kind = 'down')
		WHERE id = $1
		RETURNING upvotes, downvotes
	`, r.tables.Articles, r.tables.ArticleVotes, r.tables.ArticleVotes)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, upsert, id, userID, string(kind)); err != nil {
		if IsPgForeignKeyError(err) {
			return 0, 0, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return 0, 0, fmt.Errorf("record vote: %w", err)
	}

	var up, down int
	if err := executor.QueryRow(ctx, recount, id).Scan(&up, &down); err != nil {
		if IsPgNoRowsError(err) {
			return 0, 0, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return 0, 0, fmt.Errorf("recount votes: %w", err)
	}
	return up, down, nil
}
