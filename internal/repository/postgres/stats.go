package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/repositories"
)

// PostgresStatsRepository implements the StatsRepository interface
type PostgresStatsRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(config *RepositoryConfig) repositories.StatsRepository {
	return &PostgresStatsRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// PlatformStats returns the landing-page aggregate snapshot. One round trip;
// the subqueries run against covering indexes.
func (r *PostgresStatsRepository) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s),
			(SELECT COUNT(*) FROM %s WHERE published),
			(SELECT COUNT(DISTINCT author_id) FROM %s),
			(SELECT COUNT(DISTINCT user_id) FROM %s),
			(SELECT COALESCE(SUM(view_count), 0) FROM %s)
	`, r.tables.Articles, r.tables.Products, r.tables.Articles, r.tables.Supporters, r.tables.Articles)

	var stats models.PlatformStats
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query).Scan(
		&stats.ArticleCount,
		&stats.ProductCount,
		&stats.CreatorCount,
		&stats.SupporterCount,
		&stats.TotalViews,
	)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return &stats, nil
}
