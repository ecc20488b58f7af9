package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blenderforge/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Articles     string
	ArticleVotes string
	Products     string
	Reviews      string
	Supporters   string
	Purchases    string
	Profiles     string
	Categories   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Articles:     fmt.Sprintf("%sarticles", prefix),
		ArticleVotes: fmt.Sprintf("%sarticle_votes", prefix),
		Products:     fmt.Sprintf("%sproducts", prefix),
		Reviews:      fmt.Sprintf("%sreviews", prefix),
		Supporters:   fmt.Sprintf("%ssupporters", prefix),
		Purchases:    fmt.Sprintf("%spurchases", prefix),
		Profiles:     fmt.Sprintf("%sprofiles", prefix),
		Categories:   fmt.Sprintf("%scategories", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// By default pgx uses prepared statements (QueryExecModeCacheStatement). PgBouncer in
// transaction pooling mode (port 6543 on Supabase) does not support prepared statements,
// so when that port is detected the pool switches to QueryExecModeCacheDescribe, which
// keeps the extended protocol (needed for JSONB encoding of map values) without creating
// server-side prepared statements. An explicit default_query_exec_mode in the connection
// string takes precedence.
//
// Note on dynamic table names: fmt.Sprintf for table prefixes (dev_, test_, prod_) is
// safe with prepared statements because the SQL string is interpolated before being sent
// to the database.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
