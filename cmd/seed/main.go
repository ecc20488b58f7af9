package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"blenderforge/internal/config"
	"blenderforge/internal/content"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/repository/postgres"
	"blenderforge/internal/service"
	"blenderforge/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo content")
	clearData := flag.Bool("clear-data", false, "Clear all content rows (keep schema)")
	seedUser := flag.String("user", "00000000-0000-0000-0000-000000000001", "Author UUID for the demo article")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing content rows...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	articleRepo := postgres.NewArticleRepository(repoConfig)
	categoryRepo := postgres.NewCategoryRepository(repoConfig)

	// The seed article carries no pending uploads, so the store is never
	// dialed; it only satisfies the service constructor.
	uploader, err := storage.NewS3Store(storage.S3Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		BucketPrefix:    cfg.S3BucketPrefix,
	})
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	articleService := service.NewArticleService(articleRepo, uploader, content.NewRenderer(), logger)

	// Seed categories
	log.Println("🏷️  Seeding categories...")
	for i, c := range seedCategories() {
		if err := categoryRepo.Create(ctx, &c); err != nil {
			log.Printf("  ↷ Skipped %s/%s: %v", c.Kind, c.Slug, err)
			continue
		}
		log.Printf("  ✓ Created category %d: %s (%s)", i+1, c.Name, c.Kind)
	}

	// Seed a demo article through the service layer so slugging, validation,
	// and serialization run the same path as a real save.
	log.Println("📝 Seeding demo article...")
	article, err := articleService.CreateArticle(ctx, *seedUser, demoArticle())
	if err != nil {
		log.Printf("❌ Failed to create demo article: %v", err)
	} else {
		log.Printf("✅ Created article %q (slug: %s)", article.Title, article.Slug)
	}

	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Profiles + ` (
			id UUID PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			social_links JSONB NOT NULL DEFAULT '{}',
			is_supporter BOOLEAN NOT NULL DEFAULT FALSE,
			payment_account_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Categories + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			kind TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(kind, slug)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Articles + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			author_id UUID NOT NULL,
			title TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			excerpt TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			read_time INTEGER NOT NULL DEFAULT 1,
			image_url TEXT NOT NULL DEFAULT '',
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			view_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.ArticleVotes + ` (
			article_id UUID NOT NULL REFERENCES ` + tables.Articles + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			kind TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(article_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Products + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			seller_id UUID NOT NULL,
			title TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			gallery_urls TEXT[] NOT NULL DEFAULT '{}',
			file_key TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL DEFAULT '',
			file_size BIGINT NOT NULL DEFAULT 0,
			rating_avg DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			sales_count INTEGER NOT NULL DEFAULT 0,
			published BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Reviews + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			product_id UUID NOT NULL REFERENCES ` + tables.Products + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			rating INTEGER NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(product_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Supporters + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			session_id TEXT UNIQUE NOT NULL,
			amount_cents BIGINT NOT NULL,
			tier TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			public BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Purchases + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID NOT NULL,
			product_id UUID NOT NULL REFERENCES ` + tables.Products + `(id) ON DELETE CASCADE,
			session_id TEXT UNIQUE NOT NULL,
			amount_cents BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, product_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `articles_author ON ` + tables.Articles + `(author_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `articles_category ON ` + tables.Articles + `(category)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `products_seller ON ` + tables.Products + `(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `products_category ON ` + tables.Products + `(category)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `reviews_product ON ` + tables.Reviews + `(product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `supporters_public ON ` + tables.Supporters + `(public, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `purchases_user ON ` + tables.Purchases + `(user_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Purchases,
		tables.Reviews,
		tables.Supporters,
		tables.ArticleVotes,
		tables.Articles,
		tables.Products,
		tables.Categories,
		tables.Profiles,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearAllData wipes content rows while keeping the schema
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Purchases,
		tables.Reviews,
		tables.Supporters,
		tables.ArticleVotes,
		tables.Articles,
		tables.Products,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return nil
}

func seedCategories() []models.Category {
	return []models.Category{
		{Name: "Modeling", Slug: "modeling", Kind: "article", SortOrder: 1},
		{Name: "Sculpting", Slug: "sculpting", Kind: "article", SortOrder: 2},
		{Name: "Animation", Slug: "animation", Kind: "article", SortOrder: 3},
		{Name: "Shading", Slug: "shading", Kind: "article", SortOrder: 4},
		{Name: "Geometry Nodes", Slug: "geometry-nodes", Kind: "article", SortOrder: 5},
		{Name: "Rendering", Slug: "rendering", Kind: "article", SortOrder: 6},

		{Name: "3D Models", Slug: "models", Kind: "product", SortOrder: 1},
		{Name: "Materials", Slug: "materials", Kind: "product", SortOrder: 2},
		{Name: "Add-ons", Slug: "addons", Kind: "product", SortOrder: 3},
		{Name: "Brushes", Slug: "brushes", Kind: "product", SortOrder: 4},
		{Name: "Scenes", Slug: "scenes", Kind: "product", SortOrder: 5},
	}
}

func demoArticle() *services.SaveArticleRequest {
	doc := content.Document{
		textBlock(heading(1, "Welcome to the Community"),
			paragraph("This article was created by the seed tool. It walks through the block editor: text blocks hold rich text, image blocks hold a single illustration, and social or support blocks let creators link out.")),
		textBlock(heading(2, "Writing Your First Article"),
			paragraph("Pick a category, set a difficulty, estimate the reading time, and start adding blocks. Everything is validated when you hit save, and every problem is reported at once.")),
	}

	serialized, err := doc.Serialize()
	if err != nil {
		log.Fatalf("Failed to serialize demo article: %v", err)
	}

	return &services.SaveArticleRequest{
		Title:        "Getting Started with the Editor",
		Excerpt:      "A short tour of the block editor, written by the seed tool.",
		Content:      serialized,
		Category:     "modeling",
		Difficulty:   "beginner",
		ReadTime:     3,
		ThumbnailURL: "https://placehold.co/640x360",
	}
}

func textBlock(nodes ...content.Node) content.Block {
	b, err := content.NewBlock(content.BlockText)
	if err != nil {
		log.Fatalf("Failed to create block: %v", err)
	}
	b.Text = content.RichText{Type: "doc", Content: nodes}
	return b
}

func heading(level int, text string) content.Node {
	return content.Node{
		Type:    "heading",
		Attrs:   map[string]interface{}{"level": float64(level)},
		Content: []content.Node{{Type: "text", Text: text}},
	}
}

func paragraph(text string) content.Node {
	return content.Node{
		Type:    "paragraph",
		Content: []content.Node{{Type: "text", Text: text}},
	}
}
