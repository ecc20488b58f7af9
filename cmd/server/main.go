package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"blenderforge/internal/auth"
	"blenderforge/internal/config"
	"blenderforge/internal/content"
	"blenderforge/internal/handler"
	"blenderforge/internal/middleware"
	"blenderforge/internal/payment"
	"blenderforge/internal/platforms"
	"blenderforge/internal/repository/postgres"
	"blenderforge/internal/service"
	"blenderforge/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	articleRepo := postgres.NewArticleRepository(repoConfig)
	productRepo := postgres.NewProductRepository(repoConfig)
	reviewRepo := postgres.NewReviewRepository(repoConfig)
	supporterRepo := postgres.NewSupporterRepository(repoConfig)
	purchaseRepo := postgres.NewPurchaseRepository(repoConfig)
	profileRepo := postgres.NewProfileRepository(repoConfig)
	categoryRepo := postgres.NewCategoryRepository(repoConfig)
	statsRepo := postgres.NewStatsRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Object storage
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

	// Payments
	stripeProvider, err := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeCurrency)
	if err != nil {
		log.Fatalf("Failed to create payment provider: %v", err)
	}

	// Platform registry (social platforms, support platforms, tiers)
	registry, err := platforms.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize platform registry: %v", err)
	}
	logger.Info("platform registry initialized")

	// Create services
	renderer := content.NewRenderer()
	articleService := service.NewArticleService(articleRepo, uploader, renderer, logger)
	productService := service.NewProductService(productRepo, purchaseRepo, uploader, renderer, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, purchaseRepo, txManager, logger)
	checkoutService := service.NewCheckoutService(stripeProvider, supporterRepo, purchaseRepo,
		productRepo, profileRepo, registry, txManager, cfg.SiteURL, logger)
	supporterService := service.NewSupporterService(supporterRepo, purchaseRepo)
	profileService := service.NewProfileService(profileRepo, uploader, registry, logger)
	categoryService := service.NewCategoryService(categoryRepo)
	statsService := service.NewStatsService(statsRepo)

	// Create handlers
	articleHandler := handler.NewArticleHandler(articleService, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, productService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, supporterService, logger)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	platformHandler := handler.NewPlatformHandler(categoryService, statsService, registry, logger)
	uploadHandler := handler.NewUploadHandler(uploader, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", platformHandler.HealthCheck)

	// Article routes
	mux.HandleFunc("GET /api/articles", articleHandler.ListArticles)
	mux.HandleFunc("POST /api/articles", articleHandler.CreateArticle)
	mux.HandleFunc("GET /api/articles/{slug}", articleHandler.GetArticle)
	mux.HandleFunc("PUT /api/articles/{slug}", articleHandler.UpdateArticle)
	mux.HandleFunc("DELETE /api/articles/{slug}", articleHandler.DeleteArticle)
	mux.HandleFunc("GET /api/articles/{slug}/edit", articleHandler.GetArticleForEdit)
	mux.HandleFunc("POST /api/articles/{slug}/view", articleHandler.View)
	mux.HandleFunc("POST /api/articles/{slug}/vote", articleHandler.Vote)

	// Product routes
	mux.HandleFunc("GET /api/products", productHandler.ListProducts)
	mux.HandleFunc("POST /api/products", productHandler.CreateProduct)
	mux.HandleFunc("GET /api/products/{slug}", productHandler.GetProduct)
	mux.HandleFunc("PUT /api/products/{slug}", productHandler.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{slug}", productHandler.DeleteProduct)
	mux.HandleFunc("GET /api/products/{slug}/download", productHandler.Download)

	// Review routes
	mux.HandleFunc("GET /api/products/{slug}/reviews", reviewHandler.ListReviews)
	mux.HandleFunc("POST /api/products/{slug}/reviews", reviewHandler.CreateReview)
	mux.HandleFunc("GET /api/products/{slug}/reviews/me", reviewHandler.GetOwnReview)
	mux.HandleFunc("PUT /api/reviews/{id}", reviewHandler.UpdateReview)
	mux.HandleFunc("DELETE /api/reviews/{id}", reviewHandler.DeleteReview)

	// Checkout and supporter routes
	mux.HandleFunc("POST /api/checkout/donation", checkoutHandler.StartDonation)
	mux.HandleFunc("POST /api/checkout/product", checkoutHandler.StartPurchase)
	mux.HandleFunc("POST /api/checkout/verify", checkoutHandler.Verify)
	mux.HandleFunc("GET /api/purchases", checkoutHandler.ListPurchases)
	mux.HandleFunc("GET /api/purchases/{sessionID}", checkoutHandler.GetPurchase)
	mux.HandleFunc("GET /api/supporters", checkoutHandler.ListSupporters)
	mux.HandleFunc("GET /api/supporters/me", checkoutHandler.ListOwnDonations)

	// Profile routes
	mux.HandleFunc("GET /api/profiles/me", profileHandler.GetOwnProfile)
	mux.HandleFunc("PUT /api/profiles/me", profileHandler.UpdateProfile)
	mux.HandleFunc("POST /api/profiles/me/avatar", profileHandler.UpdateAvatar)
	mux.HandleFunc("GET /api/profiles/{username}", profileHandler.GetProfile)

	// Site-wide routes
	mux.HandleFunc("GET /api/categories", platformHandler.ListCategories)
	mux.HandleFunc("GET /api/stats", platformHandler.GetStats)
	mux.HandleFunc("GET /api/platforms", platformHandler.GetPlatforms)

	// Editor inline uploads
	mux.HandleFunc("POST /api/uploads/{bucket}", uploadHandler.Upload)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  60 * time.Second, // Product uploads can be slow on bad links
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
