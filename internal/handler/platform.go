package handler

import (
	"log/slog"
	"net/http"

	"blenderforge/internal/domain/services"
	"blenderforge/internal/httputil"
	"blenderforge/internal/platforms"
)

// PlatformHandler serves the site-wide surfaces: categories, landing-page
// stats, the health probe, and the platform registry metadata the frontend
// renders pickers from.
type PlatformHandler struct {
	categoryService services.CategoryService
	statsService    services.StatsService
	registry        *platforms.Registry
	logger          *slog.Logger
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(
	categoryService services.CategoryService,
	statsService services.StatsService,
	registry *platforms.Registry,
	logger *slog.Logger,
) *PlatformHandler {
	return &PlatformHandler{
		categoryService: categoryService,
		statsService:    statsService,
		registry:        registry,
		logger:          logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *PlatformHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCategories lists categories for a content kind
// GET /api/categories?kind=article|product
func (h *PlatformHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "article"
	}

	categories, err := h.categoryService.ListCategories(r.Context(), kind)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, categories)
}

// GetStats returns the landing-page aggregate snapshot
// GET /api/stats
func (h *PlatformHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.PlatformStats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}

// GetPlatforms returns the social/support platform catalogs and supporter tiers
// GET /api/platforms
func (h *PlatformHandler) GetPlatforms(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"social":  h.registry.SocialPlatforms(),
		"support": h.registry.SupportPlatforms(),
		"tiers":   h.registry.Tiers(),
	})
}
