package handler

import (
	"log/slog"
	"net/http"

	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/httputil"
)

// ReviewHandler handles product review HTTP requests. It resolves the
// product slug itself so the review service works purely in IDs.
type ReviewHandler struct {
	reviewService  services.ReviewService
	productService services.ProductService
	logger         *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService services.ReviewService, productService services.ProductService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService:  reviewService,
		productService: productService,
		logger:         logger,
	}
}

// ListReviews lists a product's reviews, newest first
// GET /api/products/{slug}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}

	reviews, err := h.reviewService.ListReviews(r.Context(), product.ID,
		httputil.QueryInt(r, "limit", 20), httputil.QueryInt(r, "offset", 0))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reviews)
}

// GetOwnReview returns the caller's review of a product, for editor prefill
// GET /api/products/{slug}/reviews/me
func (h *ReviewHandler) GetOwnReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}

	review, err := h.reviewService.GetOwnReview(r.Context(), product.ID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, review)
}

// CreateReview submits a review for a product
// POST /api/products/{slug}/reviews
// Returns 201 if created, 409 with the existing review if already reviewed
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}

	var req models.CreateReviewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.CreateReview(r.Context(), product.ID, userID, &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Review, error) {
			return h.reviewService.GetOwnReview(r.Context(), product.ID, userID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, review)
}

// UpdateReview updates the caller's review
// PUT /api/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateReviewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), r.PathValue("id"), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, review)
}

// DeleteReview deletes the caller's review
// DELETE /api/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
