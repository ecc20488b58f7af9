package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/httputil"
)

// ProductHandler handles marketplace product HTTP requests
type ProductHandler struct {
	productService services.ProductService
	logger         *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

type productView struct {
	*models.Product
	HTML string `json:"html"`
}

// ListProducts lists published products matching the query filters.
// With mine=true the caller's own products, drafts included, are listed
// instead.
// GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		FreeOnly: q.Get("free") == "true",
		SortBy:   q.Get("sort"),
		Limit:    httputil.QueryInt(r, "limit", 20),
		Offset:   httputil.QueryInt(r, "offset", 0),
	}

	if q.Get("mine") == "true" {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		filter.SellerID = userID
	}

	list, err := h.productService.ListProducts(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// GetProduct retrieves a product by slug with rendered HTML
// GET /api/products/{slug}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, html, err := h.productService.RenderProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, productView{Product: product, HTML: html})
}

// CreateProduct creates a new product
// POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	req, err := h.parseSaveRequest(w, r)
	if err != nil {
		handleError(w, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, product)
}

// UpdateProduct updates an existing product
// PUT /api/products/{slug}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	req, err := h.parseSaveRequest(w, r)
	if err != nil {
		handleError(w, err)
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), r.PathValue("slug"), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct deletes a product
// DELETE /api/products/{slug}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), r.PathValue("slug"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download returns a short-lived presigned URL for the product file
// GET /api/products/{slug}/download
func (h *ProductHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	url, err := h.productService.DownloadURL(r.Context(), r.PathValue("slug"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// parseSaveRequest decodes a product save: multipart with metadata plus
// optional thumbnail, gallery, and file parts, or plain JSON.
func (h *ProductHandler) parseSaveRequest(w http.ResponseWriter, r *http.Request) (*services.SaveProductRequest, error) {
	var req services.SaveProductRequest
	if !isMultipart(r) {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return &req, nil
	}

	if err := parseMultipart(w, r, maxProductFormBytes, &req); err != nil {
		return nil, err
	}

	thumb, err := formUpload(r, "thumbnail")
	if err != nil {
		return nil, err
	}
	req.Thumbnail = thumb

	gallery, err := formUploads(r, "gallery")
	if err != nil {
		return nil, err
	}
	req.Gallery = gallery

	file, err := formUpload(r, "file")
	if err != nil {
		return nil, err
	}
	req.ProductFile = file

	return &req, nil
}
