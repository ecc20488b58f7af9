package services

import (
	"context"

	"blenderforge/internal/domain/models"
)

// SaveProductRequest carries the product metadata plus the serialized block
// document and any pending uploads.
type SaveProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Published   bool    `json:"published"`

	Thumbnail    *PendingUpload `json:"-"`
	ThumbnailURL string         `json:"thumbnail_url"`

	// Gallery uploads append to GalleryURLs.
	Gallery     []PendingUpload `json:"-"`
	GalleryURLs []string        `json:"gallery_urls"`

	// ProductFile is the downloadable asset; nil keeps the stored one.
	ProductFile *PendingUpload `json:"-"`
}

// ProductList is one page of results plus the unpaged total.
type ProductList struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

// ProductService defines business logic operations for marketplace products
type ProductService interface {
	// CreateProduct validates, uploads media, and creates the product
	CreateProduct(ctx context.Context, sellerID string, req *SaveProductRequest) (*models.Product, error)

	// UpdateProduct validates and updates an existing product; only the seller may update
	UpdateProduct(ctx context.Context, slug, sellerID string, req *SaveProductRequest) (*models.Product, error)

	// GetProduct retrieves a product by slug
	GetProduct(ctx context.Context, slug string) (*models.Product, error)

	// ListProducts lists published products matching the filter
	ListProducts(ctx context.Context, filter models.ProductFilter) (*ProductList, error)

	// DeleteProduct deletes a product; only the seller may delete
	DeleteProduct(ctx context.Context, slug, sellerID string) error

	// DownloadURL returns a short-lived download link. Free products are
	// downloadable by any authenticated user; paid products require a
	// purchase.
	DownloadURL(ctx context.Context, slug, userID string) (string, error)

	// RenderProduct returns the product with its content rendered to
	// sanitized HTML
	RenderProduct(ctx context.Context, slug string) (*models.Product, string, error)
}
