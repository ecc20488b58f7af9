package models

import (
	"time"
)

type Product struct {
	ID           string    `json:"id" db:"id"`
	SellerID     string    `json:"seller_id" db:"seller_id"`
	Title        string    `json:"title" db:"title"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description" db:"description"`
	Content      string    `json:"content" db:"content"` // Serialized block document
	Category     string    `json:"category" db:"category"`
	Price        float64   `json:"price" db:"price"` // 0 = free
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	GalleryURLs  []string  `json:"gallery_urls" db:"gallery_urls"`
	FileKey      string    `json:"-" db:"file_key"` // Object key, never exposed
	FileName     string    `json:"file_name" db:"file_name"`
	FileSize     int64     `json:"file_size" db:"file_size"`
	RatingAvg    float64   `json:"rating_avg" db:"rating_avg"`
	RatingCount  int       `json:"rating_count" db:"rating_count"`
	SalesCount   int       `json:"sales_count" db:"sales_count"`
	Published    bool      `json:"published" db:"published"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	SellerProfile *Profile `json:"seller,omitempty"`
}

type CreateProductRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	ThumbnailURL string   `json:"thumbnail_url"`
	GalleryURLs  []string `json:"gallery_urls"`
	FileKey      string   `json:"-"`
	FileName     string   `json:"file_name"`
	FileSize     int64    `json:"file_size"`
}

type UpdateProductRequest struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Content      *string   `json:"content,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	GalleryURLs  *[]string `json:"gallery_urls,omitempty"`
	// File fields are set together when a replacement file was uploaded;
	// nil keeps the stored file.
	FileKey   *string `json:"-"`
	FileName  *string `json:"file_name,omitempty"`
	FileSize  *int64  `json:"file_size,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// ProductFilter narrows marketplace listings. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	SellerID string
	Search   string
	FreeOnly bool
	SortBy   string // "newest", "popular", "price_asc", "price_desc", "rating"
	Limit    int
	Offset   int
}
