package services

import (
	"context"

	"blenderforge/internal/domain/models"
)

// SaveArticleRequest carries everything needed to create or update an
// article: the metadata fields plus the serialized block document and an
// optional pending thumbnail upload.
type SaveArticleRequest struct {
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	ReadTime   int    `json:"read_time"`

	// Thumbnail is a pending upload; nil means keep ThumbnailURL as is.
	Thumbnail    *PendingUpload `json:"-"`
	ThumbnailURL string         `json:"image_url"`
}

// PendingUpload is an in-memory file awaiting storage.
type PendingUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ArticleList is one page of results plus the unpaged total.
type ArticleList struct {
	Articles []models.Article `json:"articles"`
	Total    int              `json:"total"`
}

// ArticleService defines business logic operations for articles
type ArticleService interface {
	// CreateArticle validates, uploads the thumbnail, and creates the article
	CreateArticle(ctx context.Context, authorID string, req *SaveArticleRequest) (*models.Article, error)

	// UpdateArticle validates and updates an existing article; only the owner may update
	UpdateArticle(ctx context.Context, slug, authorID string, req *SaveArticleRequest) (*models.Article, error)

	// GetArticle retrieves an article by slug and bumps its view counter
	GetArticle(ctx context.Context, slug string) (*models.Article, error)

	// GetArticleForEdit retrieves an article by slug without counting a view
	GetArticleForEdit(ctx context.Context, slug, authorID string) (*models.Article, error)

	// ListArticles lists articles matching the filter
	ListArticles(ctx context.Context, filter models.ArticleFilter) (*ArticleList, error)

	// DeleteArticle deletes an article; only the owner may delete
	DeleteArticle(ctx context.Context, slug, authorID string) error

	// Vote records a reader's vote and returns updated tallies
	Vote(ctx context.Context, slug, userID string, kind models.VoteKind) (upvotes, downvotes int, err error)

	// RenderArticle returns the article with its content rendered to
	// sanitized HTML
	RenderArticle(ctx context.Context, slug string) (*models.Article, string, error)
}
