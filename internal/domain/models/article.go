package models

import (
	"time"
)

type Article struct {
	ID         string    `json:"id" db:"id"`
	AuthorID   string    `json:"author_id" db:"author_id"`
	Title      string    `json:"title" db:"title"`
	Slug       string    `json:"slug" db:"slug"`
	Excerpt    string    `json:"excerpt" db:"excerpt"`
	Content    string    `json:"content" db:"content"` // Serialized block document
	Category   string    `json:"category" db:"category"`
	Difficulty string    `json:"difficulty" db:"difficulty"`
	ReadTime   int       `json:"read_time" db:"read_time"` // Minutes
	ImageURL   string    `json:"image_url" db:"image_url"` // Thumbnail
	Upvotes    int       `json:"upvotes" db:"upvotes"`
	Downvotes  int       `json:"downvotes" db:"downvotes"`
	ViewCount  int       `json:"view_count" db:"view_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// AuthorProfile is joined in for list/detail views, not stored on the row.
	AuthorProfile *Profile `json:"author,omitempty"`
}

type CreateArticleRequest struct {
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	ReadTime   int    `json:"read_time"`
	ImageURL   string `json:"image_url"`
}

type UpdateArticleRequest struct {
	Title      *string `json:"title,omitempty"`
	Excerpt    *string `json:"excerpt,omitempty"`
	Content    *string `json:"content,omitempty"`
	Category   *string `json:"category,omitempty"`
	Difficulty *string `json:"difficulty,omitempty"`
	ReadTime   *int    `json:"read_time,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`
}

// ArticleFilter narrows article listings. Zero values mean "no filter".
type ArticleFilter struct {
	Category   string
	Difficulty string
	AuthorID   string
	Search     string // Matches title and excerpt
	SortBy     string // "newest", "oldest", "popular", "views"
	Limit      int
	Offset     int
}

// VoteKind is a reader's vote on an article.
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)
