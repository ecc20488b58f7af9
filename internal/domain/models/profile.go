package models

import (
	"time"
)

type Profile struct {
	ID          string            `json:"id" db:"id"` // Auth user ID
	Username    string            `json:"username" db:"username"`
	DisplayName string            `json:"display_name" db:"display_name"`
	Bio         string            `json:"bio" db:"bio"`
	AvatarURL   string            `json:"avatar_url" db:"avatar_url"`
	SocialLinks map[string]string `json:"social_links" db:"social_links"` // platform ID -> username/URL
	IsSupporter bool              `json:"is_supporter" db:"is_supporter"`
	// PaymentAccountID is the seller's connected payment account, set during
	// payout onboarding. Never exposed over the API.
	PaymentAccountID string    `json:"-" db:"payment_account_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateProfileRequest struct {
	Username    *string            `json:"username,omitempty"`
	DisplayName *string            `json:"display_name,omitempty"`
	Bio         *string            `json:"bio,omitempty"`
	AvatarURL   *string            `json:"avatar_url,omitempty"`
	SocialLinks *map[string]string `json:"social_links,omitempty"`
}

// Category is a curated content category shared by articles and products.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Kind      string    `json:"kind" db:"kind"` // "article" or "product"
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlatformStats is the aggregate snapshot shown on the landing page.
type PlatformStats struct {
	ArticleCount   int   `json:"article_count"`
	ProductCount   int   `json:"product_count"`
	CreatorCount   int   `json:"creator_count"`
	SupporterCount int   `json:"supporter_count"`
	TotalViews     int64 `json:"total_views"`
}
