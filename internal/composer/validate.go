package composer

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blenderforge/internal/config"
	"blenderforge/internal/content"
	"blenderforge/internal/domain"
	"blenderforge/internal/platforms"
)

// Kind selects which metadata rule set applies to a session.
type Kind string

const (
	KindArticle Kind = "article"
	KindProduct Kind = "product"
)

// Metadata carries the record fields edited alongside the document. Fields
// irrelevant to the kind (ReadTime for products, Price for articles) are
// ignored by validation.
type Metadata struct {
	Kind        Kind
	Title       string
	Description string
	Category    string
	Difficulty  string
	ReadTime    int
	Price       float64

	// ThumbnailURL is the already-stored thumbnail, if any;
	// HasNewThumbnail reports a pending replacement upload. Either
	// satisfies the thumbnail requirement.
	ThumbnailURL    string
	HasNewThumbnail bool
}

// Normalize trims whitespace and enforces the field length caps by
// truncation rather than rejection, so input fields can clamp as the user
// types. Run before Validate.
func (m *Metadata) Normalize() {
	m.Title = truncate(strings.TrimSpace(m.Title), config.MaxTitleLength)
	m.Description = truncate(strings.TrimSpace(m.Description), config.MaxDescriptionLength)
	m.Category = strings.TrimSpace(m.Category)
	m.Difficulty = strings.TrimSpace(m.Difficulty)
}

// truncate cuts on rune boundaries, never mid-codepoint, matching how the
// length rules count characters.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// validate collects every violated rule into domain.FieldErrors so a single
// failed save reports all problems at once. A nil return means the session
// may proceed to persist.
func (m *Metadata) validate(doc content.Document) domain.FieldErrors {
	errs := domain.FieldErrors{}

	field := func(name string, value interface{}, rules ...validation.Rule) {
		if err := validation.Validate(value, rules...); err != nil {
			errs[name] = err.Error()
		}
	}

	field("title", m.Title,
		validation.Required.Error("title is required"),
		validation.Length(1, config.MaxTitleLength).Error(
			fmt.Sprintf("title must be at most %d characters", config.MaxTitleLength)))
	field("description", m.Description,
		validation.Required.Error("description is required"),
		validation.Length(1, config.MaxDescriptionLength).Error(
			fmt.Sprintf("description must be at most %d characters", config.MaxDescriptionLength)))
	field("category", m.Category,
		validation.Required.Error("category is required"))

	switch m.Kind {
	case KindProduct:
		field("price", m.Price,
			validation.Min(0.0).Error("price cannot be negative"),
			validation.Max(float64(config.MaxProductPrice)).Error(
				fmt.Sprintf("price cannot exceed %d", config.MaxProductPrice)))
	default:
		field("difficulty", m.Difficulty,
			validation.Required.Error("difficulty is required"))
		field("readTime", m.ReadTime,
			validation.Min(config.MinReadTime).Error(
				fmt.Sprintf("read time must be between %d and %d minutes", config.MinReadTime, config.MaxReadTime)),
			validation.Max(config.MaxReadTime).Error(
				fmt.Sprintf("read time must be between %d and %d minutes", config.MinReadTime, config.MaxReadTime)))
	}

	if m.ThumbnailURL == "" && !m.HasNewThumbnail {
		errs["thumbnail"] = "a thumbnail image is required"
	}

	if !doc.HasContent() {
		errs["content"] = "add some content before publishing"
	}

	if msg := checkPlatformKeys(doc); msg != "" {
		errs["platforms"] = msg
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkPlatformKeys verifies that every social and support block references
// a platform from the embedded catalog. Arbitrary keys would be stored and
// rendered as-is.
func checkPlatformKeys(doc content.Document) string {
	reg, err := platforms.Default()
	if err != nil {
		// The catalog ships embedded; a load failure is caught by the
		// registry's own tests.
		return ""
	}
	for _, b := range doc {
		switch b.Type {
		case content.BlockSocial:
			for _, link := range b.Social.Links {
				if link.Platform == "" {
					continue
				}
				if _, err := reg.SocialPlatform(link.Platform); err != nil {
					return fmt.Sprintf("unknown social platform %q", link.Platform)
				}
			}
		case content.BlockSupport:
			if b.Support.Platform == "" {
				continue
			}
			if _, err := reg.SupportPlatform(b.Support.Platform); err != nil {
				return fmt.Sprintf("unknown support platform %q", b.Support.Platform)
			}
		}
	}
	return ""
}
