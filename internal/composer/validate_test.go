package composer

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"blenderforge/internal/config"
	"blenderforge/internal/content"
	"blenderforge/internal/domain"
)

func filledSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	rt := content.EmptyRichText()
	rt.Content[0].Content = []content.Node{{Type: "text", Text: "body"}}
	if !s.SetText(s.Blocks()[0].ID, rt) {
		t.Fatal("SetText failed")
	}
	return s
}

func TestNormalizeTruncatesAtBoundary(t *testing.T) {
	m := &Metadata{
		Title:       strings.Repeat("a", config.MaxTitleLength+1),
		Description: strings.Repeat("b", config.MaxDescriptionLength+20),
	}
	m.Normalize()

	if len(m.Title) != config.MaxTitleLength {
		t.Errorf("title length = %d, want %d", len(m.Title), config.MaxTitleLength)
	}
	if len(m.Description) != config.MaxDescriptionLength {
		t.Errorf("description length = %d, want %d", len(m.Description), config.MaxDescriptionLength)
	}
}

func TestNormalizeTruncatesOnRuneBoundary(t *testing.T) {
	// Check marks are three bytes each; a byte-index cut would split the
	// last rune and store invalid UTF-8.
	m := &Metadata{Title: strings.Repeat("✓", config.MaxTitleLength+10)}
	m.Normalize()

	if !utf8.ValidString(m.Title) {
		t.Fatalf("title is not valid UTF-8: %q", m.Title)
	}
	if got := utf8.RuneCountInString(m.Title); got != config.MaxTitleLength {
		t.Errorf("title rune count = %d, want %d", got, config.MaxTitleLength)
	}
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	m := &Metadata{Title: "  Donuts 101  ", Category: " Modeling\n"}
	m.Normalize()
	if m.Title != "Donuts 101" {
		t.Errorf("title = %q", m.Title)
	}
	if m.Category != "Modeling" {
		t.Errorf("category = %q", m.Category)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	s := NewSession() // empty document, no text entered
	m := &Metadata{Kind: KindArticle}
	m.Normalize()

	err := s.Validate(m)
	if err == nil {
		t.Fatal("Validate passed on an empty session")
	}
	if s.State() != StateEditing {
		t.Errorf("state after failed Validate = %q, want %q", s.State(), StateEditing)
	}

	var fields domain.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("error type = %T, want domain.FieldErrors", err)
	}
	for _, name := range []string{"title", "description", "category", "difficulty", "readTime", "thumbnail", "content"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("missing field error for %q (got %v)", name, fields)
		}
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Error("FieldErrors does not match domain.ErrValidation")
	}
}

func TestValidateArticleReadTimeRange(t *testing.T) {
	base := Metadata{
		Kind:            KindArticle,
		Title:           "Title",
		Description:     "Desc",
		Category:        "Tutorials",
		Difficulty:      "Beginner",
		HasNewThumbnail: true,
	}

	tests := []struct {
		name     string
		readTime int
		wantErr  bool
	}{
		{"zero", 0, true},
		{"minimum", config.MinReadTime, false},
		{"maximum", config.MaxReadTime, false},
		{"over maximum", config.MaxReadTime + 1, true},
		{"negative", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filledSession(t)
			m := base
			m.ReadTime = tt.readTime
			err := s.Validate(&m)
			if tt.wantErr && err == nil {
				t.Errorf("readTime %d passed validation", tt.readTime)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("readTime %d failed validation: %v", tt.readTime, err)
			}
		})
	}
}

func TestValidateProductPrice(t *testing.T) {
	base := Metadata{
		Kind:            KindProduct,
		Title:           "Procedural Rocks",
		Description:     "A rock pack",
		Category:        "Assets",
		HasNewThumbnail: true,
	}

	tests := []struct {
		name    string
		price   float64
		wantErr bool
	}{
		{"free", 0, false},
		{"paid", 14.99, false},
		{"negative", -1, true},
		{"over cap", float64(config.MaxProductPrice) + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filledSession(t)
			m := base
			m.Price = tt.price
			err := s.Validate(&m)
			if tt.wantErr && err == nil {
				t.Errorf("price %v passed validation", tt.price)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("price %v failed validation: %v", tt.price, err)
			}
		})
	}
}

func TestValidateProductIgnoresArticleFields(t *testing.T) {
	s := filledSession(t)
	m := &Metadata{
		Kind:        KindProduct,
		Title:       "Shader Pack",
		Description: "Shaders",
		Category:    "Materials",
		Price:       4.99,
		// Difficulty and ReadTime deliberately zero.
		HasNewThumbnail: true,
	}
	if err := s.Validate(m); err != nil {
		t.Errorf("product validation used article-only fields: %v", err)
	}
}

func TestValidateThumbnailSatisfiedByExistingURL(t *testing.T) {
	s := filledSession(t)
	m := &Metadata{
		Kind:         KindArticle,
		Title:        "Title",
		Description:  "Desc",
		Category:     "Tutorials",
		Difficulty:   "Beginner",
		ReadTime:     5,
		ThumbnailURL: "https://cdn.example.com/thumb.webp",
	}
	if err := s.Validate(m); err != nil {
		t.Errorf("existing thumbnail did not satisfy requirement: %v", err)
	}
}

func TestValidatePendingImageBlockIsNotContent(t *testing.T) {
	s := NewSession()
	s.RemoveBlock(s.Blocks()[0].ID) // no-op, keeps minimum
	if _, _, err := s.AddBlock(content.BlockImage); err != nil {
		t.Fatal(err)
	}
	m := &Metadata{
		Kind:            KindArticle,
		Title:           "Title",
		Description:     "Desc",
		Category:        "Tutorials",
		Difficulty:      "Beginner",
		ReadTime:        5,
		HasNewThumbnail: true,
	}

	err := s.Validate(m)
	var fields domain.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fields["content"]; !ok {
		t.Errorf("empty text + pending image counted as content: %v", fields)
	}
}

func validArticleMeta() *Metadata {
	return &Metadata{
		Kind:            KindArticle,
		Title:           "Title",
		Description:     "Desc",
		Category:        "Tutorials",
		Difficulty:      "Beginner",
		ReadTime:        5,
		HasNewThumbnail: true,
	}
}

func TestValidateRejectsUnknownPlatformKeys(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *Session)
	}{
		{
			name: "social link off the catalog",
			setup: func(t *testing.T, s *Session) {
				b, _, err := s.AddBlock(content.BlockSocial)
				if err != nil {
					t.Fatal(err)
				}
				ok := s.SetSocial(b.ID, content.SocialContent{
					Title: "Find me",
					Links: []content.SocialLink{{Platform: "myspace", URL: "https://myspace.example/me"}},
				})
				if !ok {
					t.Fatal("SetSocial failed")
				}
			},
		},
		{
			name: "support platform off the catalog",
			setup: func(t *testing.T, s *Session) {
				b, _, err := s.AddBlock(content.BlockSupport)
				if err != nil {
					t.Fatal(err)
				}
				ok := s.SetSupport(b.ID, content.SupportContent{
					Platform: "wire-transfer",
					URL:      "https://bank.example/me",
				})
				if !ok {
					t.Fatal("SetSupport failed")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filledSession(t)
			tt.setup(t, s)

			err := s.Validate(validArticleMeta())
			var fields domain.FieldErrors
			if !errors.As(err, &fields) {
				t.Fatalf("expected field errors, got %v", err)
			}
			if _, ok := fields["platforms"]; !ok {
				t.Errorf("unknown platform key accepted: %v", fields)
			}
		})
	}
}

func TestValidateAcceptsCatalogPlatformKeys(t *testing.T) {
	s := filledSession(t)

	social, _, err := s.AddBlock(content.BlockSocial)
	if err != nil {
		t.Fatal(err)
	}
	s.SetSocial(social.ID, content.SocialContent{
		Title: "Find me",
		Links: []content.SocialLink{{Platform: "youtube", Username: "maker", URL: "https://youtube.com/@maker"}},
	})

	support, _, err := s.AddBlock(content.BlockSupport)
	if err != nil {
		t.Fatal(err)
	}
	s.SetSupport(support.ID, content.SupportContent{
		Platform: "kofi",
		URL:      "https://ko-fi.com/maker",
	})

	if err := s.Validate(validArticleMeta()); err != nil {
		t.Errorf("catalog platforms rejected: %v", err)
	}
}
