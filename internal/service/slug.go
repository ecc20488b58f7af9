package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// slugExistsFunc checks a candidate slug against storage.
type slugExistsFunc func(ctx context.Context, slug string) (bool, error)

// slugify lowercases the title and collapses every non-alphanumeric run to
// a single hyphen.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// uniqueSlug generates a slug from the title, appending -2, -3, ... until
// an unused one is found.
func uniqueSlug(ctx context.Context, title string, exists slugExistsFunc) (string, error) {
	base := slugify(title)
	slug := base
	for n := 2; ; n++ {
		taken, err := exists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
