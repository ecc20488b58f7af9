package postgres

import (
	"strings"
	"testing"

	"blenderforge/internal/domain/models"
)

func TestProductFilterClauses(t *testing.T) {
	r := &PostgresProductRepository{}

	t.Run("public listing binds no parameters", func(t *testing.T) {
		// seller_id is a UUID column; an empty-string bind would fail to
		// encode, so the anonymous listing must not reference it at all.
		where, args := r.filterClauses(models.ProductFilter{})
		if where != "WHERE published" {
			t.Errorf("where = %q, want %q", where, "WHERE published")
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want none", args)
		}
	})

	t.Run("seller view includes drafts", func(t *testing.T) {
		sellerID := "7a1d4c3e-0000-0000-0000-000000000000"
		where, args := r.filterClauses(models.ProductFilter{SellerID: sellerID})
		if strings.Contains(where, "published") {
			t.Errorf("seller view must not exclude drafts: %q", where)
		}
		if !strings.Contains(where, "seller_id = $1") {
			t.Errorf("where = %q, want a seller_id predicate", where)
		}
		if len(args) != 1 || args[0] != sellerID {
			t.Errorf("args = %v, want [%s]", args, sellerID)
		}
	})

	t.Run("placeholders line up with args", func(t *testing.T) {
		where, args := r.filterClauses(models.ProductFilter{
			Category: "models",
			Search:   "rock",
			FreeOnly: true,
		})
		for i := 1; i <= len(args); i++ {
			if !strings.Contains(where, "$"+string(rune('0'+i))) {
				t.Errorf("where = %q missing placeholder $%d", where, i)
			}
		}
		if strings.Contains(where, "$"+string(rune('0'+len(args)+1))) {
			t.Errorf("where = %q references more placeholders than args (%d)", where, len(args))
		}
		if !strings.Contains(where, "price = 0") {
			t.Errorf("where = %q missing free-only clause", where)
		}
	})
}
