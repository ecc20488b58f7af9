package content

import (
	"reflect"
	"testing"
)

func mustBlock(t *testing.T, bt BlockType) Block {
	t.Helper()
	b, err := NewBlock(bt)
	if err != nil {
		t.Fatalf("NewBlock(%q): %v", bt, err)
	}
	return b
}

func TestDocumentRoundTrip(t *testing.T) {
	text := mustBlock(t, BlockText)
	text.Text = RichText{Type: "doc", Content: []Node{
		{Type: "heading", Attrs: map[string]interface{}{"level": float64(3)}, Content: []Node{
			{Type: "text", Text: "Modifiers"},
		}},
		{Type: "paragraph", Content: []Node{
			{Type: "text", Text: "Use the ", Marks: nil},
			{Type: "text", Text: "array", Marks: []Mark{{Type: "code"}}},
			{Type: "text", Text: " modifier."},
		}},
		{Type: "image", Attrs: map[string]interface{}{"src": "https://cdn.example.com/mod.png"}},
	}}

	image := mustBlock(t, BlockImage)
	image.ImageURL = "https://cdn.example.com/cover.png"

	// Awaiting upload: must still round-trip as present-but-empty.
	pending := mustBlock(t, BlockImage)

	social := mustBlock(t, BlockSocial)
	social.Social = SocialContent{
		Title:         "Find me",
		ShowInArticle: true,
		Links: []SocialLink{
			{Platform: "github", Username: "forge", URL: "https://github.com/forge"},
			{Platform: "youtube", Username: "forgetv", URL: "https://youtube.com/@forgetv"},
		},
	}

	support := mustBlock(t, BlockSupport)
	support.Support = SupportContent{
		Platform:      "kofi",
		URL:           "https://ko-fi.com/forge",
		Title:         "Buy me a coffee",
		Description:   "Helps me make more tutorials",
		ShowInArticle: true,
	}

	doc := Document{text, image, pending, social, support}

	raw, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	parsed := ParseDocument(raw)
	if len(parsed) != len(doc) {
		t.Fatalf("ParseDocument returned %d blocks, want %d", len(parsed), len(doc))
	}
	if !reflect.DeepEqual(parsed, doc) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", parsed, doc)
	}
}

func TestParseDocumentMalformedNeverFails(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "legacy html", raw: "<p>An <strong>old</strong> article body.</p>"},
		{name: "plain text", raw: "just some words"},
		{name: "empty string", raw: ""},
		{name: "truncated json", raw: `[{"id":"a","type":"text"`},
		{name: "json object not array", raw: `{"type":"doc","content":[]}`},
		{name: "json null", raw: "null"},
		{name: "number", raw: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseDocument(tt.raw)
			if len(doc) != 1 {
				t.Fatalf("ParseDocument(%q) returned %d blocks, want exactly 1", tt.raw, len(doc))
			}
			block := doc[0]
			if block.Type != BlockText {
				t.Errorf("fallback block type = %q, want text", block.Type)
			}
			if !block.IsLegacy() && tt.raw != "" {
				t.Error("fallback block should be legacy")
			}
			if block.LegacyHTML != tt.raw {
				t.Errorf("fallback content = %q, want raw input %q", block.LegacyHTML, tt.raw)
			}
			if block.ID == "" {
				t.Error("fallback block needs a generated ID")
			}
		})
	}
}

func TestParseDocumentNormalizesIDs(t *testing.T) {
	raw := `[
		{"id":"","type":"text","content":{"type":"doc","content":[{"type":"paragraph"}]}},
		{"id":"dup","type":"image","content":"https://cdn.example.com/a.png"},
		{"id":"dup","type":"image","content":"https://cdn.example.com/b.png"}
	]`

	doc := ParseDocument(raw)
	if len(doc) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc))
	}

	seen := make(map[string]bool)
	for i, b := range doc {
		if b.ID == "" {
			t.Errorf("block %d has empty ID after parse", i)
		}
		if seen[b.ID] {
			t.Errorf("block %d has duplicate ID %q after parse", i, b.ID)
		}
		seen[b.ID] = true
	}
	if doc[1].ID != "dup" {
		t.Errorf("first occurrence should keep its ID, got %q", doc[1].ID)
	}
	// Order and content survive normalization.
	if doc[1].ImageURL != "https://cdn.example.com/a.png" || doc[2].ImageURL != "https://cdn.example.com/b.png" {
		t.Error("block order or content changed during ID normalization")
	}
}

func TestParseDocumentLegacyTextContent(t *testing.T) {
	// A block whose text content is a JSON string is a pre-migration HTML
	// fragment and must be kept verbatim as an immutable legacy block.
	raw := `[{"id":"b1","type":"text","content":"<p>hand-written html</p>"}]`

	doc := ParseDocument(raw)
	if len(doc) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc))
	}
	if !doc[0].IsLegacy() {
		t.Fatal("string text content should parse as legacy block")
	}
	if doc[0].LegacyHTML != "<p>hand-written html</p>" {
		t.Errorf("legacy content = %q", doc[0].LegacyHTML)
	}

	// And it round-trips unchanged.
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	again := ParseDocument(out)
	if !reflect.DeepEqual(again, doc) {
		t.Errorf("legacy block did not round-trip:\n got %#v\nwant %#v", again, doc)
	}
}

func TestDocumentHasContent(t *testing.T) {
	empty := NewDocument()
	if empty.HasContent() {
		t.Error("new document should have no content")
	}

	doc := NewDocument()
	doc[0].Text = RichText{Type: "doc", Content: []Node{
		{Type: "paragraph", Content: []Node{{Type: "text", Text: "words"}}},
	}}
	if !doc.HasContent() {
		t.Error("document with text should have content")
	}
}

func TestDocumentFindBlock(t *testing.T) {
	doc := Document{
		{ID: "a", Type: BlockText},
		{ID: "b", Type: BlockImage},
	}
	if got := doc.FindBlock("b"); got != 1 {
		t.Errorf("FindBlock(b) = %d, want 1", got)
	}
	if got := doc.FindBlock("missing"); got != -1 {
		t.Errorf("FindBlock(missing) = %d, want -1", got)
	}
}
