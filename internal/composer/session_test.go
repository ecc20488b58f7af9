package composer

import (
	"errors"
	"testing"

	"blenderforge/internal/config"
	"blenderforge/internal/content"
)

func TestNewSessionStartsWithOneTextBlock(t *testing.T) {
	s := NewSession()

	if s.State() != StateEditing {
		t.Fatalf("state = %q, want %q", s.State(), StateEditing)
	}
	if s.BlockCount() != 1 {
		t.Fatalf("block count = %d, want 1", s.BlockCount())
	}
	if got := s.Blocks()[0].Type; got != content.BlockText {
		t.Errorf("initial block type = %q, want %q", got, content.BlockText)
	}
}

func TestLoadSessionMalformedContent(t *testing.T) {
	s := LoadSession("<p>old article body</p>")

	if s.BlockCount() != 1 {
		t.Fatalf("block count = %d, want 1", s.BlockCount())
	}
	b := s.Blocks()[0]
	if !b.IsLegacy() {
		t.Error("expected malformed content to load as a legacy block")
	}
	if b.LegacyHTML != "<p>old article body</p>" {
		t.Errorf("legacy html = %q", b.LegacyHTML)
	}
}

func TestAddBlockStopsAtCap(t *testing.T) {
	s := NewSession()

	for s.BlockCount() < config.MaxDocumentBlocks {
		if _, added, err := s.AddBlock(content.BlockText); err != nil || !added {
			t.Fatalf("AddBlock at count %d: added=%v err=%v", s.BlockCount(), added, err)
		}
	}

	// The next add must be a silent no-op, not an error.
	_, added, err := s.AddBlock(content.BlockImage)
	if err != nil {
		t.Fatalf("AddBlock past cap returned error: %v", err)
	}
	if added {
		t.Error("AddBlock past cap reported added=true")
	}
	if s.BlockCount() != config.MaxDocumentBlocks {
		t.Errorf("block count = %d, want %d", s.BlockCount(), config.MaxDocumentBlocks)
	}
}

func TestAddBlockUnknownType(t *testing.T) {
	s := NewSession()
	if _, added, err := s.AddBlock("video"); err == nil || added {
		t.Errorf("AddBlock(video): added=%v err=%v, want error", added, err)
	}
}

func TestRemoveBlockKeepsMinimum(t *testing.T) {
	s := NewSession()
	only := s.Blocks()[0]

	if s.RemoveBlock(only.ID) {
		t.Error("removed the only block")
	}
	if s.BlockCount() != 1 {
		t.Fatalf("block count = %d, want 1", s.BlockCount())
	}

	img, _, err := s.AddBlock(content.BlockImage)
	if err != nil {
		t.Fatal(err)
	}
	if !s.RemoveBlock(img.ID) {
		t.Error("failed to remove second block")
	}
	if s.RemoveBlock("block_missing") {
		t.Error("removed a block that does not exist")
	}
}

func TestRemoveBlockPreservesOrder(t *testing.T) {
	s := NewSession()
	b2, _, _ := s.AddBlock(content.BlockImage)
	b3, _, _ := s.AddBlock(content.BlockSocial)

	if !s.RemoveBlock(b2.ID) {
		t.Fatal("remove failed")
	}
	blocks := s.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("block count = %d, want 2", len(blocks))
	}
	if blocks[1].ID != b3.ID {
		t.Errorf("surviving blocks out of order: got %q at index 1, want %q", blocks[1].ID, b3.ID)
	}
}

func TestSetTextPreservesIdentity(t *testing.T) {
	s := NewSession()
	id := s.Blocks()[0].ID

	rt := content.EmptyRichText()
	rt.Content[0].Content = []content.Node{{Type: "text", Text: "hello"}}

	if !s.SetText(id, rt) {
		t.Fatal("SetText failed")
	}
	b := s.Blocks()[0]
	if b.ID != id {
		t.Errorf("block ID changed: %q -> %q", id, b.ID)
	}
	if got := b.Text.PlainText(); got != "hello" {
		t.Errorf("plain text = %q, want %q", got, "hello")
	}
}

func TestSetTextRefusesLegacyBlock(t *testing.T) {
	s := LoadSession("<p>frozen</p>")
	id := s.Blocks()[0].ID

	if s.SetText(id, content.EmptyRichText()) {
		t.Error("SetText mutated a legacy block")
	}
	if s.Blocks()[0].LegacyHTML != "<p>frozen</p>" {
		t.Error("legacy content changed")
	}
}

func TestTypedSettersRejectWrongType(t *testing.T) {
	s := NewSession()
	textID := s.Blocks()[0].ID
	img, _, _ := s.AddBlock(content.BlockImage)

	if s.SetImageURL(textID, "https://example.com/a.png") {
		t.Error("SetImageURL accepted a text block")
	}
	if s.SetText(img.ID, content.EmptyRichText()) {
		t.Error("SetText accepted an image block")
	}
	if s.SetSocial(img.ID, content.SocialContent{}) {
		t.Error("SetSocial accepted an image block")
	}
	if s.SetSupport(img.ID, content.SupportContent{}) {
		t.Error("SetSupport accepted an image block")
	}
}

func TestSaveLifecycle(t *testing.T) {
	s := NewSession()
	id := s.Blocks()[0].ID
	rt := content.EmptyRichText()
	rt.Content[0].Content = []content.Node{{Type: "text", Text: "body"}}
	s.SetText(id, rt)

	meta := &Metadata{
		Kind:            KindArticle,
		Title:           "Getting Started",
		Description:     "A short guide",
		Category:        "Tutorials",
		Difficulty:      "Beginner",
		ReadTime:        5,
		HasNewThumbnail: true,
	}
	meta.Normalize()

	if err := s.Validate(meta); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.State() != StateSaving {
		t.Fatalf("state after Validate = %q, want %q", s.State(), StateSaving)
	}

	saveErr := errors.New("connection reset")
	s.Fail(saveErr)
	if s.State() != StateEditing {
		t.Errorf("state after Fail = %q, want %q", s.State(), StateEditing)
	}
	if !errors.Is(s.SaveErr(), saveErr) {
		t.Errorf("SaveErr = %v, want %v", s.SaveErr(), saveErr)
	}

	if err := s.Validate(meta); err != nil {
		t.Fatalf("Validate retry: %v", err)
	}
	s.Complete()
	if s.State() != StateSuccess {
		t.Errorf("state after Complete = %q, want %q", s.State(), StateSuccess)
	}
	if s.SaveErr() != nil {
		t.Errorf("SaveErr after Complete = %v, want nil", s.SaveErr())
	}
}
