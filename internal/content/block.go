package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BlockType identifies one of the closed set of block variants.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockImage   BlockType = "image"
	BlockSocial  BlockType = "social"
	BlockSupport BlockType = "support"
)

// ErrInvalidBlockType is returned by NewBlock for type tags outside the
// closed set. Stored documents with unknown tags are tolerated (the renderer
// skips them); creating new ones is not.
var ErrInvalidBlockType = errors.New("invalid block type")

// SocialLink is one platform entry inside a social block.
type SocialLink struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
	URL      string `json:"url"`
}

// SocialContent is the payload of a social block: a titled, ordered list of
// platform links with a visibility flag.
type SocialContent struct {
	Title         string       `json:"title"`
	ShowInArticle bool         `json:"showInArticle"`
	Links         []SocialLink `json:"socialLinks"`
}

// SupportContent is the payload of a support block: a single donation/support
// link with optional title and description.
type SupportContent struct {
	Platform      string `json:"platform"`
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	ShowInArticle bool   `json:"showInArticle"`
}

// Block is one unit of document content. The ID is stable across edits and
// unique within a document; the sequence position is the display order.
// Exactly one payload field is meaningful, selected by Type. A text block
// whose content could not be interpreted as a structured rich-text doc is
// carried verbatim in LegacyHTML and treated as immutable.
type Block struct {
	ID   string
	Type BlockType

	Text       RichText
	LegacyHTML string
	ImageURL   string
	Social     SocialContent
	Support    SupportContent

	// raw keeps the content payload of an unknown-typed block so a
	// load/save round trip never destroys it.
	raw json.RawMessage
}

// NewBlock creates a block of the given type with a freshly generated unique
// identifier and empty content. Unknown types fail with ErrInvalidBlockType.
func NewBlock(t BlockType) (Block, error) {
	b := Block{ID: newBlockID(), Type: t}
	switch t {
	case BlockText:
		b.Text = EmptyRichText()
	case BlockImage:
		b.ImageURL = ""
	case BlockSocial:
		b.Social = SocialContent{Title: "Follow me on social media", ShowInArticle: true}
	case BlockSupport:
		b.Support = SupportContent{Platform: "paypal", ShowInArticle: true}
	default:
		return Block{}, fmt.Errorf("%w: %q", ErrInvalidBlockType, t)
	}
	return b, nil
}

func newBlockID() string {
	return "block_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsLegacy reports whether this is an immutable legacy text block.
func (b Block) IsLegacy() bool {
	return b.Type == BlockText && b.LegacyHTML != ""
}

// HasContent reports whether the block contributes visible content: text
// blocks need a non-whitespace plain-text projection, image blocks a
// non-empty URL, social blocks at least one link with a URL, support blocks
// a URL. The composer uses this to decide whether the whole document has
// content before allowing a save.
func (b Block) HasContent() bool {
	switch b.Type {
	case BlockText:
		if b.IsLegacy() {
			return strings.TrimSpace(stripTags(b.LegacyHTML)) != ""
		}
		return b.Text.HasText()
	case BlockImage:
		return b.ImageURL != ""
	case BlockSocial:
		for _, link := range b.Social.Links {
			if link.URL != "" {
				return true
			}
		}
		return false
	case BlockSupport:
		return b.Support.URL != ""
	default:
		return false
	}
}

// stripTags removes anything that looks like markup so legacy HTML blocks
// can be tested for real text content.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// blockEnvelope is the wire shape of a block: a stable envelope with a
// type-dependent content payload.
type blockEnvelope struct {
	ID      string          `json:"id"`
	Type    BlockType       `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON encodes the block as {id, type, content} where content is the
// type-specific payload: a rich-text doc (or raw HTML string for legacy
// blocks), a URL string, or a social/support object.
func (b Block) MarshalJSON() ([]byte, error) {
	var content interface{}
	switch b.Type {
	case BlockText:
		if b.IsLegacy() {
			content = b.LegacyHTML
		} else {
			content = b.Text
		}
	case BlockImage:
		content = b.ImageURL
	case BlockSocial:
		content = b.Social
	case BlockSupport:
		content = b.Support
	default:
		if len(b.raw) > 0 {
			return json.Marshal(blockEnvelope{ID: b.ID, Type: b.Type, Content: b.raw})
		}
		content = nil
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockEnvelope{ID: b.ID, Type: b.Type, Content: raw})
}

// UnmarshalJSON decodes the envelope and dispatches on the type tag. Text
// content that is a JSON string, or an object without the doc shape, becomes
// an immutable legacy block rather than an error. Unknown type tags keep
// their payload verbatim; the renderer skips them.
func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	b.ID = env.ID
	b.Type = env.Type
	if b.ID == "" {
		b.ID = newBlockID()
	}

	switch env.Type {
	case BlockText:
		b.decodeTextContent(env.Content)
	case BlockImage:
		var url string
		if err := json.Unmarshal(env.Content, &url); err == nil {
			b.ImageURL = url
		}
	case BlockSocial:
		var social SocialContent
		if err := json.Unmarshal(env.Content, &social); err == nil {
			b.Social = social
		}
	case BlockSupport:
		var support SupportContent
		if err := json.Unmarshal(env.Content, &support); err == nil {
			b.Support = support
		}
	default:
		b.raw = append(json.RawMessage(nil), env.Content...)
	}
	return nil
}

func (b *Block) decodeTextContent(raw json.RawMessage) {
	// Plain JSON string means a pre-migration HTML fragment.
	var html string
	if err := json.Unmarshal(raw, &html); err == nil {
		b.LegacyHTML = html
		return
	}

	var rt RichText
	if err := json.Unmarshal(raw, &rt); err == nil && rt.IsDoc() {
		b.Text = rt
		return
	}

	// Unrecognized shape: carry verbatim as legacy rather than dropping it.
	b.LegacyHTML = string(raw)
}
