package content

import (
	"encoding/json"
	"fmt"
)

// Document is the ordered block sequence composing one article or product
// body. It is persisted as a single JSON-encoded string column on the owning
// record.
type Document []Block

// NewDocument returns the starting state for a compose session: a single
// empty text block. A document never has fewer than one block.
func NewDocument() Document {
	block, _ := NewBlock(BlockText)
	return Document{block}
}

// ParseDocument deserializes a stored document string. It never fails: input
// that does not parse as a block array becomes a single legacy text block
// wrapping the raw string verbatim. This is the compatibility contract for
// rows written before the block format existed, so callers must not treat
// the fallback as an error.
func ParseDocument(raw string) Document {
	var blocks []Block
	if err := json.Unmarshal([]byte(raw), &blocks); err == nil && blocks != nil {
		return normalizeIDs(blocks)
	}

	return Document{{
		ID:         newBlockID(),
		Type:       BlockText,
		LegacyHTML: raw,
	}}
}

// normalizeIDs assigns fresh identifiers to blocks that arrived without one
// and deduplicates collisions, preserving order. The first occurrence of an
// ID keeps it.
func normalizeIDs(blocks []Block) Document {
	seen := make(map[string]bool, len(blocks))
	for i := range blocks {
		if blocks[i].ID == "" || seen[blocks[i].ID] {
			blocks[i].ID = newBlockID()
		}
		seen[blocks[i].ID] = true
	}
	return blocks
}

// Serialize encodes the document as the JSON string persisted on the owning
// record.
func (d Document) Serialize() (string, error) {
	data, err := json.Marshal([]Block(d))
	if err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	return string(data), nil
}

// HasContent reports whether at least one block contributes visible content.
func (d Document) HasContent() bool {
	for _, b := range d {
		if b.HasContent() {
			return true
		}
	}
	return false
}

// FindBlock returns the index of the block with the given ID, or -1.
func (d Document) FindBlock(id string) int {
	for i, b := range d {
		if b.ID == id {
			return i
		}
	}
	return -1
}
