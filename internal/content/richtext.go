package content

import (
	"strings"
)

// RichText is the structured rich-text document stored inside a text block.
// The shape mirrors the editor's JSON: a "doc" node whose content is a tree
// of typed nodes (paragraphs, headings, lists, inline images) carrying text
// leaves with optional marks. The struct round-trips through encoding/json
// unchanged, which is what lets stored documents survive edit sessions.
type RichText struct {
	Type    string `json:"type"`
	Content []Node `json:"content,omitempty"`
}

// Node is one node of the rich-text tree. Exactly one of Text or Content is
// populated for leaf vs container nodes; Attrs carries node-specific
// attributes (heading level, image src) without constraining the shape.
type Node struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []Node                 `json:"content,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// Mark is an inline formatting annotation on a text leaf (bold, italic, code).
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// EmptyRichText returns the editor's starting state: a doc with one empty
// paragraph. New text blocks are initialized with this.
func EmptyRichText() RichText {
	return RichText{
		Type:    "doc",
		Content: []Node{{Type: "paragraph"}},
	}
}

// IsDoc reports whether the value has the expected top-level doc shape.
func (rt RichText) IsDoc() bool {
	return rt.Type == "doc"
}

// PlainText returns the concatenated text leaves of the document, with block
// nodes separated by newlines. Marks and attributes are dropped. This is the
// projection used to decide whether a text block "has content".
func (rt RichText) PlainText() string {
	var b strings.Builder
	for _, node := range rt.Content {
		writePlainText(&b, node)
	}
	return strings.TrimSpace(b.String())
}

func writePlainText(b *strings.Builder, node Node) {
	if node.Text != "" {
		b.WriteString(node.Text)
		return
	}
	for _, child := range node.Content {
		writePlainText(b, child)
	}
	switch node.Type {
	case "paragraph", "heading", "blockquote", "listItem":
		b.WriteString("\n")
	case "hardBreak":
		b.WriteString("\n")
	}
}

// HasText reports whether the plain-text projection contains any
// non-whitespace content.
func (rt RichText) HasText() bool {
	return rt.PlainText() != ""
}

// ImageSources returns the src attribute of every inline image node, in
// document order. Empty sources (image nodes still awaiting upload) are
// included so callers can distinguish "no images" from "pending image".
func (rt RichText) ImageSources() []string {
	var srcs []string
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if n.Type == "image" {
				src, _ := n.Attrs["src"].(string)
				srcs = append(srcs, src)
			}
			walk(n.Content)
		}
	}
	walk(rt.Content)
	return srcs
}
