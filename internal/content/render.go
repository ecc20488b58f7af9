package content

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Renderer converts a document into display markup for read-only viewing.
// All output passes through a bluemonday policy: block content originates
// from the owning user, but rendered pages are served to everyone, so
// injected script must never survive. Thread-safe for concurrent use.
type Renderer struct {
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer with a UGC sanitizing policy extended for
// the markup this package emits (lazy-loaded images, card classes).
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("loading").OnElements("img")
	policy.AllowAttrs("class").OnElements("section", "div", "p", "h3", "h4", "a", "ul", "li", "span", "img")
	policy.RequireNoFollowOnLinks(true)
	return &Renderer{policy: policy}
}

// RenderHTML renders the whole document in block order. Blocks with unknown
// type tags render nothing; they are skipped, not errors.
func (r *Renderer) RenderHTML(doc Document) string {
	var b strings.Builder
	for _, block := range doc {
		r.renderBlock(&b, block)
	}
	return r.policy.Sanitize(b.String())
}

// RenderBlockHTML renders a single block, sanitized.
func (r *Renderer) RenderBlockHTML(block Block) string {
	var b strings.Builder
	r.renderBlock(&b, block)
	return r.policy.Sanitize(b.String())
}

func (r *Renderer) renderBlock(b *strings.Builder, block Block) {
	switch block.Type {
	case BlockText:
		if block.IsLegacy() {
			// Legacy HTML is emitted verbatim; the final sanitize pass is
			// what makes it safe.
			b.WriteString(block.LegacyHTML)
			return
		}
		renderNodes(b, block.Text.Content)
	case BlockImage:
		if block.ImageURL == "" {
			return
		}
		fmt.Fprintf(b, `<img src=%q alt="" loading="lazy">`, block.ImageURL)
	case BlockSocial:
		renderSocial(b, block.Social)
	case BlockSupport:
		renderSupport(b, block.Support)
	}
}

func renderNodes(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		renderNode(b, n)
	}
}

func renderNode(b *strings.Builder, n Node) {
	switch n.Type {
	case "paragraph":
		b.WriteString("<p>")
		renderNodes(b, n.Content)
		b.WriteString("</p>")
	case "heading":
		level := headingLevel(n)
		fmt.Fprintf(b, "<h%d>", level)
		renderNodes(b, n.Content)
		fmt.Fprintf(b, "</h%d>", level)
	case "bulletList":
		b.WriteString("<ul>")
		renderNodes(b, n.Content)
		b.WriteString("</ul>")
	case "orderedList":
		b.WriteString("<ol>")
		renderNodes(b, n.Content)
		b.WriteString("</ol>")
	case "listItem":
		b.WriteString("<li>")
		renderNodes(b, n.Content)
		b.WriteString("</li>")
	case "blockquote":
		b.WriteString("<blockquote>")
		renderNodes(b, n.Content)
		b.WriteString("</blockquote>")
	case "codeBlock":
		b.WriteString("<pre><code>")
		for _, child := range n.Content {
			b.WriteString(html.EscapeString(child.Text))
		}
		b.WriteString("</code></pre>")
	case "horizontalRule":
		b.WriteString("<hr>")
	case "hardBreak":
		b.WriteString("<br>")
	case "image":
		src, _ := n.Attrs["src"].(string)
		if src == "" {
			return
		}
		alt, _ := n.Attrs["alt"].(string)
		fmt.Fprintf(b, `<img src=%q alt=%q loading="lazy">`, src, alt)
	case "text":
		b.WriteString(renderText(n))
	default:
		// Unknown node types contribute their children, matching the
		// editor's tolerance for extensions it doesn't know.
		renderNodes(b, n.Content)
	}
}

// headingLevel clamps the heading attribute to the editor's 2..4 range.
func headingLevel(n Node) int {
	level := 2
	if v, ok := n.Attrs["level"].(float64); ok {
		level = int(v)
	}
	if level < 2 {
		level = 2
	}
	if level > 4 {
		level = 4
	}
	return level
}

func renderText(n Node) string {
	out := html.EscapeString(n.Text)
	// Marks wrap innermost-first so the last mark listed is the outermost tag.
	for i := len(n.Marks) - 1; i >= 0; i-- {
		switch n.Marks[i].Type {
		case "bold":
			out = "<strong>" + out + "</strong>"
		case "italic":
			out = "<em>" + out + "</em>"
		case "code":
			out = "<code>" + out + "</code>"
		case "strike":
			out = "<del>" + out + "</del>"
		case "link":
			if href, ok := n.Marks[i].Attrs["href"].(string); ok && href != "" {
				out = fmt.Sprintf(`<a href=%q>%s</a>`, href, out)
			}
		}
	}
	return out
}

func renderSocial(b *strings.Builder, social SocialContent) {
	if !social.ShowInArticle {
		return
	}
	var links []SocialLink
	for _, link := range social.Links {
		if link.URL != "" {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		return
	}

	b.WriteString(`<section class="social-block">`)
	if social.Title != "" {
		fmt.Fprintf(b, "<h3>%s</h3>", html.EscapeString(social.Title))
	}
	b.WriteString(`<ul class="social-links">`)
	for _, link := range links {
		fmt.Fprintf(b, `<li><a href=%q>%s</a>`, link.URL, html.EscapeString(link.Platform))
		if link.Username != "" {
			fmt.Fprintf(b, `<span class="social-username">@%s</span>`, html.EscapeString(link.Username))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul></section>")
}

func renderSupport(b *strings.Builder, support SupportContent) {
	if !support.ShowInArticle || support.URL == "" {
		return
	}

	title := support.Title
	if title == "" {
		title = "Support the creator"
	}

	b.WriteString(`<section class="support-block">`)
	fmt.Fprintf(b, "<h3>%s</h3>", html.EscapeString(title))
	if support.Description != "" {
		fmt.Fprintf(b, "<p>%s</p>", html.EscapeString(support.Description))
	}
	fmt.Fprintf(b, `<a class="support-link" href=%q>Support</a>`, support.URL)
	b.WriteString("</section>")
}
