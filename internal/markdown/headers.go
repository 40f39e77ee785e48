package markdown

import (
	"regexp"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension/ast"

	"github.com/ndggen/ndg/internal/ndgmodel"
)

// trailingAnchorToken matches a "{#id}" token, optionally preceded by
// whitespace, anchored to the end of a flattened heading text.
var trailingAnchorToken = regexp.MustCompile(`\s*\{#([A-Za-z0-9_-]+)\}\s*$`)

// htmlAnchorToken extracts an "{#id}" token from the content of a raw-HTML
// inline node, per spec.md §4.8.
var htmlAnchorToken = regexp.MustCompile(`\{#([A-Za-z0-9_-]+)\}`)

// nonAlnumRun collapses runs of non-alphanumeric characters for slugs.
var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slug implements spec.md §4.8's ID derivation: lowercase, non-alphanumeric
// runs collapsed to a single "-", leading/trailing "-" trimmed. It is
// idempotent: Slug(Slug(t)) == Slug(t), since its output already satisfies
// its own input grammar.
func Slug(text string) string {
	lower := strings.ToLower(text)
	collapsed := nonAlnumRun.ReplaceAllString(lower, "-")
	return strings.Trim(collapsed, "-")
}

// ExtractHeaders walks doc in document order collecting every heading as a
// ndgmodel.Header, and returns the text of the first level-1 heading (if
// any) as the document title.
func ExtractHeaders(doc gast.Node, source []byte) (headers []ndgmodel.Header, title string) {
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		h, ok := n.(*gast.Heading)
		if !ok {
			return gast.WalkContinue, nil
		}

		text, explicitID := flattenHeading(h, source)
		id := explicitID
		if id == "" {
			id = Slug(text)
		}
		headers = append(headers, ndgmodel.Header{Text: text, Level: h.Level, ID: id})

		if h.Level == 1 && title == "" {
			title = text
		}
		return gast.WalkSkipChildren, nil
	})
	return headers, title
}

// flattenHeading flattens a heading's inline content to plain text per
// spec.md §4.8, stripping any trailing "{#id}" token and returning it
// separately. If the parser already attached an explicit "id" attribute
// (via goldmark's heading-attribute syntax, the same "{#id}" token on an
// ATX heading line) that attribute takes precedence.
func flattenHeading(h *gast.Heading, source []byte) (text string, explicitID string) {
	flat, htmlID := flattenInline(h, source)

	if v, ok := h.AttributeString("id"); ok {
		if idBytes, ok2 := v.([]byte); ok2 {
			explicitID = string(idBytes)
		} else if idStr, ok2 := v.(string); ok2 {
			explicitID = idStr
		}
	}

	if m := trailingAnchorToken.FindStringSubmatch(flat); m != nil {
		flat = trailingAnchorToken.ReplaceAllString(flat, "")
		if explicitID == "" {
			explicitID = m[1]
		}
	}

	if explicitID == "" {
		explicitID = htmlID
	}

	return flat, explicitID
}

// flattenInline recursively flattens the supported inline node kinds into
// plain text, per spec.md §4.8. htmlID carries an anchor ID discovered
// inside a raw-HTML inline node's content, if any.
func flattenInline(n gast.Node, source []byte) (text string, htmlID string) {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gast.CodeSpan:
			b.WriteString(codeSpanLiteral(node, source))
		case *gast.Link:
			t, id := flattenInline(node, source)
			b.WriteString(t)
			if id != "" && htmlID == "" {
				htmlID = id
			}
		case *gast.AutoLink:
			b.Write(node.Label(source))
		case *gast.Emphasis:
			t, id := flattenInline(node, source)
			b.WriteString(t)
			if id != "" && htmlID == "" {
				htmlID = id
			}
		case *ast.Strikethrough:
			t, id := flattenInline(node, source)
			b.WriteString(t)
			if id != "" && htmlID == "" {
				htmlID = id
			}
		case *Superscript:
			t, id := flattenInline(node, source)
			b.WriteString(t)
			if id != "" && htmlID == "" {
				htmlID = id
			}
		case *ast.FootnoteRef:
			// Footnote-reference nodes carry no flattenable children.
		case *gast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				if m := htmlAnchorToken.FindSubmatch(seg.Value(source)); m != nil && htmlID == "" {
					htmlID = string(m[1])
				}
			}
		case *gast.Image:
			// Images contribute no text.
		default:
			t, id := flattenInline(node, source)
			b.WriteString(t)
			if id != "" && htmlID == "" {
				htmlID = id
			}
		}
	}
	return b.String(), htmlID
}
