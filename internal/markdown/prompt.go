package markdown

import (
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// promptEscaper HTML-escapes the handful of characters that matter inside a
// <code> span; goldmark's own codeSpan segments are already whitespace-
// normalized by the inline parser by the time they reach a renderer.
var promptEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// promptRewrite implements spec.md §4.7: an inline code span whose literal
// text matches one of the two recognized prompt forms is rendered as a
// styled terminal/repl snippet instead of a plain <code> element. It
// returns the full replacement HTML and true on a match.
func promptRewrite(literal string) (string, bool) {
	if rest, ok := cutShellPrompt(literal); ok {
		return `<code class="terminal"><span class="prompt">$</span> ` +
			promptEscaper.Replace(rest) + `</code>`, true
	}
	if rest, ok := cutReplPrompt(literal); ok {
		return `<code class="nix-repl"><span class="prompt">nix-repl&gt;</span> ` +
			promptEscaper.Replace(rest) + `</code>`, true
	}
	return "", false
}

// cutShellPrompt matches "$ <command>" but not "$$" and not an escaped "\$".
func cutShellPrompt(literal string) (string, bool) {
	if !strings.HasPrefix(literal, "$ ") {
		return "", false
	}
	if strings.HasPrefix(literal, "$$") {
		return "", false
	}
	return literal[2:], true
}

// cutReplPrompt matches "nix-repl> <expr>" but not "nix-repl>>".
func cutReplPrompt(literal string) (string, bool) {
	const prefix = "nix-repl> "
	const doublePrefix = "nix-repl>> "
	if strings.HasPrefix(literal, doublePrefix) {
		return "", false
	}
	if !strings.HasPrefix(literal, prefix) {
		return "", false
	}
	return literal[len(prefix):], true
}

// codeSpanLiteral concatenates a CodeSpan's Text children into a plain
// string, the way goldmark's own renderer assembles code-span content.
func codeSpanLiteral(n *gast.CodeSpan, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.HardLineBreak() || t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// promptCodeSpanRenderer replaces goldmark's default CodeSpan renderer so
// that terminal/repl prompts get their styled markup while every other
// inline code span renders exactly as before.
type promptCodeSpanRenderer struct{}

// NewPromptCodeSpanRenderer returns the NodeRenderer wired in front of
// goldmark's stock CodeSpan renderer (registered at a lower priority number
// so it takes precedence for gast.KindCodeSpan).
func NewPromptCodeSpanRenderer() renderer.NodeRenderer {
	return &promptCodeSpanRenderer{}
}

func (r *promptCodeSpanRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gast.KindCodeSpan, r.renderCodeSpan)
}

func (r *promptCodeSpanRenderer) renderCodeSpan(w util.BufWriter, source []byte, n gast.Node, entering bool) (gast.WalkStatus, error) {
	node := n.(*gast.CodeSpan)
	literal := codeSpanLiteral(node, source)
	if html, ok := promptRewrite(literal); ok {
		if entering {
			_, _ = w.WriteString(html)
		}
		return gast.WalkSkipChildren, nil
	}

	if entering {
		_, _ = w.WriteString("<code>")
		_, _ = w.WriteString(promptEscaper.Replace(literal))
		return gast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString("</code>")
	return gast.WalkContinue, nil
}
