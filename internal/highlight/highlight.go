// Package highlight wraps alecthomas/chroma/v2 behind the "highlighter
// capability" contract spec.md §6 describes: given a language name and
// source text, return an HTML fragment or a non-fatal error. It is called
// by internal/htmlpost's DOM post-processing pass (spec.md §4.9 step 7).
package highlight

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/ndggen/ndg/internal/ndgerrors"
)

// DefaultLanguage is used when a code block carries no language class.
const DefaultLanguage = "text"

// Highlighter renders source code to HTML via chroma.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New returns a Highlighter using chroma's "github" style. The formatter
// emits its own <pre class="chroma"> wrapper around the tokens, and
// WithClasses makes it use CSS classes supplied separately rather than
// styles inlined per token.
func New() *Highlighter {
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(false),
	)
	return &Highlighter{style: style, formatter: formatter}
}

// Highlight renders source as lang, returning an HTML fragment that
// replaces the original <pre><code> block entirely.
func (h *Highlighter) Highlight(lang, source string) (string, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", ndgerrors.New(ndgerrors.KindHighlighter, "", fmt.Sprintf("tokenizing %s block", lang), err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", ndgerrors.New(ndgerrors.KindHighlighter, "", fmt.Sprintf("formatting %s block", lang), err)
	}

	return buf.String(), nil
}
