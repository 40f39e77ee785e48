// Package markdown wires goldmark with the extension set spec.md §4.7
// requires (tables, footnotes, strikethrough, tasklists, autolinks, and a
// hand-written superscript extension goldmark does not ship), disables
// automatic heading-ID generation, and layers on the prompt-rewriting
// inline renderer and the header/title extractor of §4.7-4.8. It is the
// last stage markdown text passes through before becoming HTML; every
// preprocessor in internal/include, internal/blocks, internal/anchor, and
// internal/role runs on the raw text before it ever reaches this package.
//
// Grounded on the goldmark wiring in other_examples' geocine/geopub
// internal/renderer and danprince/sietch builder.go: construct a
// goldmark.Markdown once with WithExtensions/WithParserOptions/
// WithRendererOptions and reuse it across documents.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/ndggen/ndg/internal/ndgmodel"
)

// Processor parses and renders ndg's CommonMark dialect. It is safe for
// concurrent use: goldmark.Markdown's Parser/Renderer are read-only once
// built, and Parse/Render each operate on their own text.Reader/buffer.
type Processor struct {
	md goldmark.Markdown
}

// New builds a Processor with the full extension set from spec.md §4.7.
func New() *Processor {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Footnote,
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
			SuperscriptExtension,
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(),
		),
	)
	md.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewPromptCodeSpanRenderer(), 0),
	))
	return &Processor{md: md}
}

// Document holds a parsed AST alongside the source buffer it was parsed
// from, so later stages (rendering, header extraction) need not re-parse.
type Document struct {
	Root   gast.Node
	Source []byte
}

// Parse parses source into an AST. Automatic heading-ID generation stays
// off; explicit "{#id}" attributes on heading lines are still recognized
// via parser.WithAttribute().
func (p *Processor) Parse(source []byte) *Document {
	reader := text.NewReader(source)
	root := p.md.Parser().Parse(reader)
	return &Document{Root: root, Source: source}
}

// Render renders a parsed Document to HTML, applying the prompt-rewriting
// code-span renderer registered in New.
func (p *Processor) Render(doc *Document) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, doc.Source, doc.Root); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Headers extracts the document's heading list and title per spec.md §4.8.
func (p *Processor) Headers(doc *Document) (headers []ndgmodel.Header, title string) {
	return ExtractHeaders(doc.Root, doc.Source)
}

// Process runs the full parse -> render -> extract pipeline for one
// document, returning a populated ndgmodel.MarkdownResult. Callers that
// need preprocessing (includes, blocks, anchors, roles) must apply those
// text-level transforms to source before calling Process.
func (p *Processor) Process(source []byte) (ndgmodel.MarkdownResult, error) {
	doc := p.Parse(source)
	html, err := p.Render(doc)
	if err != nil {
		return ndgmodel.MarkdownResult{}, err
	}
	headers, title := p.Headers(doc)
	return ndgmodel.MarkdownResult{HTML: html, Headers: headers, Title: title}, nil
}

// RenderDescription renders a short markdown fragment (a module option's
// description) to an HTML string, skipping header/title extraction. It
// reuses the same Processor/extension set as full pages, so prompt spans
// behave identically inside option descriptions. The text is not passed
// through internal/role first, so role markup in a description is not
// rewritten.
func (p *Processor) RenderDescription(source []byte) (string, error) {
	doc := p.Parse(source)
	return p.Render(doc)
}
