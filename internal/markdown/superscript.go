package markdown

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Superscript is an inline AST node for `^text^` spans. Goldmark ships no
// superscript extension of its own; this one is modeled directly on its
// extension/strikethrough.go (single-character delimiter, symmetric
// open/close), swapping the delimiter rune and the rendered tag.
type Superscript struct {
	gast.BaseInline
}

// KindSuperscript is this node's AST kind.
var KindSuperscript = gast.NewNodeKind("Superscript")

func (n *Superscript) Kind() gast.NodeKind { return KindSuperscript }

func (n *Superscript) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

// NewSuperscript returns an empty Superscript node.
func NewSuperscript() *Superscript {
	return &Superscript{}
}

type superscriptDelimiterProcessor struct{}

func (p *superscriptDelimiterProcessor) IsDelimiter(b byte) bool {
	return b == '^'
}

func (p *superscriptDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *superscriptDelimiterProcessor) OnMatch(consumes int) gast.Node {
	return NewSuperscript()
}

var defaultSuperscriptDelimiterProcessor = &superscriptDelimiterProcessor{}

type superscriptParser struct{}

var defaultSuperscriptParser = &superscriptParser{}

// NewSuperscriptParser returns the inline parser for `^text^` spans.
func NewSuperscriptParser() parser.InlineParser {
	return defaultSuperscriptParser
}

func (s *superscriptParser) Trigger() []byte {
	return []byte{'^'}
}

func (s *superscriptParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecedingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, defaultSuperscriptDelimiterProcessor)
	if node == nil {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

// SuperscriptHTMLRenderer renders Superscript nodes as <sup>...</sup>.
type SuperscriptHTMLRenderer struct {
	ghtml.Config
}

// NewSuperscriptHTMLRenderer returns a renderer for Superscript nodes.
func NewSuperscriptHTMLRenderer(opts ...ghtml.Option) renderer.NodeRenderer {
	r := &SuperscriptHTMLRenderer{Config: ghtml.NewConfig()}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *SuperscriptHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSuperscript, r.renderSuperscript)
}

func (r *SuperscriptHTMLRenderer) renderSuperscript(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<sup>")
	} else {
		_, _ = w.WriteString("</sup>")
	}
	return gast.WalkContinue, nil
}

type superscriptExtension struct{}

// SuperscriptExtension is the goldmark.Extender for `^text^` superscript
// spans, registered alongside the stock GFM extensions.
var SuperscriptExtension = &superscriptExtension{}

func (e *superscriptExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewSuperscriptParser(), 501),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewSuperscriptHTMLRenderer(), 501),
	))
}
