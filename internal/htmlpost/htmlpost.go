// Package htmlpost implements the DOM post-processor of spec.md §4.9,
// operating on the rendered page HTML parsed into a tree via
// golang.org/x/net/html. Grounded on the DOM-walking pattern used by
// other_examples' geocine/geopub renderer (regexp-plus-string rewriting)
// generalized here to genuine tree mutation, since several steps
// (comment-removal, attribute injection) are awkward to do safely with
// regex over arbitrary HTML.
package htmlpost

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ndggen/ndg/internal/ndgerrors"
)

// Highlighter is the capability internal/highlight provides; kept as an
// interface here so htmlpost has no import-time dependency on chroma.
type Highlighter interface {
	Highlight(lang, source string) (string, error)
}

// Options configures a post-processing pass.
type Options struct {
	// KnownOptions restricts option-reference linking to this set, if
	// non-nil (spec.md §4.9 step 1).
	KnownOptions map[string]struct{}

	// ManpageURLs maps a manpage-reference's text to its URL.
	ManpageURLs map[string]string

	// Highlighter performs syntax highlighting; nil disables step 7.
	Highlighter Highlighter
}

var residualAnchor = regexp.MustCompile(`\[\]\{#([A-Za-z0-9_-]+)\}`)

var languageClass = regexp.MustCompile(`^language-(.+)$`)

var commentListAnchor = regexp.MustCompile(`^\s*nixos-anchor-id:(\S+)\s*$`)

var commentHeaderAnchor = regexp.MustCompile(`^\s*anchor:(\S+)\s*$`)

var humanizePrefixes = []string{"sec-", "ssec-", "opt-"}

// Process parses pageHTML, applies every step of spec.md §4.9 in order, and
// returns the serialized result.
func Process(pageHTML string, opts Options) (string, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return "", ndgerrors.New(ndgerrors.KindTemplate, "", "parsing rendered HTML", err)
	}

	optionReferences(doc, opts.KnownOptions)
	manpageReferences(doc, opts.ManpageURLs)
	commentListAnchors(doc)
	commentHeaderAnchors(doc)
	residualInlineAnchors(doc)
	humanizeEmptyAnchorLinks(doc)
	if opts.Highlighter != nil {
		if err := highlightCodeBlocks(doc, opts.Highlighter); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", ndgerrors.New(ndgerrors.KindTemplate, "", "serializing postprocessed HTML", err)
	}
	return buf.String(), nil
}

// walk calls fn for every node in the tree, depth-first, pre-order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

// wrapInAnchor replaces node with <a {attrs}>node</a>.
func wrapInAnchor(node *html.Node, attrs []html.Attribute) {
	a := &html.Node{
		Type: html.ElementNode,
		Data: "a",
		Attr: attrs,
	}
	parent := node.Parent
	parent.InsertBefore(a, node)
	parent.RemoveChild(node)
	a.AppendChild(node)
}

func isInsideAnchorClass(n *html.Node, class string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.A && hasClass(p, class) {
			return true
		}
	}
	return false
}

// optionReferences implements spec.md §4.9 step 1.
func optionReferences(doc *html.Node, knownOptions map[string]struct{}) {
	var targets []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Code && hasClass(n, "nixos-option") {
			targets = append(targets, n)
		}
	})

	for _, n := range targets {
		if isInsideAnchorClass(n, "option-reference") {
			continue
		}
		name := textContent(n)
		if knownOptions != nil {
			if _, ok := knownOptions[name]; !ok {
				continue
			}
		}
		anchorID := "option-" + strings.ReplaceAll(name, ".", "-")
		wrapInAnchor(n, []html.Attribute{
			{Key: "class", Val: "option-reference"},
			{Key: "href", Val: "options.html#" + anchorID},
		})
	}
}

// manpageReferences implements spec.md §4.9 step 2.
func manpageReferences(doc *html.Node, manpageURLs map[string]string) {
	if len(manpageURLs) == 0 {
		return
	}
	var targets []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Span && hasClass(n, "manpage-reference") {
			targets = append(targets, n)
		}
	})
	for _, n := range targets {
		name := textContent(n)
		url, ok := manpageURLs[name]
		if !ok {
			continue
		}
		n.Data = "a"
		n.Attr = []html.Attribute{
			{Key: "class", Val: "manpage-reference"},
			{Key: "href", Val: url},
		}
	}
}

// commentListAnchors implements spec.md §4.9 step 3.
func commentListAnchors(doc *html.Node) {
	var targets []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li {
			if c := n.FirstChild; c != nil && c.Type == html.CommentNode {
				if commentListAnchor.MatchString(c.Data) {
					targets = append(targets, c)
				}
			}
		}
	})
	for _, c := range targets {
		m := commentListAnchor.FindStringSubmatch(c.Data)
		span := &html.Node{
			Type: html.ElementNode,
			Data: "span",
			Attr: []html.Attribute{
				{Key: "id", Val: m[1]},
				{Key: "class", Val: "nixos-anchor"},
			},
		}
		c.Parent.InsertBefore(span, c.NextSibling)
		c.Parent.RemoveChild(c)
	}
}

// commentHeaderAnchors implements spec.md §4.9 step 4.
func commentHeaderAnchors(doc *html.Node) {
	headingAtoms := map[atom.Atom]bool{
		atom.H1: true, atom.H2: true, atom.H3: true,
		atom.H4: true, atom.H5: true, atom.H6: true,
	}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || !headingAtoms[n.DataAtom] {
			return
		}
		var toRemove *html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.CommentNode && commentHeaderAnchor.MatchString(c.Data) {
				m := commentHeaderAnchor.FindStringSubmatch(c.Data)
				setAttr(n, "id", m[1])
				toRemove = c
				break
			}
		}
		if toRemove != nil {
			n.RemoveChild(toRemove)
		}
	})
}

// residualInlineAnchors implements spec.md §4.9 step 5.
func residualInlineAnchors(doc *html.Node) {
	scopeAtoms := map[atom.Atom]bool{atom.Li: true, atom.P: true}
	var scopes []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && scopeAtoms[n.DataAtom] && !hasCodeOrPreDescendant(n) {
			scopes = append(scopes, n)
		}
	})
	for _, scope := range scopes {
		rewriteResidualAnchorsIn(scope)
	}

	// Global pass for text nodes outside <code>/<pre> not already handled.
	var textNodes []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.TextNode && residualAnchor.MatchString(n.Data) && !hasAncestorCodeOrPre(n) {
			textNodes = append(textNodes, n)
		}
	})
	for _, n := range textNodes {
		rewriteResidualAnchorText(n)
	}
}

func hasCodeOrPreDescendant(n *html.Node) bool {
	found := false
	walk(n, func(c *html.Node) {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Code || c.DataAtom == atom.Pre) {
			found = true
		}
	})
	return found
}

func hasAncestorCodeOrPre(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && (p.DataAtom == atom.Code || p.DataAtom == atom.Pre) {
			return true
		}
	}
	return false
}

func rewriteResidualAnchorsIn(scope *html.Node) {
	var textNodes []*html.Node
	walk(scope, func(c *html.Node) {
		if c.Type == html.TextNode && residualAnchor.MatchString(c.Data) {
			textNodes = append(textNodes, c)
		}
	})
	for _, n := range textNodes {
		rewriteResidualAnchorText(n)
	}
}

func rewriteResidualAnchorText(n *html.Node) {
	matches := residualAnchor.FindAllStringSubmatchIndex(n.Data, -1)
	if len(matches) == 0 {
		return
	}
	parent := n.Parent
	next := n.NextSibling
	cursor := 0
	for _, m := range matches {
		start, end, idStart, idEnd := m[0], m[1], m[2], m[3]
		if start > cursor {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: n.Data[cursor:start]}, next)
		}
		span := &html.Node{
			Type: html.ElementNode,
			Data: "span",
			Attr: []html.Attribute{
				{Key: "id", Val: n.Data[idStart:idEnd]},
				{Key: "class", Val: "nixos-anchor"},
			},
		}
		parent.InsertBefore(span, next)
		cursor = end
	}
	if cursor < len(n.Data) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: n.Data[cursor:]}, next)
	}
	parent.RemoveChild(n)
}

// humanizeEmptyAnchorLinks implements spec.md §4.9 step 6.
func humanizeEmptyAnchorLinks(doc *html.Node) {
	var targets []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			href, ok := attr(n, "href")
			if ok && strings.HasPrefix(href, "#") && strings.TrimSpace(textContent(n)) == "" {
				targets = append(targets, n)
			}
		}
	})
	for _, n := range targets {
		href, _ := attr(n, "href")
		label := humanizeAnchorLabel(href)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	}
}

func humanizeAnchorLabel(href string) string {
	s := strings.TrimPrefix(href, "#")
	for _, p := range humanizePrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// highlightCodeBlocks implements spec.md §4.9 step 7.
func highlightCodeBlocks(doc *html.Node, hl Highlighter) error {
	var targets []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Pre {
			return
		}
		code := n.FirstChild
		if code == nil || code.Type != html.ElementNode || code.DataAtom != atom.Code {
			return
		}
		targets = append(targets, n)
	})

	for _, pre := range targets {
		code := pre.FirstChild
		class, _ := attr(code, "class")
		lang := "text"
		for _, c := range strings.Fields(class) {
			if m := languageClass.FindStringSubmatch(c); m != nil {
				lang = m[1]
			}
		}

		source := textContent(code)
		rendered, err := hl.Highlight(lang, source)
		if err != nil {
			slog.Warn("highlighting failed; block left unhighlighted", "lang", lang, "err", err)
			continue // non-fatal: leave the block unhighlighted.
		}

		fragment, err := html.ParseFragment(strings.NewReader(rendered), &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
		})
		if err != nil {
			continue
		}

		parent := pre.Parent
		for _, f := range fragment {
			parent.InsertBefore(f, pre)
		}
		parent.RemoveChild(pre)
	}
	return nil
}
