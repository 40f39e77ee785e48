package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndggen/ndg/internal/ndgerrors"
)

//go:embed templates/*.html
var embeddedFS embed.FS

// RequiredTemplates lists every template name spec.md §4.10 requires to be
// resolvable, whether from a configured directory, a single-file override,
// or the embedded defaults.
var RequiredTemplates = []string{
	"default.html", "options.html", "search.html",
	"options_toc.html", "navbar.html", "footer.html", "lib.html",
}

// Renderer resolves and renders named page templates.
type Renderer struct {
	templateDir  string // configured override directory, empty if none.
	templatePath string // single-file override, empty if none.
	cache        *templateCache
}

// sharedCache is the process-wide template cache every Renderer uses.
var sharedCache = newTemplateCache()

// New returns a Renderer. templateDir and templatePath mirror
// ndgconfig.Config's TemplateDir/TemplatePath.
func New(templateDir, templatePath string) *Renderer {
	return &Renderer{templateDir: templateDir, templatePath: templatePath, cache: sharedCache}
}

// Lookup resolves name to a compiled template, using the cache. The lookup
// order is: configured template directory, then the single-file override
// (if its base name matches), then the embedded default set.
func (r *Renderer) Lookup(name string) (*template.Template, error) {
	if r.templateDir != "" {
		path := filepath.Join(r.templateDir, name)
		if _, err := os.Stat(path); err == nil {
			key := cacheKey{root: fingerprintRoot("dir:" + r.templateDir), name: name}
			return r.cache.getOrInsert(key, func() (*template.Template, error) {
				return parseFile(name, path)
			})
		}
	}

	if r.templatePath != "" && filepath.Base(r.templatePath) == name {
		key := cacheKey{root: fingerprintRoot("file:" + r.templatePath), name: name}
		return r.cache.getOrInsert(key, func() (*template.Template, error) {
			return parseFile(name, r.templatePath)
		})
	}

	key := cacheKey{root: fingerprintRoot("embedded"), name: name}
	return r.cache.getOrInsert(key, func() (*template.Template, error) {
		return parseEmbedded(name)
	})
}

func parseFile(name, path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, templateError(name, err)
	}
	t, err := template.New(name).Parse(string(data))
	if err != nil {
		return nil, templateError(name, err)
	}
	return t, nil
}

func parseEmbedded(name string) (*template.Template, error) {
	data, err := embeddedFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, ndgerrors.New(ndgerrors.KindTemplate, name, "no embedded fallback for template", err)
	}
	t, err := template.New(name).Parse(string(data))
	if err != nil {
		return nil, templateError(name, err)
	}
	return t, nil
}

// PageContext holds the per-page template variables spec.md §4.10 requires.
type PageContext struct {
	Title         string
	SiteTitle     string
	Content       template.HTML
	TOC           template.HTML
	DocNav        template.HTML
	HasOptions    template.HTMLAttr
	HasLib        bool
	HasSearch     bool
	CustomScripts []string
	GenerateSearch bool
	MetaTagsHTML  template.HTML
	OpenGraphHTML template.HTML
	StylesheetPath string
	MainJSPath    string
	SearchJSPath  string
	IndexPath     string
	OptionsPath   string
	SearchPath    string
	RootPrefix    string
	NavbarHTML    template.HTML
	FooterHTML    template.HTML
}

// HasOptionsAttr renders spec.md §4.10's has_options contract: empty string
// when options exist, "style=\"display:none;\"" otherwise.
func HasOptionsAttr(present bool) template.HTMLAttr {
	if present {
		return ""
	}
	return `style="display:none;"`
}

// Render executes the named template against ctx.
func (r *Renderer) Render(name string, ctx PageContext) (string, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", ndgerrors.New(ndgerrors.KindTemplate, name, "executing template", err)
	}
	return buf.String(), nil
}

// NavbarContext and FooterContext are the narrower contexts the navbar.html
// and footer.html partials render against; Renderer.RenderPartial executes
// either by name.
type NavbarContext struct {
	SiteTitle  string
	RootPrefix string
	HasOptions bool
	HasLib     bool
	HasSearch  bool
}

type FooterContext struct {
	FooterText string
	Revision   string
}

// RenderPartial executes a `{{define "name"}}` partial template by its
// internal define name rather than by file name.
func (r *Renderer) RenderPartial(fileName, defineName string, ctx any) (string, error) {
	t, err := r.Lookup(fileName)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, defineName, ctx); err != nil {
		return "", ndgerrors.New(ndgerrors.KindTemplate, fileName, "executing partial", err)
	}
	return buf.String(), nil
}

// RenderNavbar renders navbar.html's "navbar" define block.
func (r *Renderer) RenderNavbar(ctx NavbarContext) (string, error) {
	return r.RenderPartial("navbar.html", "navbar", ctx)
}

// RenderFooter renders footer.html's "footer" define block.
func (r *Renderer) RenderFooter(ctx FooterContext) (string, error) {
	return r.RenderPartial("footer.html", "footer", ctx)
}

// OptionsTOCEntry is the shape options_toc.html iterates over; callers
// (internal/options via internal/ndg) adapt their richer TOCEntry into
// this minimal template-facing form.
type OptionsTOCEntry struct {
	AnchorID string
	Title    string
	IsLeaf   bool
	Children []OptionsTOCEntry
}

// RenderOptionsTOC renders options_toc.html's "options_toc" define block.
func (r *Renderer) RenderOptionsTOC(entries []OptionsTOCEntry) (string, error) {
	return r.RenderPartial("options_toc.html", "options_toc", entries)
}

// BuildTOC implements spec.md §4.10's TOC generation: headings with
// level <= 3, nested <ul>/<li> by heading depth, trailing "{#id}" already
// stripped upstream by internal/markdown's header extractor.
func BuildTOC(headers []tocHeader) string {
	filtered := make([]tocHeader, 0, len(headers))
	for _, h := range headers {
		if h.Level <= 3 {
			filtered = append(filtered, h)
		}
	}

	roots := buildTOCTree(filtered)
	var b strings.Builder
	renderTOCNodes(&b, roots)
	if b.Len() == 0 {
		return "<ul></ul>"
	}
	return b.String()
}

// tocNode is one heading in the TOC tree, with its nested subheadings.
type tocNode struct {
	header   tocHeader
	children []*tocNode
}

// buildTOCTree turns the flat, level-tagged header list into a tree: each
// header becomes a child of the nearest preceding header with a strictly
// lower level, or a root if none exists.
func buildTOCTree(headers []tocHeader) []*tocNode {
	var roots []*tocNode
	var stack []*tocNode
	for _, h := range headers {
		node := &tocNode{header: h}
		for len(stack) > 0 && stack[len(stack)-1].header.Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

func renderTOCNodes(b *strings.Builder, nodes []*tocNode) {
	if len(nodes) == 0 {
		return
	}
	b.WriteString("<ul>")
	for _, n := range nodes {
		fmt.Fprintf(b, `<li><a href="#%s">%s</a>`, n.header.ID, template.HTMLEscapeString(n.header.Text))
		renderTOCNodes(b, n.children)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}

// tocHeader is the minimal shape BuildTOC needs, decoupled from
// ndgmodel so this package stays import-light; internal/ndg adapts
// ndgmodel.Header into it via HeaderItem/BuildTOCFromHeaders.
type tocHeader struct {
	Text  string
	Level int
	ID    string
}

// NewTOCHeader adapts a (text, level, id) triple into BuildTOC's input.
func NewTOCHeader(text string, level int, id string) tocHeader {
	return tocHeader{Text: text, Level: level, ID: id}
}

// HeaderItem is the exported (text, level, id) triple callers outside this
// package use to build a page TOC, since tocHeader itself is unexported.
type HeaderItem struct {
	Text  string
	Level int
	ID    string
}

// BuildTOCFromHeaders adapts a slice of HeaderItem and renders it via
// BuildTOC.
func BuildTOCFromHeaders(items []HeaderItem) string {
	headers := make([]tocHeader, len(items))
	for i, it := range items {
		headers[i] = tocHeader{Text: it.Text, Level: it.Level, ID: it.ID}
	}
	return BuildTOC(headers)
}
