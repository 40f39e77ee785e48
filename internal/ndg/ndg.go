// Package ndg is the top-level build orchestrator: it wires every pipeline
// stage (internal/include, internal/blocks, internal/anchor, internal/role,
// internal/markdown, internal/htmlpost, internal/render, internal/options,
// internal/search) into the concurrency model described in spec.md §5 —
// parallel per-file markdown processing, then a sequential barrier for
// navigation, options, and search. Grounded on the teacher's
// internal/pipeline.Run orchestration style (now removed from this tree;
// its role is fully assumed by this package) and its errgroup-bounded
// worker pool.
package ndg

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ndggen/ndg/internal/anchor"
	"github.com/ndggen/ndg/internal/blocks"
	"github.com/ndggen/ndg/internal/highlight"
	"github.com/ndggen/ndg/internal/htmlpost"
	"github.com/ndggen/ndg/internal/include"
	"github.com/ndggen/ndg/internal/markdown"
	"github.com/ndggen/ndg/internal/ndgconfig"
	"github.com/ndggen/ndg/internal/ndgerrors"
	"github.com/ndggen/ndg/internal/ndgmodel"
	"github.com/ndggen/ndg/internal/options"
	"github.com/ndggen/ndg/internal/render"
	"github.com/ndggen/ndg/internal/role"
	"github.com/ndggen/ndg/internal/search"
)

const assetsDir = "assets"

// pageWork is the output of the parallel per-file pipeline stage.
type pageWork struct {
	relPath   string // input-relative path, e.g. "guide/intro.md".
	outPath   string // output-relative path, e.g. "guide/intro.html".
	title     string
	headers   []ndgmodel.Header
	body      string // fully postprocessed page body HTML.
	isSpecial bool
}

// Run executes a full documentation build against cfg.
func Run(ctx context.Context, cfg *ndgconfig.Config) error {
	log := ndgconfig.NewLogger("ndg")

	mdFiles, err := discoverMarkdownFiles(cfg.InputDir)
	if err != nil {
		return ndgerrors.New(ndgerrors.KindIO, cfg.InputDir, "walking input directory", err)
	}

	manpageURLs, err := ndgconfig.LoadManpageURLs(cfg.ManpageURLsPath)
	if err != nil {
		return err
	}

	var knownOptions map[string]struct{}
	var rawOptions []ndgconfig.OptionRaw
	if cfg.ModuleOptions != "" {
		rawOptions, err = ndgconfig.LoadOptionsJSON(cfg.ModuleOptions)
		if err != nil {
			return err
		}
		knownOptions = make(map[string]struct{}, len(rawOptions))
		for _, o := range rawOptions {
			knownOptions[o.Name] = struct{}{}
		}
	}

	roleLookup := &role.Lookup{KnownOptions: knownOptions, ManpageURLs: manpageURLs}
	md := markdown.New()
	hl := highlight.New()

	works := make([]pageWork, len(mdFiles))
	g, _ := errgroup.WithContext(ctx)
	for i, rel := range mdFiles {
		i, rel := i, rel
		g.Go(func() error {
			w, err := processFile(cfg, rel, md, roleLookup, hl, knownOptions, manpageURLs)
			if err != nil {
				return err
			}
			works[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Sequential barrier: pages that were expanded into another page via
	// {=include=} are suppressed from navigation and from direct output.
	navItems := make([]render.NavItem, 0, len(works))
	for _, w := range works {
		if cfg.IncludedFiles.Contains(w.relPath) {
			continue
		}
		navItems = append(navItems, render.NavItem{Path: w.outPath, Title: w.title, IsSpecial: w.isSpecial})
	}

	var builtOptions []ndgmodel.NixOption
	if len(rawOptions) > 0 {
		builtOptions, err = options.Build(rawOptions, md, &cfg.Sidebar)
		if err != nil {
			return err
		}
	}

	hasOptions := len(builtOptions) > 0
	hasLib := len(cfg.NixdocInputs) > 0
	hasSearch := cfg.EffectiveSearchEnabled()
	openGraphHTML := ""
	if cfg.OGImagePath != "" {
		openGraphHTML = fmt.Sprintf(`<meta property="og:image" content="assets/%s">`, filepath.Base(cfg.OGImagePath))
	}

	docNav := render.BuildDocNav(navItems, &cfg.Sidebar, render.DocNavOptions{
		HasOptions: hasOptions, HasLib: hasLib, HasSearch: hasSearch,
	})

	renderer := render.New(cfg.TemplateDir, cfg.TemplatePath)
	navbarHTML, err := renderer.RenderNavbar(render.NavbarContext{
		SiteTitle: cfg.Title, HasOptions: hasOptions, HasLib: hasLib, HasSearch: hasSearch,
	})
	if err != nil {
		return err
	}
	footerHTML, err := renderer.RenderFooter(render.FooterContext{FooterText: cfg.FooterText, Revision: cfg.Revision})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, cfg.OutputDir, "creating output directory", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, assetsDir), 0o755); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, cfg.OutputDir, "creating assets directory", err)
	}

	g2, _ := errgroup.WithContext(ctx)
	for _, w := range works {
		w := w
		if cfg.IncludedFiles.Contains(w.relPath) {
			continue
		}
		g2.Go(func() error {
			return writePage(renderer, cfg, w, docNav, navbarHTML, footerHTML, openGraphHTML, hasOptions, hasLib, hasSearch)
		})
	}
	if err := g2.Wait(); err != nil {
		return err
	}

	if hasOptions {
		if err := writeOptionsPage(renderer, cfg, builtOptions, docNav, navbarHTML, footerHTML, hasLib, hasSearch); err != nil {
			return err
		}
	}

	if hasSearch {
		if err := writeSearchArtifacts(ctx, renderer, cfg, works, builtOptions, md, docNav, navbarHTML, footerHTML, hasOptions, hasLib); err != nil {
			return err
		}
	}

	if err := copyAssets(cfg); err != nil {
		return err
	}

	log.Info("build complete", "pages", len(navItems), "options", len(builtOptions))
	return nil
}

// discoverMarkdownFiles walks root recursively, following symbolic links,
// and collects every ".md" file's root-relative path (spec.md §4.1). A
// visited-real-path set guards against symlink cycles, which the spec is
// silent on but which an unbounded recursive walk must still not hang on.
func discoverMarkdownFiles(root string) ([]string, error) {
	var out []string
	visited := map[string]struct{}{}
	if err := walkFollowingSymlinks(root, root, visited, &out); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func walkFollowingSymlinks(root, dir string, visited map[string]struct{}, out *[]string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if _, seen := visited[real]; seen {
		return nil
	}
	visited[real] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path) // Stat follows symlinks; failures are skipped.
		if err != nil {
			continue
		}
		if info.IsDir() {
			if err := walkFollowingSymlinks(root, path, visited, out); err != nil {
				return err
			}
			continue
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		*out = append(*out, rel)
	}
	return nil
}

func processFile(cfg *ndgconfig.Config, rel string, md *markdown.Processor, roleLookup *role.Lookup, hl *highlight.Highlighter, knownOptions map[string]struct{}, manpageURLs map[string]string) (pageWork, error) {
	full := filepath.Join(cfg.InputDir, rel)
	data, err := os.ReadFile(full)
	if err != nil {
		return pageWork{}, ndgerrors.New(ndgerrors.KindIO, full, "reading markdown source", err)
	}

	resolver := include.New(filepath.Dir(full))
	included, err := resolver.Resolve(string(data))
	if err != nil {
		return pageWork{}, err
	}
	for _, f := range included.Included {
		// f.Path is already joined onto the including file's directory
		// (itself under cfg.InputDir); make it input_dir-relative so
		// IncludedFiles.Contains can be checked against the same key space
		// as pageWork.relPath.
		if includedRel, relErr := filepath.Rel(cfg.InputDir, f.Path); relErr == nil {
			cfg.IncludedFiles.Record(filepath.ToSlash(includedRel), rel)
		}
	}

	text := included.Text
	text = blocks.Process(text)
	text = anchor.Process(text)
	text = role.Process(text, roleLookup)

	result, err := md.Process([]byte(text))
	if err != nil {
		return pageWork{}, err
	}

	body, err := htmlpost.Process(result.HTML, htmlpost.Options{
		KnownOptions: knownOptions,
		ManpageURLs:  manpageURLs,
		Highlighter:  hl,
	})
	if err != nil {
		return pageWork{}, err
	}

	outPath := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	outPath = filepath.ToSlash(outPath)

	title := result.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}

	base := strings.ToLower(filepath.Base(rel))
	isSpecial := base == "index.md" || base == "readme.md"

	return pageWork{
		relPath:   filepath.ToSlash(rel),
		outPath:   outPath,
		title:     title,
		headers:   result.Headers,
		body:      body,
		isSpecial: isSpecial,
	}, nil
}

func writePage(r *render.Renderer, cfg *ndgconfig.Config, w pageWork, docNav, navbarHTML, footerHTML, openGraphHTML string, hasOptions, hasLib, hasSearch bool) error {
	toc := buildTOCFromHeaders(w.headers)

	page, err := r.Render("default.html", render.PageContext{
		Title:          w.title,
		SiteTitle:      cfg.Title,
		Content:        safeHTML(w.body),
		TOC:            safeHTML(toc),
		DocNav:         safeHTML(docNav),
		HasOptions:     render.HasOptionsAttr(hasOptions),
		HasLib:         hasLib,
		HasSearch:      hasSearch,
		GenerateSearch: hasSearch,
		OpenGraphHTML:  safeHTML(openGraphHTML),
		StylesheetPath: "assets/style.css",
		MainJSPath:     "assets/main.js",
		SearchJSPath:   "assets/search.js",
		IndexPath:      "assets/search-data.json",
		OptionsPath:    "options.html",
		SearchPath:     "search.html",
		NavbarHTML:     safeHTML(navbarHTML),
		FooterHTML:     safeHTML(footerHTML),
	})
	if err != nil {
		return err
	}

	outFull := filepath.Join(cfg.OutputDir, filepath.FromSlash(w.outPath))
	if err := os.MkdirAll(filepath.Dir(outFull), 0o755); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, outFull, "creating output subdirectory", err)
	}
	if err := os.WriteFile(outFull, []byte(page), 0o644); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, outFull, "writing page", err)
	}
	return nil
}

func buildTOCFromHeaders(headers []ndgmodel.Header) string {
	items := make([]render.HeaderItem, len(headers))
	for i, h := range headers {
		items[i] = render.HeaderItem{Text: h.Text, Level: h.Level, ID: h.ID}
	}
	return render.BuildTOCFromHeaders(items)
}

func writeOptionsPage(r *render.Renderer, cfg *ndgconfig.Config, opts []ndgmodel.NixOption, docNav, navbarHTML, footerHTML string, hasLib, hasSearch bool) error {
	toc := options.BuildTOC(opts, &cfg.Sidebar)
	tocEntries := make([]render.OptionsTOCEntry, 0, len(toc))
	for _, e := range toc {
		tocEntries = append(tocEntries, adaptTOCEntry(e))
	}
	tocHTML, err := r.RenderOptionsTOC(tocEntries)
	if err != nil {
		return err
	}

	var body strings.Builder
	for _, o := range opts {
		body.WriteString(options.RenderPage(o))
	}

	page, err := r.Render("options.html", render.PageContext{
		Title:          "Options",
		SiteTitle:      cfg.Title,
		Content:        safeHTML(body.String()),
		TOC:            safeHTML(tocHTML),
		DocNav:         safeHTML(docNav),
		HasOptions:     render.HasOptionsAttr(true),
		HasLib:         hasLib,
		HasSearch:      hasSearch,
		GenerateSearch: hasSearch,
		StylesheetPath: "assets/style.css",
		MainJSPath:     "assets/main.js",
		NavbarHTML:     safeHTML(navbarHTML),
		FooterHTML:     safeHTML(footerHTML),
	})
	if err != nil {
		return err
	}

	out := filepath.Join(cfg.OutputDir, "options.html")
	if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, out, "writing options page", err)
	}
	return nil
}

func adaptTOCEntry(e options.TOCEntry) render.OptionsTOCEntry {
	out := render.OptionsTOCEntry{Title: e.Title, IsLeaf: e.IsLeaf}
	if e.Option != nil {
		out.AnchorID = options.AnchorID(e.Option.Name)
	} else {
		out.AnchorID = options.AnchorID(e.Prefix)
	}
	for _, c := range e.Children {
		out.Children = append(out.Children, adaptTOCEntry(c))
	}
	return out
}

func writeSearchArtifacts(ctx context.Context, r *render.Renderer, cfg *ndgconfig.Config, works []pageWork, opts []ndgmodel.NixOption, md *markdown.Processor, docNav, navbarHTML, footerHTML string, hasOptions, hasLib bool) error {
	var sourceDocs []search.SourceDoc
	for _, w := range works {
		if cfg.IncludedFiles.Contains(w.relPath) {
			continue
		}
		sourceDocs = append(sourceDocs, search.SourceDoc{
			Path:    w.outPath,
			Title:   w.title,
			Content: search.PlainText(w.body),
			Headers: w.headers,
		})
	}

	docs, err := search.BuildDocuments(ctx, sourceDocs, cfg.Search.EffectiveMaxHeadingLevel())
	if err != nil {
		return err
	}

	nextID := len(docs)
	for _, o := range opts {
		d := search.OptionDocument(o.Name, search.PlainText(o.Description))
		d.ID = nextID
		nextID++
		docs = append(docs, d)
	}

	data, err := search.Marshal(docs)
	if err != nil {
		return err
	}

	dataPath := filepath.Join(cfg.OutputDir, assetsDir, "search-data.json")
	if err := os.WriteFile(dataPath, data, 0o644); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, dataPath, "writing search index", err)
	}

	page, err := r.Render("search.html", render.PageContext{
		SiteTitle:      cfg.Title,
		DocNav:         safeHTML(docNav),
		HasOptions:     render.HasOptionsAttr(hasOptions),
		HasLib:         hasLib,
		HasSearch:      true,
		StylesheetPath: "assets/style.css",
		MainJSPath:     "assets/main.js",
		SearchJSPath:   "assets/search.js",
		IndexPath:      "assets/search-data.json",
		NavbarHTML:     safeHTML(navbarHTML),
		FooterHTML:     safeHTML(footerHTML),
	})
	if err != nil {
		return err
	}

	out := filepath.Join(cfg.OutputDir, "search.html")
	if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
		return ndgerrors.New(ndgerrors.KindIO, out, "writing search page", err)
	}
	return nil
}

// safeHTML marks content already produced by this package's own rendering
// pipeline (markdown render, htmlpost, navbar/footer partials) as safe for
// html/template to emit without re-escaping.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func copyAssets(cfg *ndgconfig.Config) error {
	paths := append(append([]string{}, cfg.StylesheetPaths...), cfg.ScriptPaths...)
	if cfg.OGImagePath != "" {
		paths = append(paths, cfg.OGImagePath)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return ndgerrors.New(ndgerrors.KindIO, p, "reading asset", err)
		}
		dest := filepath.Join(cfg.OutputDir, assetsDir, filepath.Base(p))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return ndgerrors.New(ndgerrors.KindIO, dest, "writing asset", err)
		}
	}
	return nil
}
