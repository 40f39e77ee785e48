// Package ndgconfig holds the Config oracle (spec.md §3) that the core
// markdown pipeline consumes read-only, plus the machinery that builds that
// oracle from TOML files, environment variables, and CLI flags. The two
// concerns are kept in separate files: types.go defines the immutable
// record itself (imported by every pipeline package); resolver.go and
// logging.go (with the CLI flags in cmd/ndg) implement the out-of-core-scope oracle
// construction described in spec.md §1's non-goals, following the
// teacher's internal/config package structure.
package ndgconfig

import (
	"sync"

	"github.com/ndggen/ndg/internal/sidebar"
)

// SearchConfig controls search-index generation (spec.md §3).
type SearchConfig struct {
	// Enable turns search indexing on or off. Nil means "unset"; effective
	// enablement also considers the deprecated GenerateSearch flag and
	// finally defaults to true (SPEC_FULL.md §4.1).
	Enable *bool `toml:"enable" json:"enable,omitempty"`

	// MaxHeadingLevel bounds which headings contribute search anchors.
	// Valid range 1..=6; defaults to 3.
	MaxHeadingLevel int `toml:"max_heading_level" json:"max_heading_level,omitempty"`

	// Boost is an optional client-side title-token weight multiplier. It is
	// read from config only; search-data.json does not carry it.
	Boost *float64 `toml:"boost" json:"boost,omitempty"`
}

// DefaultMaxHeadingLevel is the default search.max_heading_level.
const DefaultMaxHeadingLevel = 3

// EffectiveMaxHeadingLevel resolves MaxHeadingLevel to its default when unset/invalid.
func (s SearchConfig) EffectiveMaxHeadingLevel() int {
	if s.MaxHeadingLevel < 1 || s.MaxHeadingLevel > 6 {
		return DefaultMaxHeadingLevel
	}
	return s.MaxHeadingLevel
}

// PostprocessConfig controls output minification hooks. The minifier
// internals themselves are out of scope (spec.md §1); only the toggles are
// part of the core's contract, since they gate whether the output writer
// calls out to a minifier at all.
type PostprocessConfig struct {
	MinifyHTML bool `toml:"minify_html" json:"minify_html"`
	MinifyCSS  bool `toml:"minify_css" json:"minify_css"`
	MinifyJS   bool `toml:"minify_js" json:"minify_js"`
}

// IncludedFiles is the append-only, build-lifetime mapping from an included
// page's input_dir-relative source path to its including parent's path,
// consulted by the navigation builder to suppress included pages from the
// sidebar (spec.md §3 invariants). Safe for concurrent use: the build runs
// include resolution for many top-level files in parallel, and each
// resolution records its own findings in here as it completes.
type IncludedFiles struct {
	mu sync.Mutex
	m  map[string]string
}

// NewIncludedFiles returns an empty, ready-to-use map.
func NewIncludedFiles() *IncludedFiles {
	return &IncludedFiles{m: make(map[string]string)}
}

// Record adds one included-path -> parent-path entry.
func (f *IncludedFiles) Record(includedPath, parentPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[includedPath] = parentPath
}

// Contains reports whether path has been recorded as an included file.
func (f *IncludedFiles) Contains(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.m[path]
	return ok
}

// Snapshot returns a copy of the current mapping.
func (f *IncludedFiles) Snapshot() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out
}

// Config is the immutable configuration record the core pipeline consumes,
// per spec.md §3. It is built by resolver.go (or hand-constructed by tests)
// and never mutated once the build starts.
type Config struct {
	InputDir  string
	OutputDir string

	ModuleOptions string // path to options JSON, empty if none.

	TemplateDir  string // directory of template overrides, empty if none.
	TemplatePath string // single-file template override, empty if none.

	StylesheetPaths []string
	ScriptPaths     []string

	ManpageURLsPath string // path to name->URL mapping JSON, empty if none.

	Title      string
	FooterText string
	Revision   string

	GenerateAnchors bool

	// GenerateSearch is the legacy top-level search toggle, retained for
	// compatibility (spec.md §3; SPEC_FULL.md §4.1). Nil means unset.
	GenerateSearch *bool

	Search      SearchConfig
	Sidebar     sidebar.Config
	Postprocess PostprocessConfig

	IncludedFiles *IncludedFiles

	NixdocInputs []string

	// OGImagePath is a local file path to an OpenGraph preview image, copied
	// into assets/ and referenced from the rendered meta tag (spec.md §6).
	OGImagePath string
}

// EffectiveSearchEnabled resolves the search.enable / legacy generate_search
// precedence described in SPEC_FULL.md §4.1.
func (c *Config) EffectiveSearchEnabled() bool {
	if c.Search.Enable != nil {
		return *c.Search.Enable
	}
	if c.GenerateSearch != nil {
		return *c.GenerateSearch
	}
	return true
}
