// Package ndgmodel defines the data transfer objects shared across every
// stage of the markdown pipeline, mirroring the role the teacher's
// internal/pipeline package plays for Harvx's FileDescriptor: a package with
// zero business logic and (outside of JSON tags) no external dependencies,
// so every stage can depend on it without creating import cycles.
package ndgmodel

// Header is a single extracted heading: its flattened text, nesting level,
// and resolved anchor ID (spec.md §3).
type Header struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
	ID    string `json:"id"`
}

// MarkdownResult is the output of rendering one markdown file: the final
// HTML body, the ordered heading list, and the document title (the text of
// the first level-1 heading, if any).
type MarkdownResult struct {
	HTML    string
	Headers []Header
	Title   string // empty when the document has no H1.
}

// Declaration describes where an option was declared, normalized from the
// options JSON schema's `declarations: [{name?, url?} | string]` union
// (spec.md §6).
type Declaration struct {
	Name string
	URL  string
}

// NixOption is a single entry from the module options JSON, normalized and
// ready for rendering (spec.md §3).
type NixOption struct {
	Name           string
	TypeName       string
	Description    string // already rendered to HTML
	Default        string // raw JSON text of the default value, if any
	DefaultText    string
	Example        string // raw JSON text of the example value, if any
	ExampleText    string
	Declarations   []Declaration
	Loc            []string
	DeclaredIn     string
	DeclaredInURL  string
	Internal       bool
	ReadOnly       bool
}

// SearchAnchor is one heading entry contributed by a page to the search
// index (spec.md §4.12).
type SearchAnchor struct {
	Text   string   `json:"text"`
	ID     string   `json:"id"`
	Level  int      `json:"level"`
	Tokens []string `json:"tokens"`
}

// SearchDocument is one entry in assets/search-data.json: either a rendered
// page or a single option record (spec.md §3, §4.12).
type SearchDocument struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Path         string         `json:"path"`
	Tokens       []string       `json:"tokens"`
	TitleTokens  []string       `json:"title_tokens"`
	Anchors      []SearchAnchor `json:"anchors"`
}

// IncludedFile records one {=include=} expansion performed while rendering
// a page: the included path (joined onto the including file's directory,
// so it carries the resolver's base directory as its prefix) and, when the opening fence carried an `html:into-file=<name>` directive,
// the custom output file name it names (spec.md §4.2).
type IncludedFile struct {
	Path         string
	CustomOutput string // empty when no html:into-file directive was present.
}
