// Package search implements the search indexer of spec.md §4.12: parallel
// per-file tokenization via golang.org/x/sync/errgroup, sequential document
// ID assignment, and JSON serialization via segmentio/encoding/json.
// Grounded on the teacher's errgroup-based parallel file processing (see
// the dropped internal/pipeline's worker-pool shape, now generalized here)
// and on internal/ndgmodel for the document/anchor record types.
package search

import (
	"context"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"

	"github.com/ndggen/ndg/internal/ndgconfig"
	"github.com/ndggen/ndg/internal/ndgmodel"
)

// tokenPattern matches spec.md §4.12's token grammar: a run of
// [A-Za-z0-9_-] at least 3 characters long, word-bounded.
var tokenPattern = regexp.MustCompile(`\b[A-Za-z0-9_-]{3,}\b`)

// SourceDoc is one markdown page to index.
type SourceDoc struct {
	Path    string // output-relative path, e.g. "guide/intro.html".
	Title   string
	Content string // the already-rendered plaintext of the page.
	Headers []ndgmodel.Header
}

// Tokenize returns the deduplicated, lowercased token set of text.
func Tokenize(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range tokenPattern.FindAllString(text, -1) {
		t := strings.ToLower(m)
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// BuildDocuments tokenizes every SourceDoc concurrently, then assigns
// document IDs sequentially in input order, per spec.md §4.12 and §5's
// "Search-document IDs are assigned in the sequential assembly step"
// ordering guarantee.
func BuildDocuments(ctx context.Context, docs []SourceDoc, maxHeadingLevel int) ([]ndgmodel.SearchDocument, error) {
	partial := make([]ndgmodel.SearchDocument, len(docs))

	g, _ := errgroup.WithContext(ctx)
	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			partial[i] = tokenizeOne(d, maxHeadingLevel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range partial {
		partial[i].ID = i
	}
	return partial, nil
}

func tokenizeOne(d SourceDoc, maxHeadingLevel int) ndgmodel.SearchDocument {
	anchors := make([]ndgmodel.SearchAnchor, 0, len(d.Headers))
	for _, h := range d.Headers {
		if h.Level > maxHeadingLevel {
			continue
		}
		anchors = append(anchors, ndgmodel.SearchAnchor{
			Text:   h.Text,
			ID:     h.ID,
			Level:  h.Level,
			Tokens: Tokenize(h.Text),
		})
	}

	return ndgmodel.SearchDocument{
		Title:       d.Title,
		Content:     d.Content,
		Path:        d.Path,
		Tokens:      Tokenize(d.Content),
		TitleTokens: Tokenize(d.Title),
		Anchors:     anchors,
	}
}

// OptionDocument builds the search document for one module option
// (spec.md §4.12): title "Option: <name>", path "options.html#option-
// <name with . -> ->", content the description rendered to plaintext, and
// no anchors.
func OptionDocument(name, plainDescription string) ndgmodel.SearchDocument {
	title := "Option: " + html.EscapeString(name)
	path := "options.html#option-" + strings.ReplaceAll(name, ".", "-")
	return ndgmodel.SearchDocument{
		Title:       title,
		Content:     plainDescription,
		Path:        path,
		Tokens:      Tokenize(plainDescription),
		TitleTokens: Tokenize(title),
		Anchors:     []ndgmodel.SearchAnchor{},
	}
}

// Marshal serializes the final document list (with sequential IDs already
// assigned) to the search-data.json format.
func Marshal(docs []ndgmodel.SearchDocument) ([]byte, error) {
	return json.Marshal(docs)
}

// PlainText strips HTML tags from rendered markdown output for use as
// search-document content. It is intentionally simple: this package never
// receives raw HTML more complex than what internal/markdown produces for
// a single page's body, and a full DOM parse is unnecessary overhead on
// the indexing hot path.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

func PlainText(renderedHTML string) string {
	stripped := tagPattern.ReplaceAllString(renderedHTML, " ")
	return html.UnescapeString(strings.Join(strings.Fields(stripped), " "))
}

// EffectiveMaxHeadingLevel re-exports the config accessor for callers that
// only have a *ndgconfig.Config handy.
func EffectiveMaxHeadingLevel(cfg *ndgconfig.Config) int {
	return cfg.Search.EffectiveMaxHeadingLevel()
}
