// Package anchor implements the anchor preprocessor of spec.md §4.5:
// inline `[]{#id}` spans, list-item leading anchors, and the heading
// `{#id}` bridging transform that turns a standalone anchor token on an
// ordinary line into a real level-2 heading. It runs line by line, skipping
// any line (or position) the fence tracker reports as inside a code block.
package anchor

import (
	"regexp"
	"strings"

	"github.com/ndggen/ndg/internal/fence"
)

// inlineAnchor matches "[]{#id}" with a captured ID.
var inlineAnchor = regexp.MustCompile(`\[\]\{#([A-Za-z0-9_-]+)\}`)

// listMarker matches a leading unordered/ordered list marker (with its
// trailing space), capturing it separately from the remainder of the line.
var listMarker = regexp.MustCompile(`^(\s*(?:[-*+]|\d+[.)])\s+)(.*)$`)

// atxHeading matches an ATX heading line.
var atxHeading = regexp.MustCompile(`^\s{0,3}(#{1,6})(\s+.*)?$`)

// anyIDToken matches any "{#id}" token anywhere on a line.
var anyIDToken = regexp.MustCompile(`\{#[A-Za-z0-9_-]+\}`)

// Process rewrites anchors across an entire document, line by line.
func Process(source string) string {
	lines := strings.Split(source, "\n")
	tracker := fence.New()

	out := make([]string, len(lines))
	for i, line := range lines {
		wasFence := tracker.Update(line)
		if wasFence || tracker.InCodeBlock() {
			out[i] = line
			continue
		}
		out[i] = processLine(line)
	}
	return strings.Join(out, "\n")
}

// processLine applies the anchor transforms to a single non-fenced line.
func processLine(line string) string {
	if atxHeading.MatchString(line) {
		return line // heading ID normalization happens at the AST stage.
	}

	if m := listMarker.FindStringSubmatch(line); m != nil {
		marker, rest := m[1], m[2]
		if sub := inlineAnchor.FindStringSubmatch(rest); sub != nil && strings.HasPrefix(rest, sub[0]) {
			replaced := spanFor(sub[1]) + rest[len(sub[0]):]
			return marker + replaced
		}
	}

	// Consume "[]{#id}" spans first so a residual bare "{#id}" check below
	// only ever sees tokens that were not part of an inline anchor.
	replaced := replaceInlineAnchors(line)
	if anyIDToken.MatchString(replaced) {
		return bridgeToHeading(replaced)
	}

	return replaced
}

// replaceInlineAnchors replaces every "[]{#id}" occurrence on a line with
// its rendered span, skipping inline-code spans per the fence tracker's
// companion InlineTracker.
func replaceInlineAnchors(line string) string {
	inline := &fence.InlineTracker{}
	return inlineAnchor.ReplaceAllStringFunc(line, func(match string) string {
		idx := strings.Index(line, match)
		if idx >= 0 && inline.InInlineCode(line, idx) {
			return match
		}
		sub := inlineAnchor.FindStringSubmatch(match)
		return spanFor(sub[1])
	})
}

// bridgeToHeading implements spec.md §4.5's bridging transform: a line
// that contains a "{#id}" token but is not itself an ATX heading becomes a
// level-2 heading carrying that ID.
func bridgeToHeading(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return line
	}
	return "## " + trimmed
}

// spanFor renders the HTML span for a resolved anchor ID.
func spanFor(id string) string {
	return `<span id="` + id + `" class="nixos-anchor"></span>`
}

// StripTrailingID removes a trailing "{#id}" token from text, returning the
// cleaned text and the extracted ID (empty if none was present).
func StripTrailingID(text string) (cleaned string, id string) {
	m := trailingAnchorID.FindStringSubmatch(text)
	if m == nil {
		return text, ""
	}
	return trailingAnchorID.ReplaceAllString(text, ""), m[1]
}

var trailingAnchorID = regexp.MustCompile(`\s*\{#([A-Za-z0-9_-]+)\}\s*$`)
