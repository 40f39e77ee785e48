// Package fence implements the fence-aware line tracker shared by every
// markdown preprocessor. It is the single primitive that makes the block,
// anchor, role, and include preprocessors safe to run line-by-line without
// reaching into a fenced code block.
package fence

import "strings"

// Tracker maintains the open/closed state of a fenced code block across a
// stream of lines. Feed it one line at a time via Update; check InCodeBlock
// before applying any transformation to the line just fed.
//
// A Tracker is not safe for concurrent use; each markdown file gets its own
// instance during preprocessing.
type Tracker struct {
	inCodeBlock bool
	fenceChar   byte
	fenceLen    int
}

// New returns a Tracker in the closed state.
func New() *Tracker {
	return &Tracker{}
}

// InCodeBlock reports whether the tracker is currently inside an open fence,
// as of the last line passed to Update.
func (t *Tracker) InCodeBlock() bool {
	return t.inCodeBlock
}

// Update advances the tracker by one line and returns whether that line
// itself is a fence delimiter (opening or closing), as opposed to ordinary
// content. Callers that need to pass fence-delimiter lines through verbatim
// (rather than transform them) can use this to distinguish the two.
func (t *Tracker) Update(line string) bool {
	ch, run, ok := fenceRun(line)
	if !ok {
		return false
	}

	if !t.inCodeBlock {
		t.inCodeBlock = true
		t.fenceChar = ch
		t.fenceLen = run
		return true
	}

	if ch == t.fenceChar && run >= t.fenceLen {
		t.inCodeBlock = false
		t.fenceChar = 0
		t.fenceLen = 0
		return true
	}

	return false
}

// fenceRun reports whether line's first non-whitespace run is a valid fence
// delimiter: three or more of the same fence character (backtick or tilde),
// optionally followed by other content (an info string, on an opening fence).
// A tilde fence tolerates trailing content of any kind; a backtick fence may
// not be followed by another backtick later on the line (CommonMark forbids
// backticks in the info string of a backtick fence), but that distinction
// does not affect open/close detection and is left to the caller.
func fenceRun(line string) (ch byte, run int, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return 0, 0, false
	}

	c := trimmed[0]
	if c != '`' && c != '~' {
		return 0, 0, false
	}

	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}

	return c, n, true
}

// InlineTracker additionally tracks single-backtick inline code spans within
// a single line. Its state is reset on every newline: construct (or call
// Reset on) a fresh InlineTracker per line.
type InlineTracker struct {
	inInline bool
}

// Reset clears the inline-code state, intended to be called once per line.
func (t *InlineTracker) Reset() {
	t.inInline = false
}

// InInlineCode reports whether position i in line falls inside a single
// backtick-delimited inline code span. Only runs of exactly one backtick
// toggle state; runs of two or more backticks are skipped without changing
// it, so positions inside double-backtick spans report false.
func (t *InlineTracker) InInlineCode(line string, i int) bool {
	inline := false
	for j := 0; j < i && j < len(line); {
		if line[j] != '`' {
			j++
			continue
		}
		run := 0
		for j < len(line) && line[j] == '`' {
			run++
			j++
		}
		if run == 1 {
			inline = !inline
		}
	}
	return inline
}
