// Package blocks implements the block preprocessor of spec.md §4.4: GitHub
// callouts, fenced admonitions, and figures, each transformed into an HTML
// skeleton the markdown renderer then passes through verbatim (raw HTML is
// permitted in input per spec.md §4.7). Definition lists are left to
// goldmark's own extension and are not touched here.
package blocks

import (
	"regexp"
	"strings"

	"github.com/ndggen/ndg/internal/fence"
)

var calloutOpen = regexp.MustCompile(`^>\s*\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION|DANGER)\]\s*$`)

var admonitionOpen = regexp.MustCompile(`^:::\s*\{\.(\S+?)(?:\s+#(\S+))?\}\s*$`)

var figureOpen = regexp.MustCompile(`^:::\s*\{\.figure(?:\s+#(\S+))?\}\s*$`)

var atxHeading = regexp.MustCompile(`^\s{0,3}#{1,6}(\s+.*)?$`)

var setextUnderline = regexp.MustCompile(`^(={3,}|-{3,})\s*$`)

var thematicBreak = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})\s*$`)

var figureCaption = regexp.MustCompile(`^#\s*(.*)$`)

// Process rewrites callouts, admonitions, and figures across a document.
func Process(source string) string {
	lines := strings.Split(source, "\n")
	tracker := fence.New()

	var out []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		wasFence := tracker.Update(line)
		if wasFence || tracker.InCodeBlock() {
			out = append(out, line)
			i++
			continue
		}

		if calloutOpen.MatchString(line) {
			rendered, next := consumeCallout(lines, i)
			out = append(out, rendered...)
			i = next
			continue
		}

		if figureOpen.MatchString(line) {
			rendered, next := consumeFigure(lines, i)
			out = append(out, rendered...)
			i = next
			continue
		}

		if admonitionOpen.MatchString(line) {
			rendered, next := consumeAdmonition(lines, i)
			out = append(out, rendered...)
			i = next
			continue
		}

		out = append(out, line)
		i++
	}

	return strings.Join(out, "\n")
}

// consumeCallout reads a GitHub-style callout starting at index start and
// returns its HTML rendering plus the index of the first unconsumed line.
func consumeCallout(lines []string, start int) ([]string, int) {
	m := calloutOpen.FindStringSubmatch(lines[start])
	calloutType := m[1]

	var content []string
	i := start + 1
	for i < len(lines) {
		line := lines[i]
		if line == "" || isClosingConstruct(line) {
			break
		}
		if strings.HasPrefix(line, ">") {
			content = append(content, strings.TrimPrefix(strings.TrimPrefix(line, ">"), " "))
			i++
			continue
		}
		// Lazy continuation: ordinary paragraph text.
		content = append(content, line)
		i++
	}

	title := strings.ToUpper(calloutType[:1]) + strings.ToLower(calloutType[1:])
	rendered := []string{
		`<div class="admonition ` + strings.ToLower(calloutType) + `">`,
		`<p class="admonition-title">` + title + `</p>`,
		"",
	}
	rendered = append(rendered, content...)
	rendered = append(rendered, "", "</div>")
	return rendered, i
}

// isClosingConstruct reports whether line terminates a lazily-continued
// callout: an ATX heading, a setext underline, a thematic break, or a code
// fence opener.
func isClosingConstruct(line string) bool {
	if atxHeading.MatchString(line) {
		return true
	}
	if setextUnderline.MatchString(line) {
		return true
	}
	if thematicBreak.MatchString(line) {
		return true
	}
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
		return true
	}
	return false
}

// consumeAdmonition reads a fenced admonition (":::" ... ":::") starting at
// start and returns its HTML rendering plus the index of the first
// unconsumed line. Trailing content on the closing line is re-emitted.
func consumeAdmonition(lines []string, start int) ([]string, int) {
	m := admonitionOpen.FindStringSubmatch(lines[start])
	typ, id := m[1], m[2]

	var content []string
	i := start + 1
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, ":::") {
			remainder := strings.TrimSpace(strings.TrimPrefix(trimmed, ":::"))

			idAttr := ""
			if id != "" {
				idAttr = ` id="` + id + `"`
			}
			rendered := []string{
				`<div class="admonition ` + typ + `"` + idAttr + `>`,
				`<p class="admonition-title">` + strings.ToUpper(typ[:1]) + strings.ToLower(typ[1:]) + `</p>`,
				"",
			}
			rendered = append(rendered, content...)
			rendered = append(rendered, "", "</div>")
			if remainder != "" {
				rendered = append(rendered, remainder)
			}
			return rendered, i + 1
		}
		content = append(content, lines[i])
		i++
	}

	// Unterminated admonition: emit what we have, unterminated.
	rendered := []string{`<div class="admonition ` + typ + `">`}
	rendered = append(rendered, content...)
	return rendered, i
}

// consumeFigure reads a figure block starting at start: the opener, a
// caption line beginning with "#", content until the closing ":::".
func consumeFigure(lines []string, start int) ([]string, int) {
	m := figureOpen.FindStringSubmatch(lines[start])
	id := ""
	if len(m) > 1 {
		id = m[1]
	}

	i := start + 1
	caption := ""
	if i < len(lines) {
		if cm := figureCaption.FindStringSubmatch(lines[i]); cm != nil {
			caption = cm[1]
			i++
		}
	}

	var content []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, ":::") {
			i++
			break
		}
		content = append(content, lines[i])
		i++
	}

	idAttr := ""
	if id != "" {
		idAttr = ` id="` + id + `"`
	}
	rendered := []string{
		`<figure` + idAttr + `>`,
		`<figcaption>` + caption + `</figcaption>`,
	}
	rendered = append(rendered, content...)
	rendered = append(rendered, `</figure>`)
	return rendered, i
}
