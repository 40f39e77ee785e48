// Package role implements the role preprocessor of spec.md §4.6: inline
// `{role}`content`` markup rewritten into typed <code>/<span>/<a>
// elements. It runs line by line, skipping fenced and inline code regions
// via internal/fence, matching the Block/Anchor preprocessors' style.
package role

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ndggen/ndg/internal/fence"
)

// Lookup resolves auxiliary data the role preprocessor needs but does not
// own: whether option auto-linking/validation is active, and the manpage
// URL map. A nil Lookup behaves as if option linking is enabled with no
// validation and no manpage URLs are known.
type Lookup struct {
	// KnownOptions is the set of recognized option names. Nil means
	// "validation disabled": any option reference is treated as known.
	KnownOptions map[string]struct{}

	// ManpageURLs maps a manpage reference's text to a known URL.
	ManpageURLs map[string]string
}

func (l *Lookup) isKnownOption(name string) bool {
	if l == nil || l.KnownOptions == nil {
		return true
	}
	_, ok := l.KnownOptions[name]
	return ok
}

func (l *Lookup) manpageURL(name string) (string, bool) {
	if l == nil {
		return "", false
	}
	url, ok := l.ManpageURLs[name]
	return url, ok
}

// roleToken matches "{role}`content`" with content not crossing a newline
// (the input is processed line by line, so that is automatic) and not
// containing a literal backtick (a role span cannot itself contain one,
// matching a single-backtick-delimited span).
var roleToken = regexp.MustCompile("\\{([a-z]+)\\}`([^`]*)`")

// Process rewrites every recognized role occurrence in source.
func Process(source string, lookup *Lookup) string {
	lines := strings.Split(source, "\n")
	tracker := fence.New()

	out := make([]string, len(lines))
	for i, line := range lines {
		wasFence := tracker.Update(line)
		if wasFence || tracker.InCodeBlock() {
			out[i] = line
			continue
		}
		out[i] = processLine(line, lookup)
	}
	return strings.Join(out, "\n")
}

func processLine(line string, lookup *Lookup) string {
	inline := &fence.InlineTracker{}
	return roleToken.ReplaceAllStringFunc(line, func(match string) string {
		idx := strings.Index(line, match)
		if idx >= 0 && inline.InInlineCode(line, idx) {
			return match
		}

		sub := roleToken.FindStringSubmatch(match)
		roleName, content := sub[1], sub[2]

		if content == "" && roleName != "manpage" {
			return match // empty-content rejection (spec.md §8).
		}

		rendered, ok := render(roleName, content, lookup)
		if !ok {
			return match
		}
		return rendered
	})
}

// render produces the HTML for one role occurrence. Role names without a
// dedicated case render as <span class="<role>-markup">, so ok is always
// true.
func render(roleName, content string, lookup *Lookup) (string, bool) {
	escaped := html.EscapeString(content)

	switch roleName {
	case "command":
		return fmt.Sprintf(`<code class="command">%s</code>`, escaped), true
	case "env":
		return fmt.Sprintf(`<code class="env-var">%s</code>`, escaped), true
	case "file":
		return fmt.Sprintf(`<code class="file-path">%s</code>`, escaped), true
	case "var":
		return fmt.Sprintf(`<code class="nix-var">%s</code>`, escaped), true
	case "option":
		return renderOption(content, escaped, lookup), true
	case "manpage":
		return renderManpage(content, escaped, lookup), true
	default:
		return fmt.Sprintf(`<span class="%s-markup">%s</span>`, roleName, escaped), true
	}
}

func renderOption(name, escaped string, lookup *Lookup) string {
	plain := fmt.Sprintf(`<code class="nixos-option">%s</code>`, escaped)
	if !lookup.isKnownOption(name) {
		slog.Warn("unknown option referenced by {option} role", "option", name)
		return plain
	}
	anchor := "option-" + strings.ReplaceAll(name, ".", "-")
	return fmt.Sprintf(`<a class="option-reference" href="options.html#%s">%s</a>`, anchor, plain)
}

func renderManpage(name, escaped string, lookup *Lookup) string {
	if url, ok := lookup.manpageURL(name); ok {
		return fmt.Sprintf(`<a class="manpage-reference" href="%s">%s</a>`, url, escaped)
	}
	return fmt.Sprintf(`<span class="manpage-reference">%s</span>`, escaped)
}
