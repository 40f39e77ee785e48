// Package include implements the include resolver of spec.md §4.2:
// expansion of `{=include=}` fenced blocks into the referenced files'
// contents, recursively, with a bounded depth and path-safety checks.
// Grounded on the teacher's recursive-descent style (bounded-depth walk
// with an explicit depth counter, see Harvx's internal/discovery layer
// before it was dropped) and on internal/fence for code-fence awareness.
package include

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ndggen/ndg/internal/fence"
	"github.com/ndggen/ndg/internal/ndgerrors"
	"github.com/ndggen/ndg/internal/ndgmodel"
)

// MaxIncludeDepth bounds recursive include expansion (spec.md §4.2).
const MaxIncludeDepth = 8

const fenceInfoInclude = "{=include=}"

const intoFileDirectivePrefix = "html:into-file="

// Resolver expands include directives for a single top-level document.
type Resolver struct {
	baseDir string
}

// New returns a Resolver rooted at baseDir, the directory include paths are
// considered relative to (normally the directory of the top-level page
// currently being processed).
func New(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// Result is the outcome of resolving includes in one document.
type Result struct {
	Text     string
	Included []ndgmodel.IncludedFile
}

// Resolve expands every `{=include=}` block in source, recursively.
func (r *Resolver) Resolve(source string) (Result, error) {
	included := []ndgmodel.IncludedFile{}
	text, err := r.expand(source, r.baseDir, 0, &included)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Included: included}, nil
}

func (r *Resolver) expand(source, dir string, depth int, included *[]ndgmodel.IncludedFile) (string, error) {
	if depth > MaxIncludeDepth {
		return "", ndgerrors.New(ndgerrors.KindIncludeCycle, dir, fmt.Sprintf("include depth exceeded %d", MaxIncludeDepth), nil)
	}

	lines := strings.Split(source, "\n")
	var out strings.Builder
	tracker := fence.New()

	i := 0
	for i < len(lines) {
		line := lines[i]
		alreadyOpen := tracker.InCodeBlock()
		wasFence := tracker.Update(line)

		_, isOpen := fenceOpenInfo(line)
		opensNewIncludeBlock := wasFence && isOpen && !alreadyOpen && tracker.InCodeBlock() &&
			strings.Contains(line, fenceInfoInclude)
		if opensNewIncludeBlock {
			intoFile := parseIntoFileDirective(line)
			bodyLines, closeIdx, err := collectFenceBody(lines, i+1)
			if err != nil {
				return "", err
			}
			for _, bl := range bodyLines {
				tracker.Update(bl)
			}
			tracker.Update(lines[closeIdx])
			i = closeIdx + 1

			expanded, err := r.expandIncludeBlock(bodyLines, dir, depth, included, intoFile)
			if err != nil {
				return "", err
			}
			out.WriteString(expanded)
			continue
		}

		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
		i++
	}

	return out.String(), nil
}

// expandIncludeBlock resolves every path listed in an include block's body.
func (r *Resolver) expandIncludeBlock(bodyLines []string, dir string, depth int, included *[]ndgmodel.IncludedFile, intoFile string) (string, error) {
	var out strings.Builder
	for _, raw := range bodyLines {
		path := strings.TrimSpace(raw)
		if path == "" {
			continue
		}
		if !isSafeRelativePath(path) {
			continue // rejected silently, per spec.md §4.2.
		}

		full := filepath.Join(dir, path)
		data, err := os.ReadFile(full)
		if err != nil {
			slog.Warn("could not include file", "path", full, "err", err)
			out.WriteString(fmt.Sprintf("<!-- ndg: could not include file: %s -->\n", path))
			continue
		}

		*included = append(*included, ndgmodel.IncludedFile{Path: full, CustomOutput: intoFile})

		expanded, err := r.expand(string(data), filepath.Dir(full), depth+1, included)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
		if !strings.HasSuffix(expanded, "\n") {
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}

// fenceOpenInfo reports a fence opener's info string, if line opens one.
func fenceOpenInfo(line string) (info string, isOpen bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "```") && !strings.HasPrefix(trimmed, "~~~") {
		return "", false
	}
	i := 0
	ch := trimmed[0]
	for i < len(trimmed) && trimmed[i] == ch {
		i++
	}
	if i < 3 {
		return "", false
	}
	return strings.TrimSpace(trimmed[i:]), true
}

// parseIntoFileDirective extracts an "html:into-file=<name>" token from a
// fence opener line, if present.
func parseIntoFileDirective(line string) string {
	idx := strings.Index(line, intoFileDirectivePrefix)
	if idx < 0 {
		return ""
	}
	rest := line[idx+len(intoFileDirectivePrefix):]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// collectFenceBody returns the lines between a fence opener at index start
// and its closer, plus the closer's index.
func collectFenceBody(lines []string, start int) (body []string, closeIdx int, err error) {
	for i := start; i < len(lines); i++ {
		t := strings.TrimLeft(lines[i], " \t")
		if strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~") {
			return lines[start:i], i, nil
		}
	}
	return nil, 0, fmt.Errorf("include block starting at line %d has no closing fence", start)
}

// isSafeRelativePath enforces spec.md §4.2: relative, no ".." component, no
// backslash.
func isSafeRelativePath(path string) bool {
	if path == "" || filepath.IsAbs(path) {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
