// Package sidebar implements the sidebar/navigation configuration model from
// spec.md §3: ordering and numbering policy, and the per-path/per-title and
// per-option match rules used to rename, reposition, or hide navigation
// entries.
//
// Rule regexes are compiled once at config-load time and cached alongside
// the rule (spec.md §9 "Pre-compiled regex caches on rule objects" design
// note); matching never compiles a pattern on the hot path. A rule with a
// malformed pattern aborts config loading, per spec.md §3.
package sidebar

import (
	"fmt"
	"regexp"
	"sort"
)

// Ordering selects how navigation entries are sorted.
type Ordering string

const (
	OrderingAlphabetical Ordering = "alphabetical"
	OrderingFilesystem   Ordering = "filesystem"
	OrderingCustom       Ordering = "custom"
)

// Criterion matches either an exact string or a compiled regular expression.
// Both Exact and Regex may be set; per spec.md §3, both must hold for the
// criterion to match.
type Criterion struct {
	Exact string `toml:"exact" json:"exact,omitempty"`
	Regex string `toml:"regex" json:"regex,omitempty"`

	// compiled is populated by Compile; nil if Regex is empty.
	compiled *regexp.Regexp
}

// Compile pre-compiles the Regex field, if set. Called once at load time.
func (c *Criterion) Compile() error {
	if c.Regex == "" {
		return nil
	}
	re, err := regexp.Compile(c.Regex)
	if err != nil {
		return fmt.Errorf("compiling regex %q: %w", c.Regex, err)
	}
	c.compiled = re
	return nil
}

// Match reports whether value satisfies this criterion. An empty criterion
// (no Exact, no Regex) never matches -- callers should only invoke Match on
// criteria known to have at least one field set.
func (c *Criterion) Match(value string) bool {
	if c.Exact != "" && c.Exact != value {
		return false
	}
	if c.compiled != nil && !c.compiled.MatchString(value) {
		return false
	}
	return c.Exact != "" || c.compiled != nil
}

// set reports whether the criterion has any constraint configured.
func (c *Criterion) set() bool {
	return c.Exact != "" || c.Regex != ""
}

// Rule renames, repositions, or hides a navigation entry matched by path
// and/or title criteria. Both Path and Title, when present, must hold for
// the rule to apply (spec.md §3).
type Rule struct {
	Path     *Criterion `toml:"path" json:"path,omitempty"`
	Title    *Criterion `toml:"title" json:"title,omitempty"`
	NewTitle string     `toml:"new_title" json:"new_title,omitempty"`
	Position *int       `toml:"position" json:"position,omitempty"`
}

// Compile pre-compiles the rule's criteria.
func (r *Rule) Compile() error {
	if r.Path != nil {
		if err := r.Path.Compile(); err != nil {
			return fmt.Errorf("path criterion: %w", err)
		}
	}
	if r.Title != nil {
		if err := r.Title.Compile(); err != nil {
			return fmt.Errorf("title criterion: %w", err)
		}
	}
	return nil
}

// Matches reports whether the rule applies to the given path and title.
// A rule with neither Path nor Title set never matches.
func (r *Rule) Matches(path, title string) bool {
	matched := false
	if r.Path != nil && r.Path.set() {
		if !r.Path.Match(path) {
			return false
		}
		matched = true
	}
	if r.Title != nil && r.Title.set() {
		if !r.Title.Match(title) {
			return false
		}
		matched = true
	}
	return matched
}

// OptionRule renames, repositions, hides, or overrides the grouping depth
// of an options-page TOC entry matched by option name.
type OptionRule struct {
	Name     *Criterion `toml:"name" json:"name,omitempty"`
	NewName  string     `toml:"new_name" json:"new_name,omitempty"`
	Depth    *int       `toml:"depth" json:"depth,omitempty"`
	Position *int       `toml:"position" json:"position,omitempty"`
	Hidden   bool       `toml:"hidden" json:"hidden,omitempty"`
}

// Compile pre-compiles the rule's name criterion.
func (r *OptionRule) Compile() error {
	if r.Name != nil {
		if err := r.Name.Compile(); err != nil {
			return fmt.Errorf("name criterion: %w", err)
		}
	}
	return nil
}

// Matches reports whether the rule applies to the given dotted option name.
func (r *OptionRule) Matches(name string) bool {
	if r.Name == nil || !r.Name.set() {
		return false
	}
	return r.Name.Match(name)
}

// OptionsConfig holds options-page-specific sidebar settings: per-option
// rules and the default grouping depth (spec.md §4.11).
type OptionsConfig struct {
	Rules      []*OptionRule `toml:"rules" json:"rules,omitempty"`
	GroupDepth int           `toml:"group_depth" json:"group_depth,omitempty"`
}

// Config is the sidebar configuration record from spec.md §3.
type Config struct {
	Numbered           bool           `toml:"numbered" json:"numbered"`
	NumberSpecialFiles bool           `toml:"number_special_files" json:"number_special_files"`
	Ordering           Ordering       `toml:"ordering" json:"ordering"`
	Matches            []*Rule        `toml:"matches" json:"matches,omitempty"`
	Options            *OptionsConfig `toml:"options" json:"options,omitempty"`
}

// DefaultGroupDepth is the default number of dot-separated prefix
// components used to group options-page TOC entries (spec.md §4.11).
const DefaultGroupDepth = 2

// Compile validates and pre-compiles every regex in the config's rules.
// A malformed pattern anywhere aborts the whole config load, matching
// spec.md §3: "rules with malformed patterns abort loading."
func (c *Config) Compile() error {
	if c.Ordering == "" {
		c.Ordering = OrderingAlphabetical
	}
	for i, r := range c.Matches {
		if err := r.Compile(); err != nil {
			return fmt.Errorf("sidebar.matches[%d]: %w", i, err)
		}
	}
	if c.Options != nil {
		if c.Options.GroupDepth <= 0 {
			c.Options.GroupDepth = DefaultGroupDepth
		}
		for i, r := range c.Options.Rules {
			if err := r.Compile(); err != nil {
				return fmt.Errorf("sidebar.options.rules[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// ApplyRule finds the first matching rule, if any, for a navigation entry.
// Rules are evaluated in configured order; the first match wins.
func (c *Config) ApplyRule(path, title string) *Rule {
	for _, r := range c.Matches {
		if r.Matches(path, title) {
			return r
		}
	}
	return nil
}

// ApplyOptionRule finds the first matching option rule, if any.
func (c *Config) ApplyOptionRule(name string) *OptionRule {
	if c.Options == nil {
		return nil
	}
	for _, r := range c.Options.Rules {
		if r.Matches(name) {
			return r
		}
	}
	return nil
}

// GroupDepth returns the effective depth for grouping options-page TOC
// entries, honoring an explicit per-rule override when one exists for name.
func (c *Config) GroupDepth(name string) int {
	depth := DefaultGroupDepth
	if c.Options != nil && c.Options.GroupDepth > 0 {
		depth = c.Options.GroupDepth
	}
	if r := c.ApplyOptionRule(name); r != nil && r.Depth != nil {
		depth = *r.Depth
	}
	return depth
}

// SortBySetPositionThenField sorts indices 0..n-1 in place using a
// "set positions first, ascending, then unset" comparator, falling back to
// fallbackLess for ties and for comparing two unset-position entries. This
// implements the tie-break policy spec.md §4.10/§4.11 both describe:
// "position ascending, unset positions sort after set ones."
func SortBySetPositionThenField(n int, position func(i int) *int, fallbackLess func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		pi, pj := position(i), position(j)
		switch {
		case pi != nil && pj != nil:
			if *pi != *pj {
				return *pi < *pj
			}
			return fallbackLess(i, j)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		default:
			return fallbackLess(i, j)
		}
	})
	return idx
}
