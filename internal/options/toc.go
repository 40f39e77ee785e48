package options

import (
	"sort"
	"strings"

	"github.com/ndggen/ndg/internal/ndgmodel"
	"github.com/ndggen/ndg/internal/sidebar"
)

// TOCEntry is one node of the rendered options table of contents
// (spec.md §4.11): either a single leaf link, or a collapsible category
// with an optional parent option plus its children.
type TOCEntry struct {
	Prefix   string
	Title    string
	IsLeaf   bool
	Option   *ndgmodel.NixOption
	Children []TOCEntry
	Position *int
}

// BuildTOC groups already-built (non-hidden, renamed) options by their
// first GroupDepth dot-separated path components.
func BuildTOC(opts []ndgmodel.NixOption, cfg *sidebar.Config) []TOCEntry {
	groups := map[string][]ndgmodel.NixOption{}
	var order []string
	seen := map[string]bool{}

	for _, opt := range opts {
		prefix := groupPrefix(opt.Name, cfg)
		if !seen[prefix] {
			seen[prefix] = true
			order = append(order, prefix)
		}
		groups[prefix] = append(groups[prefix], opt)
	}

	entries := make([]TOCEntry, 0, len(order))
	for _, prefix := range order {
		entries = append(entries, buildEntry(prefix, groups[prefix], cfg))
	}

	idx := sidebar.SortBySetPositionThenField(len(entries),
		func(i int) *int { return entries[i].Position },
		func(i, j int) bool {
			ci, cj := strings.Count(entries[i].Prefix, "."), strings.Count(entries[j].Prefix, ".")
			if ci != cj {
				return ci < cj
			}
			return entries[i].Title < entries[j].Title
		})

	sorted := make([]TOCEntry, len(entries))
	for newPos, oldIdx := range idx {
		sorted[newPos] = entries[oldIdx]
	}
	return sorted
}

func groupPrefix(name string, cfg *sidebar.Config) string {
	depth := sidebar.DefaultGroupDepth
	if cfg != nil {
		depth = cfg.GroupDepth(name)
	}
	parts := strings.Split(name, ".")
	if depth >= len(parts) {
		return name
	}
	return strings.Join(parts[:depth], ".")
}

func buildEntry(prefix string, group []ndgmodel.NixOption, cfg *sidebar.Config) TOCEntry {
	position := positionFor(prefix, cfg)

	if len(group) == 1 {
		opt := group[0]
		return TOCEntry{Prefix: prefix, Title: opt.Name, IsLeaf: true, Option: &opt, Position: position}
	}

	var parent *ndgmodel.NixOption
	var children []ndgmodel.NixOption
	for _, opt := range group {
		o := opt
		if o.Name == prefix {
			parent = &o
			continue
		}
		children = append(children, o)
	}

	sort.Slice(children, func(i, j int) bool {
		return strings.TrimPrefix(children[i].Name, prefix) < strings.TrimPrefix(children[j].Name, prefix)
	})

	childEntries := make([]TOCEntry, 0, len(children))
	for _, c := range children {
		cc := c
		childEntries = append(childEntries, TOCEntry{Prefix: c.Name, Title: c.Name, IsLeaf: true, Option: &cc})
	}

	return TOCEntry{
		Prefix:   prefix,
		Title:    prefix,
		IsLeaf:   false,
		Option:   parent,
		Children: childEntries,
		Position: position,
	}
}

func positionFor(name string, cfg *sidebar.Config) *int {
	if cfg == nil {
		return nil
	}
	rule := cfg.ApplyOptionRule(name)
	if rule == nil {
		return nil
	}
	return rule.Position
}
