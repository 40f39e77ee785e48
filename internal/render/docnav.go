package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ndggen/ndg/internal/sidebar"
)

// NavItem is one markdown page as seen by the doc-nav builder: its
// output-relative HTML path, its display title (derived from the first H1,
// or the filename if none), and whether it is an index/readme "special"
// file (spec.md §4.10).
type NavItem struct {
	Path      string
	Title     string
	IsSpecial bool
}

// DocNavOptions controls the trailing links doc-nav generation appends.
type DocNavOptions struct {
	HasOptions bool
	HasLib     bool
	HasSearch  bool
}

// navEntry is an item after rule application, carrying its resolved
// position for sorting.
type navEntry struct {
	item     NavItem
	position *int
}

// BuildDocNav implements spec.md §4.10's doc-nav generation: per-rule title
// and position overrides, ordering by the configured policy, and optional
// numbering.
func BuildDocNav(items []NavItem, cfg *sidebar.Config, opts DocNavOptions) string {
	regular := make([]navEntry, 0, len(items))
	special := make([]navEntry, 0)

	for _, it := range items {
		e := navEntry{item: it}
		if cfg != nil {
			if rule := cfg.ApplyRule(it.Path, it.Title); rule != nil {
				if rule.NewTitle != "" {
					e.item.Title = rule.NewTitle
				}
				e.position = rule.Position
			}
		}
		if it.IsSpecial {
			special = append(special, e)
		} else {
			regular = append(regular, e)
		}
	}

	ordering := sidebar.OrderingAlphabetical
	numbered, numberSpecial := false, false
	if cfg != nil {
		ordering = cfg.Ordering
		numbered = cfg.Numbered
		numberSpecial = cfg.NumberSpecialFiles
	}

	orderEntries(regular, ordering)
	orderEntries(special, ordering)

	var combined []navEntry
	if numbered && numberSpecial {
		combined = append(combined, special...)
		combined = append(combined, regular...)
		orderEntries(combined, ordering)
	}

	var b strings.Builder
	b.WriteString("<ul class=\"doc-nav-list\">")

	writeItems := func(entries []navEntry, startNum int, enumerate bool) int {
		n := startNum
		for _, e := range entries {
			if enumerate {
				fmt.Fprintf(&b, `<li><span class="nav-number">%d.</span> <a href="%s">%s</a></li>`, n, e.item.Path, escape(e.item.Title))
				n++
			} else {
				fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, e.item.Path, escape(e.item.Title))
			}
		}
		return n
	}

	if numbered && numberSpecial {
		writeItems(combined, 1, true)
	} else if numbered {
		writeItems(special, 0, false)
		writeItems(regular, 1, true)
	} else {
		writeItems(special, 0, false)
		writeItems(regular, 0, false)
	}

	if opts.HasOptions {
		b.WriteString(`<li><a href="options.html">Options</a></li>`)
	}
	if opts.HasLib {
		b.WriteString(`<li><a href="lib.html">Library</a></li>`)
	}
	if opts.HasSearch {
		b.WriteString(`<li><a href="search.html">Search</a></li>`)
	}

	b.WriteString("</ul>")
	return b.String()
}

func orderEntries(entries []navEntry, ordering sidebar.Ordering) {
	switch ordering {
	case sidebar.OrderingFilesystem:
		// Traversal order is the order already given; nothing to do.
	case sidebar.OrderingCustom:
		idx := sidebar.SortBySetPositionThenField(len(entries),
			func(i int) *int { return entries[i].position },
			func(i, j int) bool { return entries[i].item.Title < entries[j].item.Title })
		applyPermutation(entries, idx)
	default: // alphabetical
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].item.Title < entries[j].item.Title })
	}
}

func applyPermutation(entries []navEntry, idx []int) {
	out := make([]navEntry, len(entries))
	for newPos, oldIdx := range idx {
		out[newPos] = entries[oldIdx]
	}
	copy(entries, out)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
