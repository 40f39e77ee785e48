// Package options builds rendered NixOption records from the raw JSON
// decoded by internal/ndgconfig (spec.md §4.13's Option Page Builder) and
// groups them into a table of contents (spec.md §4.11's Options TOC
// Builder). It is the one package allowed to bridge internal/ndgconfig and
// internal/markdown, since a module option's description is raw markdown
// text that must be rendered before it can appear in ndgmodel.NixOption.
package options

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/ndggen/ndg/internal/markdown"
	"github.com/ndggen/ndg/internal/ndgconfig"
	"github.com/ndggen/ndg/internal/ndgmodel"
	"github.com/ndggen/ndg/internal/sidebar"
)

// Build renders every raw option into its final ndgmodel.NixOption form,
// applying the visible/internal normalization and rule overrides.
func Build(raws []ndgconfig.OptionRaw, md *markdown.Processor, cfg *sidebar.Config) ([]ndgmodel.NixOption, error) {
	out := make([]ndgmodel.NixOption, 0, len(raws))
	for _, raw := range raws {
		opt, err := buildOne(raw, md)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			if rule := cfg.ApplyOptionRule(opt.Name); rule != nil {
				if rule.Hidden {
					continue
				}
				if rule.NewName != "" {
					opt.Name = rule.NewName
				}
			}
		}
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func buildOne(raw ndgconfig.OptionRaw, md *markdown.Processor) (ndgmodel.NixOption, error) {
	description, err := md.RenderDescription([]byte(raw.Description))
	if err != nil {
		return ndgmodel.NixOption{}, fmt.Errorf("rendering description for option %q: %w", raw.Name, err)
	}

	declarations := make([]ndgmodel.Declaration, 0, len(raw.Declarations))
	for _, d := range raw.Declarations {
		declarations = append(declarations, ndgmodel.Declaration{
			Name: d.Name,
			URL:  d.URL,
		})
	}

	declaredIn, declaredInURL := "", ""
	for _, d := range declarations {
		if d.URL != "" {
			declaredIn, declaredInURL = d.Name, d.URL
			break
		}
	}
	if declaredInURL == "" {
		if len(raw.Loc) > 0 {
			declaredIn = raw.Loc[0]
		} else if len(declarations) > 0 {
			declaredIn = declarations[0].Name
		}
	}

	defaultText := raw.DefaultText
	if defaultText == "" {
		defaultText = stringifyJSONValue(raw.Default)
	}
	exampleText := raw.ExampleText
	if exampleText == "" {
		exampleText = stringifyJSONValue(raw.Example)
	}
	defaultJSON, exampleJSON := "", ""
	if raw.Default != nil {
		defaultJSON = string(*raw.Default)
	}
	if raw.Example != nil {
		exampleJSON = string(*raw.Example)
	}

	return ndgmodel.NixOption{
		Name:          raw.Name,
		TypeName:      raw.Type,
		Description:   description,
		Default:       defaultJSON,
		DefaultText:   defaultText,
		Example:       exampleJSON,
		ExampleText:   exampleText,
		Declarations:  declarations,
		Loc:           raw.Loc,
		DeclaredIn:    declaredIn,
		DeclaredInURL: declaredInURL,
		Internal:      raw.EffectiveInternal(),
		ReadOnly:      raw.ReadOnly,
	}, nil
}

// stringifyJSONValue renders a raw JSON scalar/value to a display string,
// HTML-escaped, with any literalExpression-convention surrounding
// backticks stripped (spec.md §4.13).
func stringifyJSONValue(raw *json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var v any
	if err := json.Unmarshal(*raw, &v); err != nil {
		return html.EscapeString(strings.Trim(string(*raw), "`"))
	}
	switch t := v.(type) {
	case string:
		return html.EscapeString(strings.Trim(t, "`"))
	default:
		b, _ := json.Marshal(v)
		return html.EscapeString(strings.Trim(string(b), "`"))
	}
}

// AnchorID implements spec.md §6's option anchor convention.
func AnchorID(name string) string {
	return "option-" + strings.ReplaceAll(name, ".", "-")
}

// RenderPage renders one option's <div class="option"> fragment per
// spec.md §4.13.
func RenderPage(opt ndgmodel.NixOption) string {
	id := AnchorID(opt.Name)
	var b strings.Builder

	fmt.Fprintf(&b, `<div class="option" id="%s">`, id)
	fmt.Fprintf(&b, `<h3><a href="#%s">%s</a></h3>`, id, html.EscapeString(opt.Name))

	if opt.Internal {
		b.WriteString(`<span class="option-internal">Internal</span>`)
	}
	if opt.ReadOnly {
		b.WriteString(`<span class="option-readonly">Read only</span>`)
	}

	fmt.Fprintf(&b, `<p class="option-type">Type: <code>%s</code></p>`, html.EscapeString(opt.TypeName))
	fmt.Fprintf(&b, `<div class="option-description">%s</div>`, opt.Description)

	if opt.DefaultText != "" {
		fmt.Fprintf(&b, `<p class="option-default">Default: <code>%s</code></p>`, opt.DefaultText)
	}

	if opt.ExampleText != "" {
		if strings.Contains(opt.ExampleText, "\n") {
			fmt.Fprintf(&b, `<div class="option-example"><pre><code>%s</code></pre></div>`, opt.ExampleText)
		} else {
			fmt.Fprintf(&b, `<p class="option-example"><code>%s</code></p>`, opt.ExampleText)
		}
	}

	if opt.DeclaredIn != "" {
		if opt.DeclaredInURL != "" {
			fmt.Fprintf(&b, `<p class="option-declared-in">Declared in: <a href="%s">%s</a></p>`,
				opt.DeclaredInURL, html.EscapeString(opt.DeclaredIn))
		} else {
			fmt.Fprintf(&b, `<p class="option-declared-in">Declared in: <code>%s</code></p>`, html.EscapeString(opt.DeclaredIn))
		}
	}

	b.WriteString(`</div>`)
	return b.String()
}
