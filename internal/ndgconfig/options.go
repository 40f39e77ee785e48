package ndgconfig

import (
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
)

// DeclarationRaw is one entry of an option's `declarations` array, which per
// spec.md §6 may appear in the source JSON either as a bare string (just a
// declaration name) or as an object with optional name/url fields.
type DeclarationRaw struct {
	Name string
	URL  string
}

// UnmarshalJSON accepts either a JSON string or a {"name":, "url":} object.
func (d *DeclarationRaw) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Name = s
		return nil
	}

	var obj struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("declaration entry is neither a string nor an object: %w", err)
	}
	d.Name = obj.Name
	d.URL = obj.URL
	return nil
}

// OptionRaw is the as-decoded shape of one entry in the module options JSON
// (spec.md §6), before markdown rendering of Description and before the
// `visible: false implies internal: true` normalization is applied. The
// options package (internal/options) turns this into a rendered
// ndgmodel.NixOption.
type OptionRaw struct {
	Name         string           `json:"-"` // populated from the map key.
	Type         string           `json:"type"`
	Description  string           `json:"description"`
	Default      *json.RawMessage `json:"default,omitempty"`
	DefaultText  string           `json:"defaultText,omitempty"`
	Example      *json.RawMessage `json:"example,omitempty"`
	ExampleText  string           `json:"exampleText,omitempty"`
	Declarations []DeclarationRaw `json:"declarations,omitempty"`
	ReadOnly     bool             `json:"readOnly,omitempty"`
	Internal     bool             `json:"internal,omitempty"`
	Visible      *bool            `json:"visible,omitempty"`
	Loc          []string         `json:"loc,omitempty"`
}

// EffectiveInternal applies the `visible: false implies internal: true`
// normalization from spec.md §6.
func (o OptionRaw) EffectiveInternal() bool {
	if o.Visible != nil && !*o.Visible {
		return true
	}
	return o.Internal
}

// LoadOptionsJSON reads and decodes the module options JSON at path into a
// slice of OptionRaw. The slice follows map iteration order, so its order is
// not defined. Returns nil, nil if path is empty (no options configured).
func LoadOptionsJSON(path string) ([]OptionRaw, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options JSON %s: %w", path, err)
	}

	var raw map[string]OptionRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing options JSON %s: %w", path, err)
	}

	out := make([]OptionRaw, 0, len(raw))
	for name, opt := range raw {
		opt.Name = name
		out = append(out, opt)
	}
	return out, nil
}
