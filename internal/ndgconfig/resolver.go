// This file builds the Config oracle from disk, mirroring the shape of the
// teacher's internal/config/resolver.go 5-layer merge (defaults -> file ->
// env -> dotted overrides) but over ndg's own TOML schema. It is explicitly
// the "CLI argument parsing, TOML/JSON config deserialization... treated as
// an oracle" machinery spec.md §1 carves out of the core pipeline's scope;
// no package under internal/{include,blocks,anchor,role,...} ever imports
// this file.
package ndgconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"

	"github.com/ndggen/ndg/internal/sidebar"
)

// fileConfig mirrors the on-disk ndg.toml schema. It is decoded directly by
// BurntSushi/toml and then translated into the immutable Config record.
type fileConfig struct {
	InputDir        string   `toml:"input_dir"`
	OutputDir       string   `toml:"output_dir"`
	ModuleOptions   string   `toml:"module_options"`
	TemplateDir     string   `toml:"template_dir"`
	TemplatePath    string   `toml:"template_path"`
	StylesheetPaths []string `toml:"stylesheet_paths"`
	ScriptPaths     []string `toml:"script_paths"`
	ManpageURLsPath string   `toml:"manpage_urls_path"`
	Title           string   `toml:"title"`
	FooterText      string   `toml:"footer_text"`
	Revision        string   `toml:"revision"`
	GenerateAnchors *bool    `toml:"generate_anchors"`
	GenerateSearch  *bool    `toml:"generate_search"`
	NixdocInputs    []string `toml:"nixdoc_inputs"`

	// OGImagePath is a local file path to an OpenGraph preview image; it is
	// copied into assets/ and the meta tag emitted by the page renderer
	// points at the copied asset (spec.md §6).
	OGImagePath string `toml:"og_image_path"`

	Search      SearchConfig       `toml:"search"`
	Sidebar     sidebar.Config     `toml:"sidebar"`
	Postprocess PostprocessConfig  `toml:"postprocess"`
}

// ResolveOptions configures Resolve.
type ResolveOptions struct {
	// ConfigPath is the path to the ndg.toml file. Required.
	ConfigPath string

	// Overrides holds dotted-key CLI overrides (e.g. "search.enable" ->
	// "false"), applied after the file and environment layers, per
	// spec.md §6.
	Overrides map[string]string
}

// EnvPrefix is the environment-variable prefix recognized for config
// overrides (e.g. NDG_OUTPUT_DIR).
const EnvPrefix = "NDG_"

// Resolve builds a Config from a TOML file, environment variables, and
// dotted-key CLI overrides, in that precedence order (later wins).
func Resolve(opts ResolveOptions) (*Config, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config: ConfigPath is required")
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(opts.ConfigPath, &fc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", opts.ConfigPath, err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(flattenFileConfig(&fc), "."), nil); err != nil {
		return nil, fmt.Errorf("loading config layer: %w", err)
	}

	envMap := buildEnvOverrides()
	if len(envMap) > 0 {
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading env layer: %w", err)
		}
	}

	if len(opts.Overrides) > 0 {
		cliMap, err := parseDottedOverrides(opts.Overrides)
		if err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(cliMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading override layer: %w", err)
		}
	}

	rebuildFileConfig(k, &fc)

	if fc.OutputDir == "" {
		return nil, fmt.Errorf("config: output_dir is required")
	}

	if err := fc.Sidebar.Compile(); err != nil {
		return nil, fmt.Errorf("config: invalid sidebar rules: %w", err)
	}

	cfg := &Config{
		InputDir:        fc.InputDir,
		OutputDir:       fc.OutputDir,
		ModuleOptions:   fc.ModuleOptions,
		TemplateDir:     fc.TemplateDir,
		TemplatePath:    fc.TemplatePath,
		StylesheetPaths: fc.StylesheetPaths,
		ScriptPaths:     fc.ScriptPaths,
		ManpageURLsPath: fc.ManpageURLsPath,
		Title:           fc.Title,
		FooterText:      fc.FooterText,
		Revision:        fc.Revision,
		GenerateAnchors: fc.GenerateAnchors == nil || *fc.GenerateAnchors,
		GenerateSearch:  fc.GenerateSearch,
		Search:          fc.Search,
		Sidebar:         fc.Sidebar,
		Postprocess:     fc.Postprocess,
		IncludedFiles:   NewIncludedFiles(),
		NixdocInputs:    fc.NixdocInputs,
		OGImagePath:     fc.OGImagePath,
	}

	return cfg, nil
}

// flattenFileConfig converts the decoded TOML struct into a flat koanf map,
// restricted to fields BurntSushi/toml actually populated as non-zero, so
// later layers can distinguish "explicitly set to zero value" is not
// representable here -- matching the teacher's approach of only recording
// keys genuinely present in a layer.
func flattenFileConfig(fc *fileConfig) map[string]any {
	m := map[string]any{}
	add := func(key string, value any) {
		switch v := value.(type) {
		case string:
			if v != "" {
				m[key] = v
			}
		case []string:
			if len(v) > 0 {
				m[key] = v
			}
		case bool:
			m[key] = v
		}
	}
	add("input_dir", fc.InputDir)
	add("output_dir", fc.OutputDir)
	add("module_options", fc.ModuleOptions)
	add("template_dir", fc.TemplateDir)
	add("template_path", fc.TemplatePath)
	add("stylesheet_paths", fc.StylesheetPaths)
	add("script_paths", fc.ScriptPaths)
	add("manpage_urls_path", fc.ManpageURLsPath)
	add("title", fc.Title)
	add("footer_text", fc.FooterText)
	add("revision", fc.Revision)
	add("nixdoc_inputs", fc.NixdocInputs)
	add("og_image_path", fc.OGImagePath)
	if fc.GenerateAnchors != nil {
		m["generate_anchors"] = *fc.GenerateAnchors
	}
	if fc.GenerateSearch != nil {
		m["generate_search"] = *fc.GenerateSearch
	}
	if fc.Search.Enable != nil {
		m["search.enable"] = *fc.Search.Enable
	}
	if fc.Search.MaxHeadingLevel != 0 {
		m["search.max_heading_level"] = fc.Search.MaxHeadingLevel
	}
	if fc.Search.Boost != nil {
		m["search.boost"] = *fc.Search.Boost
	}
	m["postprocess.minify_html"] = fc.Postprocess.MinifyHTML
	m["postprocess.minify_css"] = fc.Postprocess.MinifyCSS
	m["postprocess.minify_js"] = fc.Postprocess.MinifyJS
	return m
}

// rebuildFileConfig writes the koanf-merged scalar fields back onto fc.
// Non-scalar/structural fields (Sidebar's rule list) are not
// override-able via env/CLI and keep their file-layer values.
func rebuildFileConfig(k *koanf.Koanf, fc *fileConfig) {
	if v := k.String("input_dir"); v != "" {
		fc.InputDir = v
	}
	if v := k.String("output_dir"); v != "" {
		fc.OutputDir = v
	}
	if v := k.String("module_options"); v != "" {
		fc.ModuleOptions = v
	}
	if v := k.String("template_dir"); v != "" {
		fc.TemplateDir = v
	}
	if v := k.String("template_path"); v != "" {
		fc.TemplatePath = v
	}
	if v := k.Strings("stylesheet_paths"); len(v) > 0 {
		fc.StylesheetPaths = v
	}
	if v := k.Strings("script_paths"); len(v) > 0 {
		fc.ScriptPaths = v
	}
	if v := k.String("manpage_urls_path"); v != "" {
		fc.ManpageURLsPath = v
	}
	if v := k.String("title"); v != "" {
		fc.Title = v
	}
	if v := k.String("footer_text"); v != "" {
		fc.FooterText = v
	}
	if v := k.String("revision"); v != "" {
		fc.Revision = v
	}
	if v := k.Strings("nixdoc_inputs"); len(v) > 0 {
		fc.NixdocInputs = v
	}
	if v := k.String("og_image_path"); v != "" {
		fc.OGImagePath = v
	}
	if k.Exists("generate_anchors") {
		b := k.Bool("generate_anchors")
		fc.GenerateAnchors = &b
	}
	if k.Exists("generate_search") {
		b := k.Bool("generate_search")
		fc.GenerateSearch = &b
	}
	if k.Exists("search.enable") {
		b := k.Bool("search.enable")
		fc.Search.Enable = &b
	}
	if v := k.Int("search.max_heading_level"); v != 0 {
		fc.Search.MaxHeadingLevel = v
	}
	if k.Exists("search.boost") {
		b := k.Float64("search.boost")
		fc.Search.Boost = &b
	}
	fc.Postprocess.MinifyHTML = k.Bool("postprocess.minify_html")
	fc.Postprocess.MinifyCSS = k.Bool("postprocess.minify_css")
	fc.Postprocess.MinifyJS = k.Bool("postprocess.minify_js")
}

// buildEnvOverrides scans the process environment for NDG_-prefixed
// variables and maps them onto the flat key space used by flattenFileConfig,
// e.g. NDG_OUTPUT_DIR -> "output_dir", NDG_SEARCH_ENABLE -> "search.enable".
func buildEnvOverrides() map[string]any {
	out := map[string]any{}
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimPrefix(parts[0], EnvPrefix)
		// Top-level scalar fields use underscores, not dots, in their
		// flattened key (e.g. output_dir); only known nested sections
		// (search., postprocess.) use dots.
		flat := strings.ToLower(name)
		switch {
		case strings.HasPrefix(flat, "search_"):
			out["search."+strings.TrimPrefix(flat, "search_")] = coerce(parts[1])
		case strings.HasPrefix(flat, "postprocess_"):
			out["postprocess."+strings.TrimPrefix(flat, "postprocess_")] = coerce(parts[1])
		default:
			out[flat] = coerce(parts[1])
		}
	}
	return out
}

// parseDottedOverrides validates and type-coerces the --set key=value CLI
// override map into the flat key space (spec.md §6: "Config overrides use a
// dotted-key format... Empty string values map optional fields to unset.").
func parseDottedOverrides(overrides map[string]string) (map[string]any, error) {
	known := map[string]bool{
		"input_dir": true, "output_dir": true, "module_options": true, "template_dir": true,
		"template_path": true, "stylesheet_paths": true, "script_paths": true,
		"manpage_urls_path": true, "title": true, "footer_text": true, "revision": true,
		"nixdoc_inputs": true, "og_image_path": true, "generate_anchors": true,
		"generate_search": true, "search.enable": true, "search.max_heading_level": true,
		"search.boost": true, "postprocess.minify_html": true, "postprocess.minify_css": true,
		"postprocess.minify_js": true,
	}
	out := make(map[string]any, len(overrides))
	for key, value := range overrides {
		if !known[key] {
			return nil, fmt.Errorf("config: unknown override key %q", key)
		}
		if value == "" {
			continue // empty string -> unset, i.e. do not override.
		}
		out[key] = coerce(value)
	}
	return out, nil
}

// coerce converts a raw string override value into a bool, int, float64, or
// leaves it as a string, in that preference order.
func coerce(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
