package ndgconfig

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/segmentio/encoding/json"
)

// hrefPattern extracts the href attribute value from an HTML anchor tag, for
// manpage URL map entries that carry `<a href="...">...</a>` instead of a
// bare URL string (spec.md §6; SPEC_FULL.md §4 item 3).
var hrefPattern = regexp.MustCompile(`href\s*=\s*"([^"]*)"`)

// LoadManpageURLs reads the manpage URL mapping at path: a JSON object of
// name -> URL, where the value may also be a full `<a href="...">` tag.
// A nil/empty map is returned, not an error, if path is empty.
func LoadManpageURLs(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manpage URL map %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manpage URL map %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))
	for name, value := range raw {
		out[name] = extractManpageURL(value)
	}
	return out, nil
}

// extractManpageURL returns value unchanged unless it looks like an HTML
// anchor tag, in which case the href attribute value is extracted.
func extractManpageURL(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "<a") && !strings.HasPrefix(trimmed, "<A") {
		return value
	}
	m := hrefPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return value
	}
	return m[1]
}
