package htmlpost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionReferenceLinked(t *testing.T) {
	out, err := Process(`<p><code class="nixos-option">services.nginx.enable</code></p>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `href="options.html#option-services-nginx-enable"`)
}

func TestOptionReferenceRestrictedByAllowList(t *testing.T) {
	out, err := Process(`<p><code class="nixos-option">services.foo.enable</code></p>`, Options{
		KnownOptions: map[string]struct{}{"services.nginx.enable": {}},
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "option-reference")
}

func TestOptionReferenceNotDoubleWrapped(t *testing.T) {
	out, err := Process(`<a class="option-reference" href="x"><code class="nixos-option">a.b</code></a>`, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, countSubstr(out, "option-reference"))
}

func TestManpageReferenceLinked(t *testing.T) {
	out, err := Process(`<span class="manpage-reference">bash(1)</span>`, Options{
		ManpageURLs: map[string]string{"bash(1)": "https://example.com/bash.1"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `<a class="manpage-reference" href="https://example.com/bash.1">bash(1)</a>`)
}

func TestCommentListAnchor(t *testing.T) {
	out, err := Process(`<ul><li><!-- nixos-anchor-id:item1 -->Item</li></ul>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `<span id="item1" class="nixos-anchor"></span>`)
}

func TestCommentHeaderAnchor(t *testing.T) {
	out, err := Process(`<h2><!-- anchor:sec1 -->Section</h2>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `id="sec1"`)
	assert.NotContains(t, out, "anchor:sec1")
}

func TestResidualInlineAnchor(t *testing.T) {
	out, err := Process(`<p>[]{#id1} Hello</p>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `<span id="id1" class="nixos-anchor"></span>`)
}

func TestResidualInlineAnchorSkippedInCode(t *testing.T) {
	out, err := Process(`<p><code>[]{#id1}</code></p>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "[]{#id1}")
}

func TestEmptyAnchorLinkHumanized(t *testing.T) {
	out, err := Process(`<a href="#sec-my-section"></a>`, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "My Section")
}

type stubHighlighter struct{}

func (stubHighlighter) Highlight(lang, source string) (string, error) {
	return `<pre class="highlighted" data-lang="` + lang + `">` + source + `</pre>`, nil
}

func TestSyntaxHighlighting(t *testing.T) {
	out, err := Process(`<pre><code class="language-go">package main</code></pre>`, Options{
		Highlighter: stubHighlighter{},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `data-lang="go"`)
}

func countSubstr(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
