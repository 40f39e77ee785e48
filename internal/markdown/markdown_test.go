package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugIdempotent(t *testing.T) {
	inputs := []string{"Hello, World!", "already-a-slug", "  Leading/Trailing  ", "Nix & NixOS"}
	for _, in := range inputs {
		s1 := Slug(in)
		s2 := Slug(s1)
		assert.Equal(t, s1, s2, "slug should be idempotent for %q", in)
	}
}

func TestSlugBasic(t *testing.T) {
	assert.Equal(t, "hello-world", Slug("Hello, World!"))
	assert.Equal(t, "nix-nixos", Slug("Nix & NixOS"))
}

func TestPromptRewriteShell(t *testing.T) {
	html, ok := promptRewrite("$ echo hi")
	require.True(t, ok)
	assert.Equal(t, `<code class="terminal"><span class="prompt">$</span> echo hi</code>`, html)
}

func TestPromptRewriteDoubleDollarSkipped(t *testing.T) {
	_, ok := promptRewrite("$$ not a prompt")
	assert.False(t, ok)
}

func TestPromptRewriteRepl(t *testing.T) {
	html, ok := promptRewrite("nix-repl> 1 + 1")
	require.True(t, ok)
	assert.Equal(t, `<code class="nix-repl"><span class="prompt">nix-repl&gt;</span> 1 + 1</code>`, html)
}

func TestPromptRewriteDoubleReplSkipped(t *testing.T) {
	_, ok := promptRewrite("nix-repl>> nope")
	assert.False(t, ok)
}

func TestProcessBasicDocument(t *testing.T) {
	p := New()
	result, err := p.Process([]byte("# Title {#my-title}\n\nHello `$ ls -la` world.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Title", result.Title)
	require.Len(t, result.Headers, 1)
	assert.Equal(t, "my-title", result.Headers[0].ID)
	assert.Equal(t, 1, result.Headers[0].Level)
	assert.Contains(t, result.HTML, `<code class="terminal">`)
}

func TestProcessSuperscript(t *testing.T) {
	p := New()
	result, err := p.Process([]byte("x^2^ is squared.\n"))
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "<sup>2</sup>")
}

func TestHeaderExtractionMultipleLevels(t *testing.T) {
	p := New()
	doc := p.Parse([]byte("# One\n\n## Two\n\n### Three\n"))
	headers, title := p.Headers(doc)
	require.Len(t, headers, 3)
	assert.Equal(t, "One", title)
	assert.Equal(t, []string{"one", "two", "three"}, []string{headers[0].ID, headers[1].ID, headers[2].ID})
}
