package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineAnchor(t *testing.T) {
	out := Process("Some text []{#item1} continues.")
	assert.Contains(t, out, `<span id="item1" class="nixos-anchor"></span>`)
}

func TestListItemAnchor(t *testing.T) {
	out := Process("- []{#item1} Item 1")
	assert.Equal(t, `- <span id="item1" class="nixos-anchor"></span> Item 1`, out)
}

func TestAnchorSkippedInFence(t *testing.T) {
	src := "```\n[]{#item1}\n```\n"
	out := Process(src)
	assert.Contains(t, out, "[]{#item1}")
	assert.NotContains(t, out, "nixos-anchor")
}

func TestHeadingNotBridged(t *testing.T) {
	out := Process("## Section {#sec}")
	assert.Equal(t, "## Section {#sec}", out)
}

func TestBridgingTransform(t *testing.T) {
	out := Process("Standalone Anchor {#standalone}")
	assert.Equal(t, "## Standalone Anchor {#standalone}", out)
}

func TestStripTrailingID(t *testing.T) {
	cleaned, id := StripTrailingID("Section {#sec}")
	assert.Equal(t, "Section", cleaned)
	assert.Equal(t, "sec", id)
}

func TestStripTrailingIDNoMatch(t *testing.T) {
	cleaned, id := StripTrailingID("Plain text")
	assert.Equal(t, "Plain text", cleaned)
	assert.Empty(t, id)
}
