package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalloutBasic(t *testing.T) {
	out := Process("> [!NOTE]\n> This is a note.\n\nafter\n")
	assert.Contains(t, out, `<div class="admonition note">`)
	assert.Contains(t, out, `<p class="admonition-title">Note</p>`)
	assert.Contains(t, out, "This is a note.")
	assert.Contains(t, out, "after")
}

func TestCalloutLazyContinuation(t *testing.T) {
	out := Process("> [!WARNING]\nplain continuation line\n\nafter\n")
	assert.Contains(t, out, "plain continuation line")
	assert.Contains(t, out, `<div class="admonition warning">`)
}

func TestCalloutClosesOnHeading(t *testing.T) {
	out := Process("> [!TIP]\n> inside\n## Heading\n")
	assert.Contains(t, out, "</div>")
	assert.Contains(t, out, "## Heading")
}

func TestAdmonitionWithID(t *testing.T) {
	out := Process(":::{.warning #caveat}\nbody text\n:::\n")
	assert.Contains(t, out, `<div class="admonition warning" id="caveat">`)
	assert.Contains(t, out, "body text")
}

func TestAdmonitionTrailingContentReemitted(t *testing.T) {
	out := Process(":::{.note}\nbody\n::: more text\n")
	assert.Contains(t, out, "more text")
}

func TestFigure(t *testing.T) {
	out := Process(":::{.figure #fig1}\n# My Caption\n![alt](img.png)\n:::\n")
	assert.Contains(t, out, `<figure id="fig1">`)
	assert.Contains(t, out, "<figcaption>My Caption</figcaption>")
	assert.Contains(t, out, "![alt](img.png)")
}

func TestBlockSkippedInFence(t *testing.T) {
	src := "```\n> [!NOTE]\n> note\n```\n"
	out := Process(src)
	assert.NotContains(t, out, "admonition")
}
