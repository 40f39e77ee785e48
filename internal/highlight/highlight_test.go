package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightGo(t *testing.T) {
	h := New()
	out, err := h.Highlight("go", "package main\n")
	require.NoError(t, err)
	assert.Contains(t, out, "package")
}

func TestHighlightUnknownLanguageFallsBack(t *testing.T) {
	h := New()
	out, err := h.Highlight("not-a-real-language", "some text\n")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestHighlightEmptyLanguageDefaultsToText(t *testing.T) {
	h := New()
	out, err := h.Highlight("", "plain text\n")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
