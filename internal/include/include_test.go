package include

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSimpleInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.md"), []byte("included content\n"), 0o644))

	r := New(dir)
	result, err := r.Resolve("before\n\n```{=include=}\npart.md\n```\n\nafter\n")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "included content")
	assert.Contains(t, result.Text, "before")
	assert.Contains(t, result.Text, "after")
	require.Len(t, result.Included, 1)
}

func TestResolveMissingIncludeDegradesGracefully(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	result, err := r.Resolve("```{=include=}\nmissing.md\n```\n")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "<!-- ndg: could not include file: missing.md -->")
}

func TestResolveRejectsUnsafePaths(t *testing.T) {
	dir := t.TempDir()
	r := New(dir)
	result, err := r.Resolve("```{=include=}\n../escape.md\n..\\escape.md\n/abs.md\n```\n")
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "could not include")
	assert.Equal(t, "", result.Text)
}

func TestResolveSkipsIncludeInsideOpenFence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.md"), []byte("SHOULD NOT APPEAR\n"), 0o644))

	r := New(dir)
	source := "````text\n```{=include=}\npart.md\n```\n````\n"
	result, err := r.Resolve(source)
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "SHOULD NOT APPEAR")
	assert.Contains(t, result.Text, "{=include=}")
}

func TestResolveRecordsIntoFileDirective(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part.md"), []byte("x\n"), 0o644))

	r := New(dir)
	result, err := r.Resolve("```{=include=} html:into-file=custom.html\npart.md\n```\n")
	require.NoError(t, err)
	require.Len(t, result.Included, 1)
	assert.Equal(t, "custom.html", result.Included[0].CustomOutput)
}

func TestResolveBoundedRecursionFails(t *testing.T) {
	dir := t.TempDir()
	// a.md includes itself, forcing unbounded recursion.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("```{=include=}\na.md\n```\n"), 0o644))

	r := New(dir)
	_, err := r.Resolve("```{=include=}\na.md\n```\n")
	require.Error(t, err)
}
