package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndggen/ndg/internal/ndgmodel"
)

func TestTokenizeDedupesAndLowercases(t *testing.T) {
	tokens := Tokenize("Nix nix NIX ab nixos")
	assert.Equal(t, []string{"nix", "nixos"}, tokens)
}

func TestTokenizeMinLength(t *testing.T) {
	tokens := Tokenize("a ab abc abcd")
	assert.Equal(t, []string{"abc", "abcd"}, tokens)
}

func TestBuildDocumentsAssignsSequentialIDs(t *testing.T) {
	docs := []SourceDoc{
		{Path: "a.html", Title: "Alpha", Content: "alpha content here"},
		{Path: "b.html", Title: "Beta", Content: "beta content here"},
	}
	result, err := BuildDocuments(context.Background(), docs, 3)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 0, result[0].ID)
	assert.Equal(t, 1, result[1].ID)
}

func TestBuildDocumentsFiltersAnchorsByLevel(t *testing.T) {
	docs := []SourceDoc{
		{Path: "a.html", Title: "Alpha", Content: "text", Headers: []ndgmodel.Header{
			{Text: "One", Level: 1, ID: "one"},
			{Text: "Deep", Level: 4, ID: "deep"},
		}},
	}
	result, err := BuildDocuments(context.Background(), docs, 3)
	require.NoError(t, err)
	require.Len(t, result[0].Anchors, 1)
	assert.Equal(t, "one", result[0].Anchors[0].ID)
}

func TestOptionDocument(t *testing.T) {
	doc := OptionDocument("services.nginx.enable", "Whether to enable nginx.")
	assert.Equal(t, "Option: services.nginx.enable", doc.Title)
	assert.Equal(t, "options.html#option-services-nginx-enable", doc.Path)
	assert.Empty(t, doc.Anchors)
}

func TestPlainTextStripsTags(t *testing.T) {
	out := PlainText("<p>Hello <strong>world</strong>!</p>")
	assert.Equal(t, "Hello world !", out)
}

func TestMarshalProducesJSONArray(t *testing.T) {
	data, err := Marshal([]ndgmodel.SearchDocument{{ID: 0, Title: "x"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":0`)
}
