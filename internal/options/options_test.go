package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndggen/ndg/internal/markdown"
	"github.com/ndggen/ndg/internal/ndgconfig"
)

func TestBuildRendersDescriptionAndAnchor(t *testing.T) {
	md := markdown.New()
	raws := []ndgconfig.OptionRaw{
		{Name: "services.nginx.enable", Type: "boolean", Description: "Whether to enable **nginx**."},
	}
	opts, err := Build(raws, md, nil)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Contains(t, opts[0].Description, "<strong>nginx</strong>")
	assert.Equal(t, "option-services-nginx-enable", AnchorID(opts[0].Name))
}

func TestBuildVisibleFalseImpliesInternal(t *testing.T) {
	md := markdown.New()
	visible := false
	raws := []ndgconfig.OptionRaw{
		{Name: "a.b", Type: "string", Visible: &visible},
	}
	opts, err := Build(raws, md, nil)
	require.NoError(t, err)
	assert.True(t, opts[0].Internal)
}

func TestBuildTOCSingleOptionIsLeaf(t *testing.T) {
	md := markdown.New()
	raws := []ndgconfig.OptionRaw{{Name: "services.nginx.enable", Type: "boolean"}}
	opts, _ := Build(raws, md, nil)
	toc := BuildTOC(opts, nil)
	require.Len(t, toc, 1)
	assert.True(t, toc[0].IsLeaf)
}

func TestBuildTOCGroupsByPrefix(t *testing.T) {
	md := markdown.New()
	raws := []ndgconfig.OptionRaw{
		{Name: "services.nginx.enable", Type: "boolean"},
		{Name: "services.nginx.package", Type: "package"},
	}
	opts, _ := Build(raws, md, nil)
	toc := BuildTOC(opts, nil)
	require.Len(t, toc, 1)
	assert.False(t, toc[0].IsLeaf)
	assert.Len(t, toc[0].Children, 2)
}

func TestRenderPageContainsNameAndType(t *testing.T) {
	md := markdown.New()
	raws := []ndgconfig.OptionRaw{{Name: "a.b", Type: "string", Description: "desc"}}
	opts, err := Build(raws, md, nil)
	require.NoError(t, err)
	page := RenderPage(opts[0])
	assert.Contains(t, page, `id="option-a-b"`)
	assert.Contains(t, page, "a.b")
	assert.Contains(t, page, "string")
}
