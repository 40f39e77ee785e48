package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndggen/ndg/internal/sidebar"
	"github.com/ndggen/ndg/internal/testutil"
)

func TestLookupFallsBackToEmbedded(t *testing.T) {
	r := New("", "")
	tpl, err := r.Lookup("default.html")
	require.NoError(t, err)
	assert.NotNil(t, tpl)
}

func TestLookupCachesByRootAndName(t *testing.T) {
	r := New("", "")
	t1, err := r.Lookup("footer.html")
	require.NoError(t, err)
	t2, err := r.Lookup("footer.html")
	require.NoError(t, err)
	assert.Same(t, t1, t2)
}

func TestRenderDefaultPage(t *testing.T) {
	r := New("", "")
	out, err := r.Render("default.html", PageContext{
		Title:     "Hello",
		SiteTitle: "ndg",
		Content:   "<p>Body</p>",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Hello</h1>")
	assert.Contains(t, out, "<p>Body</p>")
}

func TestHasOptionsAttr(t *testing.T) {
	assert.Equal(t, "", string(HasOptionsAttr(true)))
	assert.Equal(t, `style="display:none;"`, string(HasOptionsAttr(false)))
}

func TestBuildTOCFiltersByLevel(t *testing.T) {
	headers := []tocHeader{
		NewTOCHeader("One", 1, "one"),
		NewTOCHeader("Deep", 4, "deep"),
	}
	out := BuildTOC(headers)
	assert.Contains(t, out, "one")
	assert.NotContains(t, out, "deep")
}

func TestBuildTOCNestsByHeadingLevel(t *testing.T) {
	headers := []tocHeader{
		NewTOCHeader("Introduction", 1, "intro"),
		NewTOCHeader("Background", 2, "background"),
		NewTOCHeader("History", 3, "history"),
		NewTOCHeader("Usage", 2, "usage"),
		NewTOCHeader("Appendix", 1, "appendix"),
		NewTOCHeader("References", 2, "references"),
	}
	out := BuildTOC(headers)
	testutil.Golden(t, "toc_nested", []byte(out))
}

func TestBuildDocNavAlphabetical(t *testing.T) {
	items := []NavItem{
		{Path: "b.html", Title: "Bravo"},
		{Path: "a.html", Title: "Alpha"},
	}
	out := BuildDocNav(items, nil, DocNavOptions{})
	assert.True(t, strIndex(out, "Alpha") < strIndex(out, "Bravo"))
}

func TestBuildDocNavAppendsOptionsLink(t *testing.T) {
	out := BuildDocNav(nil, nil, DocNavOptions{HasOptions: true})
	assert.Contains(t, out, `href="options.html"`)
}

func TestBuildDocNavCustomOrderingByPosition(t *testing.T) {
	cfg := &sidebar.Config{
		Ordering: sidebar.OrderingCustom,
		Matches: []*sidebar.Rule{
			{Path: &sidebar.Criterion{Exact: "z.html"}, Position: intPtr(0)},
		},
	}
	require.NoError(t, cfg.Compile())
	items := []NavItem{
		{Path: "a.html", Title: "Alpha"},
		{Path: "z.html", Title: "Zulu"},
	}
	out := BuildDocNav(items, cfg, DocNavOptions{})
	assert.True(t, strIndex(out, "Zulu") < strIndex(out, "Alpha"))
}

func intPtr(i int) *int { return &i }

func strIndex(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
