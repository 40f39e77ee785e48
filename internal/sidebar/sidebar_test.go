package sidebar

import "testing"

func TestCriterionMatch(t *testing.T) {
	c := &Criterion{Exact: "index.md"}
	if err := c.Compile(); err != nil {
		t.Fatal(err)
	}
	if !c.Match("index.md") {
		t.Error("expected exact match")
	}
	if c.Match("other.md") {
		t.Error("expected no match")
	}
}

func TestCriterionBothExactAndRegexMustHold(t *testing.T) {
	c := &Criterion{Exact: "index.md", Regex: "^i"}
	if err := c.Compile(); err != nil {
		t.Fatal(err)
	}
	if !c.Match("index.md") {
		t.Error("expected match when both hold")
	}
	c2 := &Criterion{Exact: "readme.md", Regex: "^i"}
	if err := c2.Compile(); err != nil {
		t.Fatal(err)
	}
	if c2.Match("readme.md") {
		t.Error("expected no match when regex fails even though exact holds")
	}
}

func TestConfigCompileRejectsMalformedRegex(t *testing.T) {
	cfg := &Config{
		Matches: []*Rule{
			{Path: &Criterion{Regex: "("}},
		},
	}
	if err := cfg.Compile(); err == nil {
		t.Fatal("expected error for malformed regex")
	}
}

func TestApplyRuleBothCriteriaMustHold(t *testing.T) {
	cfg := &Config{
		Matches: []*Rule{
			{Path: &Criterion{Exact: "a.md"}, Title: &Criterion{Exact: "Wrong"}, NewTitle: "A"},
		},
	}
	if err := cfg.Compile(); err != nil {
		t.Fatal(err)
	}
	if r := cfg.ApplyRule("a.md", "Right"); r != nil {
		t.Error("expected no rule match since title criterion fails")
	}
}

func TestGroupDepthOverride(t *testing.T) {
	depth := 3
	cfg := &Config{
		Options: &OptionsConfig{
			GroupDepth: 2,
			Rules: []*OptionRule{
				{Name: &Criterion{Exact: "services.nginx.enable"}, Depth: &depth},
			},
		},
	}
	if err := cfg.Compile(); err != nil {
		t.Fatal(err)
	}
	if got := cfg.GroupDepth("services.nginx.enable"); got != 3 {
		t.Errorf("GroupDepth = %d, want 3", got)
	}
	if got := cfg.GroupDepth("services.other.enable"); got != 2 {
		t.Errorf("GroupDepth = %d, want 2", got)
	}
}

func TestSortBySetPositionThenField(t *testing.T) {
	p0, p2 := 0, 2
	positions := []*int{nil, &p2, &p0}
	names := []string{"b", "c", "a"}
	idx := SortBySetPositionThenField(3, func(i int) *int { return positions[i] }, func(i, j int) bool {
		return names[i] < names[j]
	})
	want := []int{2, 1, 0} // position 0 (a), position 2 (c), then unset (b)
	for i, w := range want {
		if idx[i] != w {
			t.Errorf("idx[%d] = %d, want %d (order %v)", i, idx[i], w, idx)
			break
		}
	}
}
