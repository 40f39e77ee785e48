package fence

import "testing"

func TestTrackerBacktickFence(t *testing.T) {
	tr := New()
	lines := []string{
		"some text",
		"```go",
		"in fence",
		"```",
		"after fence",
	}
	wantInCode := []bool{false, true, true, false, false}

	for i, line := range lines {
		tr.Update(line)
		if tr.InCodeBlock() != wantInCode[i] {
			t.Errorf("line %d (%q): InCodeBlock() = %v, want %v", i, line, tr.InCodeBlock(), wantInCode[i])
		}
	}
}

func TestTrackerRequiresEqualOrLongerRun(t *testing.T) {
	tr := New()
	tr.Update("````")
	if !tr.InCodeBlock() {
		t.Fatal("expected fence open")
	}
	tr.Update("```")
	if !tr.InCodeBlock() {
		t.Fatal("shorter run should not close a longer fence")
	}
	tr.Update("````")
	if tr.InCodeBlock() {
		t.Fatal("equal-length run should close the fence")
	}
}

func TestTrackerTildeFence(t *testing.T) {
	tr := New()
	tr.Update("~~~")
	if !tr.InCodeBlock() {
		t.Fatal("expected tilde fence open")
	}
	tr.Update("```")
	if !tr.InCodeBlock() {
		t.Fatal("backtick run should not close a tilde fence")
	}
	tr.Update("~~~")
	if tr.InCodeBlock() {
		t.Fatal("matching tilde run should close the fence")
	}
}

func TestTrackerIndentedFence(t *testing.T) {
	tr := New()
	tr.Update("  ```")
	if !tr.InCodeBlock() {
		t.Fatal("expected indented fence to open")
	}
}

func TestInlineTracker(t *testing.T) {
	it := &InlineTracker{}
	line := "before `inside` after"
	// index of the "n" in "inside", one past the word's first letter.
	idx := 8 + len("`")
	if !it.InInlineCode(line, idx) {
		t.Errorf("expected position %d to be inside inline code", idx)
	}
	afterIdx := len("before `inside` ")
	if it.InInlineCode(line, afterIdx) {
		t.Errorf("expected position %d to be outside inline code", afterIdx)
	}
}
