// # internal/astq/grammar_test.go
package astq

import "testing"

func TestGrammarLoader(t *testing.T) {
	gl := NewGrammarLoader()

	if gl.Language("typescript") == nil {
		t.Error("typescript grammar not loaded")
	}
	if gl.Language("tsx") == nil {
		t.Error("tsx grammar not loaded")
	}
	if gl.Language("python") != nil {
		t.Error("unexpected grammar")
	}
}

func TestDialectForPath(t *testing.T) {
	gl := NewGrammarLoader()

	cases := map[string]string{
		"src/f.ts":          "typescript",
		"src/Component.tsx": "tsx",
		"SRC/F.TS":          "typescript",
		"src/f.js":          "",
		"README.md":         "",
	}
	for path, want := range cases {
		if got := gl.DialectForPath(path); got != want {
			t.Errorf("DialectForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
