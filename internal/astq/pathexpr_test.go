// # internal/astq/pathexpr_test.go
package astq

import "testing"

func TestParsePathExpr(t *testing.T) {
	valid := []string{
		"//CallExpression[/Identifier[@value='priv']]",
		"//CallExpression[/PropertyAccessExpression[@value='Spacey.giveMeYourContext']]",
		"//ImportDeclaration[//StringLiteral[@value='@scope/pkg']]",
		"/OpenParenToken",
		"//ClassDeclaration[/Identifier[@value='C']]/MethodDeclaration[/Identifier[@value='m']]",
		"//ModuleDeclaration[/Identifier[@value='N']]/ModuleBlock/FunctionDeclaration",
		"//*[@value='x']",
	}
	for _, expr := range valid {
		if _, err := ParsePathExpr(expr); err != nil {
			t.Errorf("ParsePathExpr(%q) failed: %v", expr, err)
		}
	}

	invalid := []string{
		"",
		"CallExpression",
		"//CallExpression[",
		"//CallExpression[@value=broken]",
		"//CallExpression[]",
		"//",
	}
	for _, expr := range invalid {
		if _, err := ParsePathExpr(expr); err == nil {
			t.Errorf("ParsePathExpr(%q) should have failed", expr)
		}
	}
}

func TestParsePathExpr_BracketInValue(t *testing.T) {
	pe, err := ParsePathExpr("//Identifier[@value='weird]name']")
	if err != nil {
		t.Fatal(err)
	}
	if len(pe.steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(pe.steps))
	}
	pred := pe.steps[0].preds[0]
	if pred.value == nil || *pred.value != "weird]name" {
		t.Errorf("quoted bracket not preserved: %v", pred.value)
	}
}

func TestCompileGlob(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"src/**/*.ts", "src/f.ts", true},
		{"src/**/*.ts", "src/nested/deep/f.ts", true},
		{"src/**/*.ts", "test/f.ts", false},
		{"{src,test}/**/*.ts", "test/f.ts", true},
		{"{src,test}/**/*.ts", "src/a/b.ts", true},
		{"test*/**/*.ts", "test/f.ts", true},
		{"test*/**/*.ts", "tests/unit/f.ts", true},
		{"test*/**/*.ts", "src/f.ts", false},
		{"src/f.ts", "src/f.ts", true},
		{"src/f.ts", "src/g.ts", false},
	}
	for _, tc := range cases {
		m, err := CompileGlob(tc.pattern)
		if err != nil {
			t.Fatalf("CompileGlob(%q): %v", tc.pattern, err)
		}
		if got := m.Match(tc.path); got != tc.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}
