// # internal/project/project_test.go
package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProject_AddFindFile(t *testing.T) {
	p := NewProject()
	p.AddFile("src/f.ts", []byte("export function f() {}"))

	f, ok := p.FindFile("src/f.ts")
	if !ok {
		t.Fatal("expected file to be found")
	}
	if string(f.Content) != "export function f() {}" {
		t.Errorf("unexpected content: %s", f.Content)
	}

	if _, ok := p.FindFile("src/missing.ts"); ok {
		t.Error("expected missing file lookup to fail")
	}
}

func TestProject_QueueEditAndFlush(t *testing.T) {
	p := NewProject()
	p.AddFile("src/f.ts", []byte("function priv(s: string) {}"))

	gen := p.Generation()
	if err := p.QueueEdit("src/f.ts", 13, 14, "(context: HandlerContext, "); err != nil {
		t.Fatal(err)
	}
	if err := p.Flush(); err != nil {
		t.Fatal(err)
	}

	f, _ := p.FindFile("src/f.ts")
	want := "function priv(context: HandlerContext, s: string) {}"
	if string(f.Content) != want {
		t.Errorf("got %q, want %q", f.Content, want)
	}
	if p.Generation() != gen+1 {
		t.Error("expected generation bump on flush")
	}
	changed := p.Changed()
	if len(changed) != 1 || changed[0] != "src/f.ts" {
		t.Errorf("unexpected changed set: %v", changed)
	}
}

func TestProject_MultipleEditsApplyBackToFront(t *testing.T) {
	p := NewProject()
	p.AddFile("a.ts", []byte("f(1); f(2);"))

	if err := p.QueueEdit("a.ts", 1, 2, "(ctx, "); err != nil {
		t.Fatal(err)
	}
	if err := p.QueueEdit("a.ts", 7, 8, "(ctx, "); err != nil {
		t.Fatal(err)
	}
	if err := p.Flush(); err != nil {
		t.Fatal(err)
	}

	f, _ := p.FindFile("a.ts")
	want := "f(ctx, 1); f(ctx, 2);"
	if string(f.Content) != want {
		t.Errorf("got %q, want %q", f.Content, want)
	}
}

func TestProject_OverlappingEditsRejected(t *testing.T) {
	p := NewProject()
	p.AddFile("a.ts", []byte("abcdef"))

	_ = p.QueueEdit("a.ts", 0, 4, "x")
	_ = p.QueueEdit("a.ts", 2, 6, "y")
	if err := p.Flush(); err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestProject_QueueEditBounds(t *testing.T) {
	p := NewProject()
	p.AddFile("a.ts", []byte("abc"))

	if err := p.QueueEdit("a.ts", 0, 10, "x"); err == nil {
		t.Error("expected out-of-bounds error")
	}
	if err := p.QueueEdit("missing.ts", 0, 1, "x"); err == nil {
		t.Error("expected missing-file error")
	}
}

func TestLoadDirAndWriteBack(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"src/f.ts":              "export function f() {}",
		"test/f.ts":             "f();",
		"node_modules/dep/x.ts": "ignored",
		"src/readme.md":         "ignored",
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p, err := LoadDir(root, []string{"node_modules"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	paths := p.Paths()
	if len(paths) != 2 || paths[0] != "src/f.ts" || paths[1] != "test/f.ts" {
		t.Fatalf("unexpected paths: %v", paths)
	}

	if err := p.QueueEdit("src/f.ts", 0, 0, "// banner\n"); err != nil {
		t.Fatal(err)
	}
	if err := p.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteBack(root); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(root, "src", "f.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "// banner\nexport function f() {}" {
		t.Errorf("unexpected written content: %s", data)
	}
}
