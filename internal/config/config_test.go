// # internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retrofit.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
project_root = "fixtures/sample"

[exclude]
dirs = ["node_modules", ".git"]
files = ["*.d.ts"]

[refactor]
function = "cloned"
file = "src/project/git/GitCommandGitProject.ts"
scope = ["GitCommandGitProject"]
scope_kinds = ["class"]
access = "public-method"
parameter_name = "context"
dummy_value = "{} as HandlerContext"

[refactor.parameter_type]
name = "HandlerContext"
library = "@atomist/automation-client"

[output]
dot = "changeset.dot"

[watch]
debounce = 250000000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ProjectRoot != "fixtures/sample" {
		t.Errorf("unexpected project root: %s", cfg.ProjectRoot)
	}
	if cfg.Refactor.Function != "cloned" {
		t.Errorf("unexpected function: %s", cfg.Refactor.Function)
	}
	if cfg.Refactor.ParameterType.Library != "@atomist/automation-client" {
		t.Errorf("unexpected library: %s", cfg.Refactor.ParameterType.Library)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce: %v", cfg.Watch.Debounce)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[refactor]
function = "priv"
file = "src/f.ts"
parameter_name = "context"

[refactor.parameter_type]
name = "HandlerContext"
local_path = "src/HandlerContext"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProjectRoot != "." {
		t.Errorf("expected default project root, got %s", cfg.ProjectRoot)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"missing function": `
[refactor]
file = "src/f.ts"
parameter_name = "context"
[refactor.parameter_type]
name = "T"
library = "lib"
`,
		"missing import source": `
[refactor]
function = "f"
file = "src/f.ts"
parameter_name = "context"
[refactor.parameter_type]
name = "T"
`,
		"bad access": `
[refactor]
function = "f"
file = "src/f.ts"
access = "protected-method"
parameter_name = "context"
[refactor.parameter_type]
name = "T"
library = "lib"
`,
		"scope kinds mismatch": `
[refactor]
function = "f"
file = "src/f.ts"
scope = ["A", "B"]
scope_kinds = ["class"]
parameter_name = "context"
[refactor.parameter_type]
name = "T"
library = "lib"
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
