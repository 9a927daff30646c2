// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ProjectRoot string   `toml:"project_root"`
	Exclude     Exclude  `toml:"exclude"`
	Refactor    Refactor `toml:"refactor"`
	Output      Output   `toml:"output"`
	Migrations  Sink     `toml:"migrations"`
	Watch       Watch    `toml:"watch"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Refactor describes the root add-parameter requirement.
type Refactor struct {
	Function      string   `toml:"function"`    // function or method name
	File          string   `toml:"file"`        // project-relative declaration path
	Scope         []string `toml:"scope"`       // enclosing classes/namespaces, outermost first
	ScopeKinds    []string `toml:"scope_kinds"` // "class" or "namespace" per scope entry
	Access        string   `toml:"access"`      // public-function | private-function | public-method | private-method
	ParameterName string   `toml:"parameter_name"`
	ParameterType Import   `toml:"parameter_type"`
	DummyValue    string   `toml:"dummy_value"`
	DummyImport   *Import  `toml:"dummy_import"`
}

type Import struct {
	Name         string `toml:"name"`
	Library      string `toml:"library"`       // module specifier for library imports
	LocalPath    string `toml:"local_path"`    // project-relative path for local imports
	ExternalPath string `toml:"external_path"` // package name seen by downstream consumers
}

type Output struct {
	DOT string `toml:"dot"`
	TSV string `toml:"tsv"`
}

type Sink struct {
	SQLitePath string `toml:"sqlite_path"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	// Default debounce if not set
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Refactor.Function == "" {
		return fmt.Errorf("refactor.function is required")
	}
	if c.Refactor.File == "" {
		return fmt.Errorf("refactor.file is required")
	}
	if c.Refactor.ParameterName == "" {
		return fmt.Errorf("refactor.parameter_name is required")
	}
	if c.Refactor.ParameterType.Name == "" {
		return fmt.Errorf("refactor.parameter_type.name is required")
	}
	if c.Refactor.ParameterType.Library == "" && c.Refactor.ParameterType.LocalPath == "" {
		return fmt.Errorf("refactor.parameter_type needs library or local_path")
	}
	if len(c.Refactor.ScopeKinds) > 0 && len(c.Refactor.ScopeKinds) != len(c.Refactor.Scope) {
		return fmt.Errorf("refactor.scope_kinds must match refactor.scope length")
	}
	switch c.Refactor.Access {
	case "", "public-function", "private-function", "public-method", "private-method":
	default:
		return fmt.Errorf("unknown refactor.access %q", c.Refactor.Access)
	}
	return nil
}
