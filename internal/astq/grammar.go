// # internal/astq/grammar.go
package astq

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DialectSpec describes one supported TypeScript dialect.
type DialectSpec struct {
	Name       string
	Extensions []string
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	dialects  map[string]DialectSpec
}

func DefaultDialectRegistry() map[string]DialectSpec {
	return map[string]DialectSpec{
		"typescript": {
			Name:       "typescript",
			Extensions: []string{".ts"},
		},
		"tsx": {
			Name:       "tsx",
			Extensions: []string{".tsx"},
		},
	}
}

func NewGrammarLoader() *GrammarLoader {
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		dialects:  DefaultDialectRegistry(),
	}

	gl.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	gl.languages["tsx"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())

	return gl
}

// DialectForPath returns the dialect owning the path's extension, or "".
func (gl *GrammarLoader) DialectForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, id := range sortedDialectIDs(gl.dialects) {
		for _, candidate := range gl.dialects[id].Extensions {
			if candidate == ext {
				return id
			}
		}
	}
	return ""
}

func (gl *GrammarLoader) Language(dialect string) *sitter.Language {
	return gl.languages[dialect]
}

func sortedDialectIDs(dialects map[string]DialectSpec) []string {
	ids := make([]string, 0, len(dialects))
	for id := range dialects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
