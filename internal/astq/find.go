// # internal/astq/find.go
package astq

import (
	"crypto/sha256"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/tree-sitter/go-tree-sitter"

	cerrors "retrofit/internal/core/errors"
	"retrofit/internal/project"
	"retrofit/internal/shared/observability"
)

const treeCacheSize = 128

// Finder runs path expressions over project files. Extracted trees are
// cached per (project, path, project generation, content hash); a flush
// bumps the generation, so stale trees age out naturally.
type Finder struct {
	loader *GrammarLoader
	cache  *lru.Cache[string, *Node]
}

func NewFinder(loader *GrammarLoader) (*Finder, error) {
	cache, err := lru.New[string, *Node](treeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Finder{loader: loader, cache: cache}, nil
}

// Find evaluates pathExpr over every file matching the glob. Results arrive
// in document order per file; files are visited in sorted path order.
func (f *Finder) Find(prj *project.Project, globPattern, pathExpr string) ([]*Node, error) {
	pe, err := ParsePathExpr(pathExpr)
	if err != nil {
		return nil, err
	}
	matcher, err := CompileGlob(globPattern)
	if err != nil {
		return nil, err
	}

	var out []*Node
	for _, path := range prj.Paths() {
		if !matcher.Match(path) {
			continue
		}
		if f.loader.DialectForPath(path) == "" {
			continue
		}
		root, err := f.FileRoot(prj, path)
		if err != nil {
			return nil, err
		}
		out = append(out, pe.SelectFrom(root)...)
	}
	return out, nil
}

// FileRoot parses (or returns the cached) SourceFile node for one file.
func (f *Finder) FileRoot(prj *project.Project, path string) (*Node, error) {
	file, ok := prj.FindFile(path)
	if !ok {
		return nil, cerrors.New(cerrors.CodeProjectIO, fmt.Sprintf("no such file: %s", path))
	}

	dialect := f.loader.DialectForPath(path)
	if dialect == "" {
		return nil, cerrors.New(cerrors.CodeParserError, fmt.Sprintf("unsupported dialect: %s", path))
	}

	key := fmt.Sprintf("%p|%s@%d|%x", prj, file.Path, prj.Generation(), sha256.Sum256(file.Content))
	if root, ok := f.cache.Get(key); ok {
		return root, nil
	}

	grammar := f.loader.Language(dialect)
	if grammar == nil {
		return nil, cerrors.New(cerrors.CodeParserError, fmt.Sprintf("grammar not loaded: %s", dialect))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	start := time.Now()
	tree := parser.Parse(file.Content, nil)
	observability.ParsingDuration.WithLabelValues(dialect).Observe(time.Since(start).Seconds())
	if tree == nil {
		return nil, cerrors.New(cerrors.CodeParserError, fmt.Sprintf("parse failed: %s", path))
	}
	defer tree.Close()

	ext := &extraction{
		src:  file.Content,
		path: file.Path,
		prj:  prj,
		gen:  prj.Generation(),
	}
	root := ext.root(tree.RootNode())
	if root == nil {
		return nil, cerrors.New(cerrors.CodeParserError, fmt.Sprintf("empty tree: %s", path))
	}

	f.cache.Add(key, root)
	return root, nil
}
