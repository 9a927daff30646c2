// # internal/project/loader.go
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	cerrors "retrofit/internal/core/errors"
	"retrofit/internal/shared/util"
)

// LoadDir walks root and loads every TypeScript source into a fresh project,
// keyed by project-relative slash paths. Exclude patterns match basenames.
func LoadDir(root string, excludeDirs, excludeFiles []string) (*Project, error) {
	dirGlobs, err := compilePatterns(excludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compilePatterns(excludeFiles)
	if err != nil {
		return nil, err
	}

	prj := NewProject()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)

		if d.IsDir() {
			for _, g := range dirGlobs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".ts" && ext != ".tsx" {
			return nil
		}

		for _, g := range fileGlobs {
			if g.Match(base) {
				return nil
			}
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		prj.AddFile(filepath.ToSlash(rel), content)
		return nil
	})
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.CodeProjectIO, "scan project root")
	}

	return prj, nil
}

// WriteBack persists every changed file under root. Paths stay
// project-relative; parent directories are created as needed.
func (p *Project) WriteBack(root string) error {
	for _, path := range p.Changed() {
		f, ok := p.FindFile(path)
		if !ok {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(path))
		rel, err := filepath.Rel(root, target)
		if err != nil || rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
			return cerrors.New(cerrors.CodeProjectIO, fmt.Sprintf("refusing to write outside root: %s", path))
		}
		if err := util.WriteFileWithDirs(target, f.Content, 0o644); err != nil {
			return cerrors.Wrap(err, cerrors.CodeProjectIO, "write back "+path)
		}
	}
	return nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
