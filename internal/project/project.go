// # internal/project/project.go
package project

import (
	"fmt"
	"sort"
	"time"

	cerrors "retrofit/internal/core/errors"
	"retrofit/internal/shared/observability"
	"retrofit/internal/shared/util"
)

// Project is an addressable, in-memory collection of source files. Textual
// mutations are queued per file and become visible only on Flush.
type Project struct {
	files   map[string]*File
	pending map[string][]Edit
	changed map[string]bool

	// Bumped on every Flush; AST nodes created before a flush are stale.
	generation uint64
}

type File struct {
	Path    string
	Content []byte
}

// Edit replaces the byte range [Start, End) with Replacement.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

func NewProject() *Project {
	return &Project{
		files:   make(map[string]*File),
		pending: make(map[string][]Edit),
		changed: make(map[string]bool),
	}
}

func (p *Project) AddFile(path string, content []byte) {
	path = util.NormalizePatternPath(path)
	p.files[path] = &File{Path: path, Content: append([]byte(nil), content...)}
}

func (p *Project) FindFile(path string) (*File, bool) {
	f, ok := p.files[util.NormalizePatternPath(path)]
	return f, ok
}

// Paths returns every file path in sorted order.
func (p *Project) Paths() []string {
	return util.SortedStringKeys(p.files)
}

func (p *Project) Generation() uint64 {
	return p.generation
}

// QueueEdit records a pending replacement of [start, end) in the file's
// current content. Bounds are validated now; overlaps are detected on Flush.
func (p *Project) QueueEdit(path string, start, end int, replacement string) error {
	path = util.NormalizePatternPath(path)
	f, ok := p.files[path]
	if !ok {
		return cerrors.New(cerrors.CodeProjectIO, fmt.Sprintf("no such file: %s", path))
	}
	if start < 0 || end < start || end > len(f.Content) {
		return cerrors.New(cerrors.CodeProjectIO,
			fmt.Sprintf("edit range [%d,%d) out of bounds for %s (%d bytes)", start, end, path, len(f.Content)))
	}
	p.pending[path] = append(p.pending[path], Edit{Start: start, End: end, Replacement: replacement})
	return nil
}

// Flush applies all queued edits and invalidates outstanding AST nodes by
// bumping the generation counter. Edits within a file are applied
// back-to-front; overlapping ranges are rejected.
func (p *Project) Flush() error {
	start := time.Now()
	defer func() {
		observability.FlushLatency.Observe(time.Since(start).Seconds())
	}()

	for _, path := range util.SortedStringKeys(p.pending) {
		edits := p.pending[path]
		if len(edits) == 0 {
			continue
		}
		sort.Slice(edits, func(i, j int) bool {
			if edits[i].Start == edits[j].Start {
				return edits[i].End < edits[j].End
			}
			return edits[i].Start < edits[j].Start
		})
		for i := 1; i < len(edits); i++ {
			if edits[i].Start < edits[i-1].End {
				return cerrors.New(cerrors.CodeProjectIO,
					fmt.Sprintf("overlapping edits in %s: [%d,%d) and [%d,%d)",
						path, edits[i-1].Start, edits[i-1].End, edits[i].Start, edits[i].End))
			}
		}

		f := p.files[path]
		content := f.Content
		for i := len(edits) - 1; i >= 0; i-- {
			e := edits[i]
			next := make([]byte, 0, len(content)-(e.End-e.Start)+len(e.Replacement))
			next = append(next, content[:e.Start]...)
			next = append(next, e.Replacement...)
			next = append(next, content[e.End:]...)
			content = next
		}
		f.Content = content
		p.changed[path] = true
	}

	p.pending = make(map[string][]Edit)
	p.generation++
	return nil
}

// Changed returns the sorted paths of files mutated by any flush so far.
func (p *Project) Changed() []string {
	return util.SortedStringKeys(p.changed)
}
