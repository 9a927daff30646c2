// # internal/refactor/summary.go
package refactor

import (
	"retrofit/internal/shared/util"
)

// PlanSummary is the read model the CLI and TUI render: how much work the
// plan holds, of what kinds, and which files it touches.
type PlanSummary struct {
	Total          int
	ByKind         map[Kind]int
	ChangesetCount int
	MaxDepth       int
	Files          []string
}

// PlanRow is one requirement in execution order with its prerequisite depth.
type PlanRow struct {
	Depth       int
	Requirement Requirement
}

func Summarize(cs *Changeset) PlanSummary {
	s := PlanSummary{ByKind: make(map[Kind]int)}
	files := make(map[string]bool)

	var walk func(cs *Changeset, depth int)
	walk = func(cs *Changeset, depth int) {
		if cs == nil {
			return
		}
		s.ChangesetCount++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for _, pre := range cs.Prerequisites {
			walk(pre, depth+1)
		}
		for _, req := range cs.Requirements {
			s.Total++
			s.ByKind[req.Kind()]++
			switch r := req.(type) {
			case AddParameter:
				files[r.Target.FilePath] = true
			case PassArgument:
				files[r.Enclosing.FilePath] = true
			}
		}
	}
	walk(cs, 0)

	s.Files = util.SortedStringKeys(files)
	return s
}

// Rows flattens the changeset into execution order, tagging each requirement
// with its prerequisite depth.
func Rows(cs *Changeset) []PlanRow {
	var out []PlanRow
	var walk func(cs *Changeset, depth int)
	walk = func(cs *Changeset, depth int) {
		if cs == nil {
			return
		}
		for _, pre := range cs.Prerequisites {
			walk(pre, depth+1)
		}
		for _, req := range cs.Requirements {
			out = append(out, PlanRow{Depth: depth, Requirement: req})
		}
	}
	walk(cs, 0)
	return out
}
