// # internal/refactor/engine.go
package refactor

import (
	"context"

	"retrofit/internal/astq"
	"retrofit/internal/migration"
	"retrofit/internal/project"
)

// Engine is the top-level entry point: plan the changeset for a root
// requirement, then implement it against the project.
type Engine struct {
	planner  *Planner
	executor *Executor
}

func NewEngine(finder *astq.Finder, sink migration.Sink) *Engine {
	return &Engine{
		planner:  NewPlanner(finder),
		executor: NewExecutor(finder, sink),
	}
}

func (e *Engine) Planner() *Planner { return e.planner }

func (e *Engine) RunKey() string { return e.executor.runKey }

// Plan computes the changeset without touching the project, for previews.
func (e *Engine) Plan(ctx context.Context, prj *project.Project, root Requirement) (*Changeset, []Unimplemented, error) {
	return e.planner.ChangesetFor(ctx, prj, root)
}

// Implement executes an already-planned changeset.
func (e *Engine) Implement(ctx context.Context, prj *project.Project, cs *Changeset, hook Hook) (Report, error) {
	return e.executor.Implement(ctx, prj, cs, hook)
}

// ApplyRequirement plans and implements the root requirement. The optional
// hook fires after each completed changeset with the partial report.
func (e *Engine) ApplyRequirement(ctx context.Context, prj *project.Project, root Requirement, hook Hook) (Report, error) {
	cs, dropped, err := e.planner.ChangesetFor(ctx, prj, root)
	if err != nil {
		return Report{}, err
	}

	report, err := e.executor.Implement(ctx, prj, cs, hook)
	report.Unimplemented = append(report.Unimplemented, dropped...)
	return report, err
}
