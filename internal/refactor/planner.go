// # internal/refactor/planner.go
package refactor

import (
	"context"
	"strings"

	"retrofit/internal/astq"
	"retrofit/internal/ident"
	"retrofit/internal/project"
	"retrofit/internal/shared/observability"
)

// Pathological caller graphs are cut off here; exceeding the budget records
// the suspect requirement as unimplemented and planning continues.
const defaultMaxRequirements = 512

// Planner turns one root requirement into a changeset DAG by recursively
// discovering its consequences. Termination relies on the planned set:
// before expanding any requirement it is compared by identity against
// everything already planned, and duplicates are dropped.
type Planner struct {
	finder          *astq.Finder
	MaxRequirements int
}

func NewPlanner(finder *astq.Finder) *Planner {
	return &Planner{finder: finder}
}

func (p *Planner) ChangesetFor(ctx context.Context, prj *project.Project, root Requirement) (*Changeset, []Unimplemented, error) {
	ctx, span := observability.Tracer.Start(ctx, "planner.ChangesetFor")
	defer span.End()

	st := &plannerState{planned: make(map[string]bool)}
	cs, err := p.plan(ctx, prj, root, st)
	if err != nil {
		return nil, nil, err
	}
	return cs, st.dropped, nil
}

type plannerState struct {
	planned map[string]bool
	count   int
	dropped []Unimplemented
}

func (st *plannerState) mark(req Requirement) {
	st.planned[req.Key()] = true
	st.count++
	observability.RequirementsPlanned.WithLabelValues(string(req.Kind())).Inc()
}

// admit marks a concomitant requirement as planned, or drops it when an
// equal requirement already exists anywhere on the plan.
func (st *plannerState) admit(req Requirement) bool {
	if st.planned[req.Key()] {
		observability.RequirementsDropped.Inc()
		return false
	}
	st.mark(req)
	return true
}

func (p *Planner) plan(ctx context.Context, prj *project.Project, req Requirement, st *plannerState) (*Changeset, error) {
	if r, ok := req.(AddParameter); ok {
		return p.planAddParameter(ctx, prj, r, st, true)
	}
	// The other variants are leaves: no consequences.
	st.admit(req)
	return &Changeset{Requirements: []Requirement{req}}, nil
}

// planAddParameter expands one add-parameter requirement. isRoot marks the
// submitted requirement as opposed to a recursively planned prerequisite:
// test dummies and migrations are global consequences of the root alone,
// gated on the root's access.
func (p *Planner) planAddParameter(ctx context.Context, prj *project.Project, r AddParameter, st *plannerState, isRoot bool) (*Changeset, error) {
	st.mark(r)
	cs := &Changeset{}

	// A public root has two global consequences: tests get a dummy value,
	// and downstream consumers get a migration whose parameter type
	// resolves from their package instead of a repo-local path.
	var tail []Requirement
	if isRoot && r.Target.Access.Public() {
		dummy := PassDummyInTests{
			Target:           r.Target,
			DummyValue:       r.PopulateInTests.DummyValue,
			AdditionalImport: r.PopulateInTests.AdditionalImport,
			Why:              r.Describe(),
		}
		if st.admit(dummy) {
			tail = append(tail, dummy)
		}

		downstream := r
		downstream.ParameterType = r.ParameterType.AsLibrary()
		mig := AddMigration{Downstream: downstream, Why: r.Describe()}
		if st.admit(mig) {
			tail = append(tail, mig)
		}
	}

	calls, err := p.finder.Find(prj, r.Target.PlanningGlob(), r.Target.CallPathExpr())
	if err != nil {
		return nil, err
	}

	var passArgs []Requirement
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := call.Location().Path
		if strings.HasPrefix(path, "test") {
			// Call sites under test trees are satisfied by the dummy pass.
			continue
		}

		decl := ident.EnclosingDeclaration(call)
		if decl == nil {
			continue
		}
		enclosing, err := ident.FromNode(decl, path)
		if err != nil {
			continue
		}
		if enclosing.Equal(r.Target) {
			continue
		}

		if argName, ok := ident.ParameterOfType(decl, r.ParameterType.Name); ok {
			pa := PassArgument{Enclosing: enclosing, Target: r.Target, ArgumentValue: argName, Why: r.Describe()}
			if st.admit(pa) {
				passArgs = append(passArgs, pa)
			}
			continue
		}

		// The caller has no suitable value: it needs the parameter too, and
		// that must land before the call-site edit references it by name.
		child := AddParameter{
			Target:          enclosing,
			ParameterType:   r.ParameterType,
			ParameterName:   r.ParameterName,
			PopulateInTests: r.PopulateInTests,
			Why:             r.Describe(),
		}
		if !st.planned[child.Key()] {
			if st.count >= p.maxRequirements() {
				st.dropped = append(st.dropped, Unimplemented{
					Requirement: child,
					Message:     "planner requirement budget exceeded",
				})
				observability.RequirementsUnimplemented.Inc()
				// Without the prerequisite the caller never gains the
				// parameter; passing it by name would corrupt the call site.
				continue
			}
			pre, err := p.planAddParameter(ctx, prj, child, st, false)
			if err != nil {
				return nil, err
			}
			cs.Prerequisites = append(cs.Prerequisites, pre)
		} else {
			observability.RequirementsDropped.Inc()
		}

		pa := PassArgument{Enclosing: enclosing, Target: r.Target, ArgumentValue: r.ParameterName, Why: r.Describe()}
		if st.admit(pa) {
			passArgs = append(passArgs, pa)
		}
	}

	cs.Requirements = append([]Requirement{r}, passArgs...)
	cs.Requirements = append(cs.Requirements, tail...)
	return cs, nil
}

func (p *Planner) maxRequirements() int {
	if p.MaxRequirements > 0 {
		return p.MaxRequirements
	}
	return defaultMaxRequirements
}
