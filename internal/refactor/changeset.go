// # internal/refactor/changeset.go
package refactor

// Changeset groups requirements that apply together, after every
// prerequisite changeset has been fully implemented. Planned changesets form
// a finite DAG: traversal-time de-duplication drops any requirement already
// planned anywhere in the plan.
type Changeset struct {
	Requirements  []Requirement
	Prerequisites []*Changeset
}

// AllRequirements flattens the changeset depth-first: prerequisites in
// order, then the changeset's own requirements.
func AllRequirements(cs *Changeset) []Requirement {
	if cs == nil {
		return nil
	}
	var out []Requirement
	for _, pre := range cs.Prerequisites {
		out = append(out, AllRequirements(pre)...)
	}
	return append(out, cs.Requirements...)
}

// Report lists what a run implemented, and what it could not with the
// reason. An empty implemented list means there was nothing to do, not an
// error.
type Report struct {
	Implemented   []Requirement
	Unimplemented []Unimplemented
}

type Unimplemented struct {
	Requirement Requirement
	Message     string
}

func (r *Report) addImplemented(req Requirement) {
	r.Implemented = append(r.Implemented, req)
}

func (r *Report) addUnimplemented(req Requirement, message string) {
	r.Unimplemented = append(r.Unimplemented, Unimplemented{Requirement: req, Message: message})
}

// Merge appends the other report's rows, preserving order.
func (r *Report) Merge(other Report) {
	r.Implemented = append(r.Implemented, other.Implemented...)
	r.Unimplemented = append(r.Unimplemented, other.Unimplemented...)
}
