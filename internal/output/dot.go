// # internal/output/dot.go
package output

import (
	"fmt"
	"strings"

	"retrofit/internal/refactor"
)

type DOTGenerator struct {
	changeset     *refactor.Changeset
	unimplemented map[string]bool
}

func NewDOTGenerator(cs *refactor.Changeset) *DOTGenerator {
	return &DOTGenerator{
		changeset:     cs,
		unimplemented: make(map[string]bool),
	}
}

// SetUnimplemented marks requirements to highlight as failed.
func (d *DOTGenerator) SetUnimplemented(rows []refactor.Unimplemented) {
	for _, row := range rows {
		d.unimplemented[row.Requirement.Key()] = true
	}
}

// Generate renders the changeset DAG: solid edges run from a prerequisite's
// head to the dependent changeset's head, dashed edges attach concomitant
// requirements to their head.
func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph changeset {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.5;\n")
	buf.WriteString("  splines=polyline;\n\n")

	ids := make(map[string]string)
	var emitNodes func(cs *refactor.Changeset)
	emitNodes = func(cs *refactor.Changeset) {
		if cs == nil {
			return
		}
		for _, pre := range cs.Prerequisites {
			emitNodes(pre)
		}
		for _, req := range cs.Requirements {
			key := req.Key()
			if _, ok := ids[key]; ok {
				continue
			}
			id := fmt.Sprintf("n%d", len(ids))
			ids[key] = id
			label := fmt.Sprintf("%s\\n%s", req.Kind(), escapeLabel(req.Describe()))
			if d.unimplemented[key] {
				buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\", penwidth=2.0];\n", id, label))
			} else {
				buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", color=\"darkslategrey\"];\n", id, label))
			}
		}
	}
	emitNodes(d.changeset)
	buf.WriteString("\n")

	var emitEdges func(cs *refactor.Changeset)
	emitEdges = func(cs *refactor.Changeset) {
		if cs == nil || len(cs.Requirements) == 0 {
			return
		}
		head := ids[cs.Requirements[0].Key()]
		for _, pre := range cs.Prerequisites {
			emitEdges(pre)
			if len(pre.Requirements) > 0 {
				buf.WriteString(fmt.Sprintf("  %s -> %s [label=\"before\"];\n",
					ids[pre.Requirements[0].Key()], head))
			}
		}
		for _, req := range cs.Requirements[1:] {
			buf.WriteString(fmt.Sprintf("  %s -> %s [style=dashed];\n", head, ids[req.Key()]))
		}
	}
	emitEdges(d.changeset)

	buf.WriteString("}\n")
	return buf.String(), nil
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\"", "\\\"")
}
