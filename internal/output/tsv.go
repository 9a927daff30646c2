// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"

	"retrofit/internal/refactor"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

// GeneratePlan emits one row per planned requirement in execution order.
func (t *TSVGenerator) GeneratePlan(cs *refactor.Changeset) (string, error) {
	var buf strings.Builder

	buf.WriteString("Depth\tKind\tDescription\n")
	for _, row := range refactor.Rows(cs) {
		buf.WriteString(fmt.Sprintf("%d\t%s\t%s\n",
			row.Depth, row.Requirement.Kind(), row.Requirement.Describe()))
	}

	return buf.String(), nil
}

// GenerateReport emits implemented rows first, then unimplemented rows with
// their message.
func (t *TSVGenerator) GenerateReport(report refactor.Report) (string, error) {
	var buf strings.Builder

	buf.WriteString("Status\tKind\tDescription\tMessage\n")
	for _, req := range report.Implemented {
		buf.WriteString(fmt.Sprintf("implemented\t%s\t%s\t\n", req.Kind(), req.Describe()))
	}
	for _, row := range report.Unimplemented {
		buf.WriteString(fmt.Sprintf("unimplemented\t%s\t%s\t%s\n",
			row.Requirement.Kind(), row.Requirement.Describe(), row.Message))
	}

	return buf.String(), nil
}
