// # internal/refactor/executor.go
package refactor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"retrofit/internal/astq"
	cerrors "retrofit/internal/core/errors"
	"retrofit/internal/ident"
	"retrofit/internal/imports"
	"retrofit/internal/migration"
	"retrofit/internal/project"
	"retrofit/internal/shared/observability"
	"retrofit/internal/shared/util"
)

// Hook receives each completed changeset with the report so far, so callers
// can commit version-control snapshots between changesets.
type Hook func(cs *Changeset, partial Report)

// Executor walks a changeset DAG in dependency order, applies each
// requirement as a bounded local AST edit, and flushes the project after
// every requirement so subsequent queries see updated source. Recoverable
// failures land on the report; parser and project I/O errors abort the run.
type Executor struct {
	finder *astq.Finder
	sink   migration.Sink
	runKey string
}

func NewExecutor(finder *astq.Finder, sink migration.Sink) *Executor {
	return &Executor{
		finder: finder,
		sink:   sink,
		runKey: uuid.New().String(),
	}
}

func (e *Executor) RunKey() string { return e.runKey }

func (e *Executor) Implement(ctx context.Context, prj *project.Project, cs *Changeset, hook Hook) (Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "executor.Implement")
	defer span.End()

	var report Report
	err := e.implementChangeset(ctx, prj, cs, hook, &report)
	return report, err
}

func (e *Executor) implementChangeset(ctx context.Context, prj *project.Project, cs *Changeset, hook Hook, report *Report) error {
	for _, pre := range cs.Prerequisites {
		if err := e.implementChangeset(ctx, prj, pre, hook, report); err != nil {
			return err
		}
	}

	for _, req := range cs.Requirements {
		// Cooperative cancellation: stop before the next requirement and
		// report the remainder as unimplemented.
		if ctx.Err() != nil {
			report.addUnimplemented(req, "cancelled")
			observability.RequirementsUnimplemented.Inc()
			continue
		}

		err := e.implementOne(ctx, prj, req)
		switch {
		case err == nil:
			report.addImplemented(req)
			observability.RequirementsImplemented.WithLabelValues(string(req.Kind())).Inc()
		case cerrors.Recoverable(err):
			report.addUnimplemented(req, cerrors.Message(err))
			observability.RequirementsUnimplemented.Inc()
		default:
			return err
		}

		if err := prj.Flush(); err != nil {
			return err
		}
	}

	if hook != nil {
		hook(cs, *report)
	}
	return nil
}

func (e *Executor) implementOne(ctx context.Context, prj *project.Project, req Requirement) error {
	switch r := req.(type) {
	case AddParameter:
		return e.implementAddParameter(prj, r)
	case PassArgument:
		return e.implementPassArgument(prj, r)
	case PassDummyInTests:
		return e.implementPassDummyInTests(prj, r)
	case AddMigration:
		return e.implementAddMigration(ctx, r)
	}
	return cerrors.New(cerrors.CodeInternal, fmt.Sprintf("unknown requirement kind %s", req.Kind()))
}

func (e *Executor) implementAddParameter(prj *project.Project, r AddParameter) error {
	mutated, err := imports.AddImport(e.finder, prj, r.Target.FilePath, r.ParameterType)
	if err != nil {
		return err
	}
	if mutated {
		// The import edit rewrites a whole-node range; commit it before
		// touching tokens inside the same file.
		if err := prj.Flush(); err != nil {
			return err
		}
	}

	decls, err := e.finder.Find(prj, r.Target.SourceGlob(), r.Target.DeclarationPathExpr())
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return cerrors.New(cerrors.CodeDeclarationNotFound, "Function declaration not found")
	}
	if len(decls) > 1 {
		return cerrors.New(cerrors.CodeAmbiguousDeclaration, "More than one function declaration matched")
	}

	parens, err := decls[0].Evaluate("/OpenParenToken")
	if err != nil {
		return err
	}
	if len(parens) == 0 {
		return cerrors.New(cerrors.CodeDeclarationNotFound, "Function declaration not found")
	}
	return parens[0].SetValue(fmt.Sprintf("(%s: %s, ", r.ParameterName, r.ParameterType.Name))
}

func (e *Executor) implementPassArgument(prj *project.Project, r PassArgument) error {
	decls, err := e.finder.Find(prj, r.Enclosing.SourceGlob(), r.Enclosing.DeclarationPathExpr())
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return cerrors.New(cerrors.CodeCallNotFound, "Function not found")
	}
	if len(decls) > 1 {
		return cerrors.New(cerrors.CodeAmbiguousDeclaration, "More than one function declaration matched")
	}

	calls, err := decls[0].Evaluate(r.Target.CallPathExpr())
	if err != nil {
		return err
	}
	if len(calls) == 0 {
		return cerrors.New(cerrors.CodeCallNotFound, "Function not found")
	}

	for _, call := range calls {
		if err := rewriteCallParen(call, r.ArgumentValue); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) implementPassDummyInTests(prj *project.Project, r PassDummyInTests) error {
	calls, err := e.finder.Find(prj, ident.TestGlob(), r.Target.CallPathExpr())
	if err != nil {
		return err
	}
	if len(calls) == 0 {
		// Nothing under test trees calls the target: success with no edits.
		return nil
	}

	touched := make(map[string]bool)
	for _, call := range calls {
		if err := rewriteCallParen(call, r.DummyValue); err != nil {
			return err
		}
		touched[call.Location().Path] = true
	}

	if err := prj.Flush(); err != nil {
		return err
	}

	if r.AdditionalImport != nil {
		for _, path := range util.SortedStringKeys(touched) {
			if _, err := imports.AddImport(e.finder, prj, path, *r.AdditionalImport); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Executor) implementAddMigration(ctx context.Context, r AddMigration) error {
	d := r.Downstream
	payload, err := json.Marshal(migrationPayload{
		Kind:           string(KindAddParameter),
		Function:       d.Target.QualifiedName(),
		FilePath:       d.Target.FilePath,
		Access:         d.Target.Access.String(),
		ParameterName:  d.ParameterName,
		ParameterType:  d.ParameterType.Name,
		ImportLocation: d.ParameterType.ModuleSpecifier(),
		DummyValue:     d.PopulateInTests.DummyValue,
	})
	if err != nil {
		return err
	}

	return e.sink.Record(ctx, migration.Record{
		RunKey:         e.runKey,
		FunctionName:   d.Target.Name,
		QualifiedName:  d.Target.QualifiedName(),
		FilePath:       d.Target.FilePath,
		Access:         d.Target.Access.String(),
		ParameterName:  d.ParameterName,
		ParameterType:  d.ParameterType.Name,
		ImportLocation: d.ParameterType.ModuleSpecifier(),
		Provenance:     r.Why,
		Payload:        payload,
	})
}

type migrationPayload struct {
	Kind           string `json:"kind"`
	Function       string `json:"function"`
	FilePath       string `json:"filePath"`
	Access         string `json:"access"`
	ParameterName  string `json:"parameterName"`
	ParameterType  string `json:"parameterType"`
	ImportLocation string `json:"importLocation"`
	DummyValue     string `json:"dummyValue,omitempty"`
}

// rewriteCallParen prepends a value to a call's argument list by rewriting
// the call's opening parenthesis token.
func rewriteCallParen(call *astq.Node, value string) error {
	parens, err := call.Evaluate("/OpenParenToken")
	if err != nil {
		return err
	}
	if len(parens) == 0 {
		return cerrors.New(cerrors.CodeCallNotFound, "Function not found")
	}
	return parens[0].SetValue("(" + value + ", ")
}
