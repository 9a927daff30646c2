// # internal/refactor/requirement.go
package refactor

import (
	"fmt"

	"retrofit/internal/ident"
	"retrofit/internal/imports"
)

type Kind string

const (
	KindAddParameter     Kind = "add-parameter"
	KindPassArgument     Kind = "pass-argument"
	KindPassDummyInTests Kind = "pass-dummy-in-tests"
	KindAddMigration     Kind = "add-migration"
)

// Requirement is a single declarative refactoring intent. Key is the
// equality handle: it covers kind and target identity (plus the enclosing
// function for argument passing) and never the Why provenance, which may
// reference the requirement chain that produced it.
type Requirement interface {
	Kind() Kind
	Key() string
	Describe() string
	isRequirement()
}

// TestPopulation says how call sites in tests are satisfied once the
// parameter exists.
type TestPopulation struct {
	DummyValue       string
	AdditionalImport *imports.ImportIdentifier
}

// AddParameter inserts a new first parameter into the target's declaration,
// adding the type's import when absent.
type AddParameter struct {
	Target          ident.FunctionCallIdentifier
	ParameterType   imports.ImportIdentifier
	ParameterName   string
	PopulateInTests TestPopulation
	Why             string
}

func (r AddParameter) Kind() Kind { return KindAddParameter }

func (r AddParameter) Key() string {
	return string(KindAddParameter) + "|" + r.Target.Key()
}

func (r AddParameter) Describe() string {
	return fmt.Sprintf("add parameter %s: %s to %s in %s",
		r.ParameterName, r.ParameterType.Name, r.Target.QualifiedName(), r.Target.FilePath)
}

func (r AddParameter) isRequirement() {}

// PassArgument prepends an argument to every call of the target inside one
// enclosing function.
type PassArgument struct {
	Enclosing     ident.FunctionCallIdentifier
	Target        ident.FunctionCallIdentifier
	ArgumentValue string
	Why           string
}

func (r PassArgument) Kind() Kind { return KindPassArgument }

func (r PassArgument) Key() string {
	return string(KindPassArgument) + "|" + r.Target.Key() + "|" + r.Enclosing.Key()
}

func (r PassArgument) Describe() string {
	return fmt.Sprintf("pass %s to %s from %s in %s",
		r.ArgumentValue, r.Target.QualifiedName(), r.Enclosing.QualifiedName(), r.Enclosing.FilePath)
}

func (r PassArgument) isRequirement() {}

// PassDummyInTests prepends a dummy value at every call of the target under
// test trees, importing the dummy's type where needed.
type PassDummyInTests struct {
	Target           ident.FunctionCallIdentifier
	DummyValue       string
	AdditionalImport *imports.ImportIdentifier
	Why              string
}

func (r PassDummyInTests) Kind() Kind { return KindPassDummyInTests }

func (r PassDummyInTests) Key() string {
	return string(KindPassDummyInTests) + "|" + r.Target.Key()
}

func (r PassDummyInTests) Describe() string {
	return fmt.Sprintf("pass dummy %s to %s in tests", r.DummyValue, r.Target.QualifiedName())
}

func (r PassDummyInTests) isRequirement() {}

// AddMigration persists an instruction for downstream API consumers to apply
// the downstream requirement against their own source. It never mutates the
// project.
type AddMigration struct {
	Downstream AddParameter
	Why        string
}

func (r AddMigration) Kind() Kind { return KindAddMigration }

func (r AddMigration) Key() string {
	return string(KindAddMigration) + "|" + r.Downstream.Target.Key()
}

func (r AddMigration) Describe() string {
	return fmt.Sprintf("record migration for %s", r.Downstream.Target.QualifiedName())
}

func (r AddMigration) isRequirement() {}

// Equal compares two requirements by identity, ignoring provenance.
func Equal(a, b Requirement) bool {
	return a.Key() == b.Key()
}
