// # internal/refactor/planner_test.go
package refactor

import (
	"context"
	"testing"

	"retrofit/internal/astq"
	"retrofit/internal/ident"
	"retrofit/internal/imports"
	"retrofit/internal/project"
)

func testFinder(t *testing.T) *astq.Finder {
	t.Helper()
	finder, err := astq.NewFinder(astq.NewGrammarLoader())
	if err != nil {
		t.Fatal(err)
	}
	return finder
}

func buildProject(files map[string]string) *project.Project {
	prj := project.NewProject()
	for path, content := range files {
		prj.AddFile(path, []byte(content))
	}
	return prj
}

func handlerContextImport() imports.ImportIdentifier {
	return imports.Library("HandlerContext", "@atomist/automation-client")
}

func addParameterTo(target ident.FunctionCallIdentifier) AddParameter {
	return AddParameter{
		Target:        target,
		ParameterType: handlerContextImport(),
		ParameterName: "context",
		PopulateInTests: TestPopulation{
			DummyValue: "{} as HandlerContext",
		},
		Why: "root requirement",
	}
}

func kindCounts(reqs []Requirement) map[Kind]int {
	counts := make(map[Kind]int)
	for _, req := range reqs {
		counts[req.Kind()]++
	}
	return counts
}

func passArgumentsOf(reqs []Requirement) []PassArgument {
	var out []PassArgument
	for _, req := range reqs {
		if pa, ok := req.(PassArgument); ok {
			out = append(out, pa)
		}
	}
	return out
}

const s1Source = `export function iShouldChange() { return priv("x"); }
function priv(s: string) {}
`

func privIdentifier() ident.FunctionCallIdentifier {
	return ident.FunctionCallIdentifier{
		Name:     "priv",
		FilePath: "src/f.ts",
		Access:   ident.PrivateFunctionAccess,
	}
}

func TestPlanner_PrivateFunctionWithCaller(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{"src/f.ts": s1Source})

	planner := NewPlanner(finder)
	cs, dropped, err := planner.ChangesetFor(context.Background(), prj, addParameterTo(privIdentifier()))
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped requirements: %v", dropped)
	}

	all := AllRequirements(cs)
	counts := kindCounts(all)
	if counts[KindAddParameter] != 2 {
		t.Errorf("expected 2 add-parameter requirements, got %d", counts[KindAddParameter])
	}
	if counts[KindPassArgument] != 1 {
		t.Errorf("expected 1 pass-argument requirement, got %d", counts[KindPassArgument])
	}
	if counts[KindPassDummyInTests] != 0 || counts[KindAddMigration] != 0 {
		t.Error("private root must not produce test dummies or migrations")
	}

	pa := passArgumentsOf(all)[0]
	if pa.Enclosing.Name != "iShouldChange" || pa.ArgumentValue != "context" {
		t.Errorf("unexpected pass-argument: %+v", pa)
	}

	// The caller's parameter add is a prerequisite of the root changeset.
	if len(cs.Prerequisites) != 1 {
		t.Fatalf("expected 1 prerequisite changeset, got %d", len(cs.Prerequisites))
	}
	pre := cs.Prerequisites[0].Requirements[0]
	if ap, ok := pre.(AddParameter); !ok || ap.Target.Name != "iShouldChange" {
		t.Errorf("unexpected prerequisite head: %+v", pre)
	}
}

func TestPlanner_PublicRootEmitsDummyAndMigration(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{
		"src/f.ts":  s1Source,
		"test/f.ts": s1Source,
	})

	root := addParameterTo(ident.FunctionCallIdentifier{
		Name:     "priv",
		FilePath: "src/f.ts",
		Access:   ident.PublicFunctionAccess,
	})

	planner := NewPlanner(finder)
	cs, _, err := planner.ChangesetFor(context.Background(), prj, root)
	if err != nil {
		t.Fatal(err)
	}

	all := AllRequirements(cs)
	counts := kindCounts(all)
	if counts[KindPassDummyInTests] != 1 {
		t.Errorf("expected 1 pass-dummy requirement, got %d", counts[KindPassDummyInTests])
	}
	if counts[KindAddMigration] != 1 {
		t.Errorf("expected exactly 1 migration, got %d", counts[KindAddMigration])
	}

	// Call sites under test trees never produce source pass-arguments.
	for _, pa := range passArgumentsOf(all) {
		if pa.Enclosing.FilePath == "test/f.ts" {
			t.Errorf("pass-argument leaked from test tree: %+v", pa)
		}
	}
}

func TestPlanner_MigrationRewritesLocalImportToLibrary(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{"src/f.ts": "export function pub(s: string) {}\n"})

	root := addParameterTo(ident.FunctionCallIdentifier{
		Name:     "pub",
		FilePath: "src/f.ts",
		Access:   ident.PublicFunctionAccess,
	})
	root.ParameterType = imports.Local("HandlerContext", "src/HandlerContext", "@atomist/automation-client")

	planner := NewPlanner(finder)
	cs, _, err := planner.ChangesetFor(context.Background(), prj, root)
	if err != nil {
		t.Fatal(err)
	}

	var mig *AddMigration
	for _, req := range AllRequirements(cs) {
		if m, ok := req.(AddMigration); ok {
			mig = &m
		}
	}
	if mig == nil {
		t.Fatal("expected a migration requirement")
	}
	if mig.Downstream.ParameterType.Kind != imports.LibraryImport {
		t.Error("downstream parameter type must become a library import")
	}
	if mig.Downstream.ParameterType.Location != "@atomist/automation-client" {
		t.Errorf("unexpected downstream location: %s", mig.Downstream.ParameterType.Location)
	}
}

func TestPlanner_ExistingParameterIsReused(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{"src/c.ts": `class Classy {
  public otherThinger(params: P, ctx: HandlerContext) { return this.thinger(); }
  private thinger() { return Spacey.giveMeYourContext("x"); }
}
`})

	root := addParameterTo(ident.FunctionCallIdentifier{
		Name:           "thinger",
		EnclosingScope: &ident.Scope{Kind: ident.ClassAroundMethod, Name: "Classy"},
		FilePath:       "src/c.ts",
		Access:         ident.PrivateMethodAccess,
	})

	planner := NewPlanner(finder)
	cs, _, err := planner.ChangesetFor(context.Background(), prj, root)
	if err != nil {
		t.Fatal(err)
	}

	all := AllRequirements(cs)
	counts := kindCounts(all)
	if counts[KindAddParameter] != 1 {
		t.Errorf("expected no recursive add-parameter, got %d", counts[KindAddParameter])
	}

	pas := passArgumentsOf(all)
	if len(pas) != 1 {
		t.Fatalf("expected 1 pass-argument, got %d", len(pas))
	}
	if pas[0].ArgumentValue != "ctx" {
		t.Errorf("expected existing parameter ctx to be reused, got %s", pas[0].ArgumentValue)
	}
	if pas[0].Enclosing.Name != "otherThinger" {
		t.Errorf("unexpected enclosing function: %s", pas[0].Enclosing.Name)
	}
}

func TestPlanner_TransitiveCallersAcrossClasses(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{
		"src/s.ts": `export namespace Spacey {
  export function giveMeYourContext(s: string) {}
}
`,
		"src/c.ts": `class Classy {
  public static thinger() { return Spacey.giveMeYourContext("x"); }
}
class Clicker {
  protected clickMe() { return Classy.thinger(); }
}
`,
	})

	root := addParameterTo(ident.FunctionCallIdentifier{
		Name:           "giveMeYourContext",
		EnclosingScope: &ident.Scope{Kind: ident.EnclosingNamespace, Name: "Spacey", Exported: true},
		FilePath:       "src/s.ts",
		Access:         ident.PublicFunctionAccess,
	})

	planner := NewPlanner(finder)
	cs, _, err := planner.ChangesetFor(context.Background(), prj, root)
	if err != nil {
		t.Fatal(err)
	}

	enclosingClasses := make(map[string]bool)
	for _, pa := range passArgumentsOf(AllRequirements(cs)) {
		if pa.Enclosing.EnclosingScope != nil {
			enclosingClasses[pa.Enclosing.EnclosingScope.Name] = true
		}
	}
	if !enclosingClasses["Classy"] || !enclosingClasses["Clicker"] {
		t.Errorf("expected pass-arguments in both Classy and Clicker, got %v", enclosingClasses)
	}
}

func TestPlanner_ScopeContainmentForPrivateAccess(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{
		"src/f.ts": s1Source,
		// Same-name calls elsewhere must be invisible to a private root.
		"src/other.ts": "export function outsider() { return priv(\"y\"); }\n",
	})

	planner := NewPlanner(finder)
	cs, _, err := planner.ChangesetFor(context.Background(), prj, addParameterTo(privIdentifier()))
	if err != nil {
		t.Fatal(err)
	}

	for _, pa := range passArgumentsOf(AllRequirements(cs)) {
		if pa.Enclosing.FilePath != "src/f.ts" {
			t.Errorf("private access must stay in the declaring file, got %s", pa.Enclosing.FilePath)
		}
	}
}

func TestPlanner_TerminatesOnMutualRecursion(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{"src/f.ts": `function a() { return b(); }
function b() { return a(); }
`})

	root := addParameterTo(ident.FunctionCallIdentifier{
		Name:     "b",
		FilePath: "src/f.ts",
		Access:   ident.PrivateFunctionAccess,
	})

	planner := NewPlanner(finder)
	cs, dropped, err := planner.ChangesetFor(context.Background(), prj, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 0 {
		t.Fatalf("cycle must terminate via de-duplication, not the budget: %v", dropped)
	}

	seen := make(map[string]int)
	for _, req := range AllRequirements(cs) {
		seen[req.Key()]++
		if seen[req.Key()] > 1 {
			t.Errorf("duplicate requirement in plan: %s", req.Describe())
		}
	}
}

func TestPlanner_BudgetGuard(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{"src/f.ts": `function a() { return target(); }
function b() { return target(); }
function c() { return target(); }
function target() {}
`})

	root := addParameterTo(ident.FunctionCallIdentifier{
		Name:     "target",
		FilePath: "src/f.ts",
		Access:   ident.PrivateFunctionAccess,
	})

	planner := NewPlanner(finder)
	planner.MaxRequirements = 2
	cs, dropped, err := planner.ChangesetFor(context.Background(), prj, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) == 0 {
		t.Error("expected budget guard to drop requirements")
	}
	for _, d := range dropped {
		if d.Message != "planner requirement budget exceeded" {
			t.Errorf("unexpected message: %s", d.Message)
		}
	}

	// A dropped prerequisite must take its pass-argument with it: every
	// surviving pass-argument needs an add-parameter for its enclosing
	// function (or an existing parameter of the required type).
	planned := make(map[string]bool)
	for _, req := range AllRequirements(cs) {
		if ap, ok := req.(AddParameter); ok {
			planned[ap.Target.Key()] = true
		}
	}
	for _, pa := range passArgumentsOf(AllRequirements(cs)) {
		if !planned[pa.Enclosing.Key()] {
			t.Errorf("orphaned pass-argument for %s: no add-parameter planned",
				pa.Enclosing.QualifiedName())
		}
	}
}

func TestAllRequirements_PrerequisitesFirst(t *testing.T) {
	finder := testFinder(t)
	prj := buildProject(map[string]string{"src/f.ts": s1Source})

	planner := NewPlanner(finder)
	cs, _, err := planner.ChangesetFor(context.Background(), prj, addParameterTo(privIdentifier()))
	if err != nil {
		t.Fatal(err)
	}

	all := AllRequirements(cs)
	if len(all) < 3 {
		t.Fatalf("expected at least 3 requirements, got %d", len(all))
	}
	first, ok := all[0].(AddParameter)
	if !ok || first.Target.Name != "iShouldChange" {
		t.Errorf("expected the caller's add-parameter first, got %s", all[0].Describe())
	}
}
