// # cmd/retrofit/app.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retrofit/internal/astq"
	"retrofit/internal/config"
	"retrofit/internal/ident"
	"retrofit/internal/imports"
	"retrofit/internal/migration"
	"retrofit/internal/output"
	"retrofit/internal/project"
	"retrofit/internal/refactor"
	"retrofit/internal/shared/util"
	"retrofit/internal/watcher"
)

type App struct {
	Config     *config.Config
	Finder     *astq.Finder
	Engine     *refactor.Engine
	sink       migration.Sink
	memorySink *migration.MemorySink
	teaProgram *tea.Program

	// Watch-mode re-plans are throttled so editor save storms do not pin a
	// core re-parsing the project.
	replanLimiter *util.Limiter
}

func NewApp(cfg *config.Config) (*App, error) {
	finder, err := astq.NewFinder(astq.NewGrammarLoader())
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:        cfg,
		Finder:        finder,
		replanLimiter: util.NewLimiter(1, 2),
	}

	if cfg.Migrations.SQLitePath != "" {
		sink, err := migration.OpenSQLiteSink(cfg.Migrations.SQLitePath)
		if err != nil {
			return nil, err
		}
		app.sink = sink
	} else {
		app.memorySink = migration.NewMemorySink()
		app.sink = app.memorySink
	}

	app.Engine = refactor.NewEngine(finder, app.sink)
	return app, nil
}

func (a *App) Close() error {
	return a.sink.Close()
}

func (a *App) LoadProject() (*project.Project, error) {
	return project.LoadDir(a.Config.ProjectRoot, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
}

// RootRequirement builds the add-parameter requirement the config describes.
func (a *App) RootRequirement() (refactor.AddParameter, error) {
	rc := a.Config.Refactor

	// Config lists scopes outermost-first; chaining each new link in front
	// yields the innermost-first chain identifiers use.
	var scope *ident.Scope
	for i := 0; i < len(rc.Scope); i++ {
		kind := ident.ClassAroundMethod
		if i < len(rc.ScopeKinds) && rc.ScopeKinds[i] == "namespace" {
			kind = ident.EnclosingNamespace
		}
		scope = &ident.Scope{Kind: kind, Name: rc.Scope[i], Exported: true, Parent: scope}
	}

	access, err := a.resolveAccess(rc, scope)
	if err != nil {
		return refactor.AddParameter{}, err
	}

	paramType := importFromConfig(rc.ParameterType)
	root := refactor.AddParameter{
		Target: ident.FunctionCallIdentifier{
			Name:           rc.Function,
			EnclosingScope: scope,
			FilePath:       rc.File,
			Access:         access,
		},
		ParameterType: paramType,
		ParameterName: rc.ParameterName,
		PopulateInTests: refactor.TestPopulation{
			DummyValue: rc.DummyValue,
		},
		Why: "configured root requirement",
	}
	if rc.DummyImport != nil {
		imp := importFromConfig(*rc.DummyImport)
		root.PopulateInTests.AdditionalImport = &imp
	}
	return root, nil
}

func (a *App) resolveAccess(rc config.Refactor, scope *ident.Scope) (ident.Access, error) {
	if rc.Access != "" {
		return ident.ParseAccess(rc.Access)
	}
	if scope != nil && scope.Kind == ident.ClassAroundMethod {
		return ident.PublicMethodAccess, nil
	}
	return ident.PublicFunctionAccess, nil
}

func importFromConfig(imp config.Import) imports.ImportIdentifier {
	if imp.Library != "" {
		return imports.Library(imp.Name, imp.Library)
	}
	return imports.Local(imp.Name, imp.LocalPath, imp.ExternalPath)
}

// Plan loads the project and computes the changeset without mutating anything.
func (a *App) Plan(ctx context.Context) (*refactor.Changeset, []refactor.Unimplemented, error) {
	prj, err := a.LoadProject()
	if err != nil {
		return nil, nil, err
	}
	root, err := a.RootRequirement()
	if err != nil {
		return nil, nil, err
	}
	return a.Engine.Plan(ctx, prj, root)
}

// Apply plans and implements the refactoring, writing changed files back
// under the project root.
func (a *App) Apply(ctx context.Context) (refactor.Report, *refactor.Changeset, error) {
	prj, err := a.LoadProject()
	if err != nil {
		return refactor.Report{}, nil, err
	}
	root, err := a.RootRequirement()
	if err != nil {
		return refactor.Report{}, nil, err
	}

	cs, dropped, err := a.Engine.Plan(ctx, prj, root)
	if err != nil {
		return refactor.Report{}, nil, err
	}

	report, err := a.Engine.Implement(ctx, prj, cs, nil)
	if err != nil {
		return report, cs, err
	}
	report.Unimplemented = append(report.Unimplemented, dropped...)

	if err := prj.WriteBack(a.Config.ProjectRoot); err != nil {
		return report, cs, err
	}
	return report, cs, nil
}

func (a *App) GenerateOutputs(cs *refactor.Changeset, report *refactor.Report) error {
	if a.Config.Output.DOT != "" {
		dotGen := output.NewDOTGenerator(cs)
		if report != nil {
			dotGen.SetUnimplemented(report.Unimplemented)
		}
		dot, err := dotGen.Generate()
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Config.Output.DOT, []byte(dot), 0644); err != nil {
			return err
		}
	}

	if a.Config.Output.TSV != "" {
		tsvGen := output.NewTSVGenerator()
		var tsv string
		var err error
		if report != nil {
			tsv, err = tsvGen.GenerateReport(*report)
		} else {
			tsv, err = tsvGen.GeneratePlan(cs)
		}
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Config.Output.TSV, []byte(tsv), 0644); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) PrintSummary(cs *refactor.Changeset, report *refactor.Report, duration time.Duration) {
	s := refactor.Summarize(cs)

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Plan: %d requirements across %d changesets (depth %d) in %v\n",
		s.Total, s.ChangesetCount, s.MaxDepth, duration)
	for _, kind := range []refactor.Kind{
		refactor.KindAddParameter, refactor.KindPassArgument,
		refactor.KindPassDummyInTests, refactor.KindAddMigration,
	} {
		if n := s.ByKind[kind]; n > 0 {
			fmt.Printf("   %s: %d\n", kind, n)
		}
	}
	if len(s.Files) > 0 {
		fmt.Printf("   files: %s\n", strings.Join(s.Files, ", "))
	}

	if report == nil {
		fmt.Println("Dry run: nothing applied.")
		fmt.Println(strings.Repeat("-", 40))
		return
	}

	fmt.Printf("Implemented: %d\n", len(report.Implemented))
	if len(report.Unimplemented) > 0 {
		fmt.Printf("⚠️  UNIMPLEMENTED (%d):\n", len(report.Unimplemented))
		for _, row := range report.Unimplemented {
			fmt.Printf("   %s: %s\n", row.Requirement.Describe(), row.Message)
		}
	} else {
		fmt.Println("✅ Every planned requirement was implemented.")
	}

	if a.memorySink != nil {
		records := a.memorySink.Records()
		if len(records) > 0 {
			fmt.Printf("📦 Migrations recorded (%d):\n", len(records))
			for _, rec := range records {
				fmt.Printf("   %s (%s)\n", rec.QualifiedName, rec.ImportLocation)
			}
		}
	}
	fmt.Println(strings.Repeat("-", 40))
}

// StartWatcher re-plans (dry run) whenever project sources change.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.handleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}
	return w.Watch([]string{a.Config.ProjectRoot})
}

func (a *App) handleChanges(ctx context.Context, paths []string) {
	if !a.replanLimiter.Allow(1) {
		slog.Debug("re-plan throttled", "changes", len(paths))
		return
	}

	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	cs, dropped, err := a.Plan(ctx)
	if err != nil {
		slog.Error("re-plan failed", "error", err)
		return
	}

	if err := a.GenerateOutputs(cs, nil); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	a.PrintSummary(cs, nil, time.Since(start))

	if a.teaProgram != nil {
		a.teaProgram.Send(planMsg{rows: refactor.Rows(cs), dropped: dropped})
	}
}

func (a *App) RunUI(ctx context.Context) error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	go func() {
		cs, dropped, err := a.Plan(ctx)
		if err != nil {
			slog.Error("plan failed", "error", err)
			return
		}
		a.teaProgram.Send(planMsg{rows: refactor.Rows(cs), dropped: dropped})
	}()

	_, err := p.Run()
	return err
}

// ServeObservability exposes prometheus metrics and a health probe.
func (a *App) ServeObservability(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "up"})
	})

	slog.Info("observability server starting", "addr", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()
}
