package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gookit/color"
	"github.com/specialistvlad/actionref/internal/doclint"
	"github.com/specialistvlad/actionref/internal/docs"
	"github.com/specialistvlad/actionref/internal/graph"
	"github.com/specialistvlad/actionref/internal/outputs"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrFindings is returned when the doc linter reports findings.
var ErrFindings = errors.New("reference docs have lint findings")

// paint colors s when color output is enabled.
func (a *App) paint(c color.Color, s string) string {
	if !a.config.Color {
		return s
	}
	return c.Sprint(s)
}

// Validate loads and validates the project and reports a summary.
func (a *App) Validate(ctx context.Context) error {
	p, err := a.LoadProject(ctx)
	if err != nil {
		return err
	}
	if _, err := a.environment(p); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "%s %d action(s) in project %s are valid.\n", a.paint(color.FgGreen, "✔"), len(p.Actions), p.Name)
	return nil
}

// Graph prints the actions in dependency order, each followed by the actions
// it depends on and why.
func (a *App) Graph(ctx context.Context) error {
	p, err := a.LoadProject(ctx)
	if err != nil {
		return err
	}
	if _, err := a.environment(p); err != nil {
		return err
	}
	order, err := p.Graph.Order()
	if err != nil {
		return err
	}

	for _, act := range order {
		line := a.paint(color.Bold, act.Ref().String())
		if act.Disabled {
			line += " " + a.paint(color.FgGray, "(disabled)")
		}
		edges := p.Graph.Edges(act.Ref())
		if len(edges) > 0 {
			deps := make([]string, 0, len(edges))
			for _, e := range edges {
				deps = append(deps, fmt.Sprintf("%s (%s)", e.From, joinKinds(e.Kinds)))
			}
			line += " <- " + strings.Join(deps, ", ")
		}
		fmt.Fprintln(a.outW, line)
	}
	return nil
}

func joinKinds(kinds []graph.EdgeKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Resolve resolves the project's outputs. With a template, the template is
// evaluated and its value printed; otherwise every action's version is listed.
func (a *App) Resolve(ctx context.Context, tmpl string) error {
	p, err := a.LoadProject(ctx)
	if err != nil {
		return err
	}

	env, err := a.environment(p)
	if err != nil {
		return err
	}
	res, diags := outputs.Resolve(a.withLogger(ctx), a.registry, p.Graph, p.Project, env)
	if err := a.reportDiagnostics(diags); err != nil {
		return err
	}

	if tmpl == "" {
		tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
		for _, r := range res.Results() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Action.Ref(), r.Version, r.BuildPath)
		}
		return tw.Flush()
	}

	v, diags := res.Eval(tmpl)
	if err := a.reportDiagnostics(diags); err != nil {
		return err
	}
	out, err := formatValue(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, out)
	return nil
}

// formatValue prints strings as they are and everything else as JSON.
func formatValue(v cty.Value) (string, error) {
	if v.IsKnown() && !v.IsNull() && v.Type() == cty.String {
		return v.AsString(), nil
	}
	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "", fmt.Errorf("failed to format value: %w", err)
	}
	return string(data), nil
}

// Schemas lists the registered action types.
func (a *App) Schemas(ctx context.Context) error {
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tTYPE\tPROVIDER")
	for _, s := range a.registry.Schemas() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Kind, s.Type, s.Provider)
	}
	return tw.Flush()
}

// docsDir returns dir, or the configured docs directory relative to the
// project directory.
func (a *App) docsDir(dir string) string {
	if dir != "" {
		return dir
	}
	if filepath.IsAbs(a.config.DocsDir) {
		return a.config.DocsDir
	}
	return filepath.Join(a.config.ProjectDir, a.config.DocsDir)
}

// DocsGenerate writes the reference pages of every registered action type.
func (a *App) DocsGenerate(ctx context.Context, dir string) error {
	dir = a.docsDir(dir)
	written, err := docs.Generate(a.withLogger(ctx), a.registry, dir, a.config.WorkerCount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %d page(s) to %s.\n", len(written), dir)
	return nil
}

// DocsCheck fails if the pages below dir differ from freshly generated ones.
func (a *App) DocsCheck(ctx context.Context, dir string) error {
	dir = a.docsDir(dir)
	if err := docs.Check(a.withLogger(ctx), a.registry, dir); err != nil {
		return fmt.Errorf("%w\nRun `actionref docs generate` to update them.", err)
	}
	fmt.Fprintf(a.outW, "%s Reference docs in %s are up to date.\n", a.paint(color.FgGreen, "✔"), dir)
	return nil
}

// DocsLint lints the pages below dir and prints the findings.
func (a *App) DocsLint(ctx context.Context, dir string) error {
	dir = a.docsDir(dir)
	findings, err := doclint.LintDir(a.withLogger(ctx), a.registry, dir, a.config.WorkerCount)
	for _, f := range findings {
		fmt.Fprintf(a.outW, "%s:%d: %s %s\n", f.Path, f.Line, a.paint(color.FgYellow, "["+f.Rule+"]"), f.Message)
	}
	if err != nil {
		return err
	}
	if len(findings) > 0 {
		return fmt.Errorf("%w: %d finding(s)", ErrFindings, len(findings))
	}
	fmt.Fprintf(a.outW, "%s No findings in %s.\n", a.paint(color.FgGreen, "✔"), dir)
	return nil
}
