package outputs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/actions"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/graph"
	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/template"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMode is the only action mode actionref knows about.
const DefaultMode = "default"

// BuildDir is where Build actions are staged, relative to the project root.
var BuildDir = filepath.Join(".garden", "build")

// OutputSource computes the type-specific outputs of an action and knows the
// schemas resolved configs are checked against.
type OutputSource interface {
	actions.SchemaSource
	ResolveOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error)
}

// Result is the resolved state of one action.
type Result struct {
	Action    *actions.Action
	Version   string
	BuildPath string
	Variables map[string]cty.Value

	// Outputs holds the type-specific outputs.
	Outputs map[string]cty.Value

	// Config is the action's config with every template evaluated.
	Config cty.Value

	// Value is what `${actions.<kind>.<name>}` evaluates to.
	Value cty.Value
}

// Resolution holds the results of every action of a project.
type Resolution struct {
	Project     string
	Environment string

	results map[actions.Reference]*Result
	order   []actions.Reference
	scope   *template.Scope
	vars    map[string]cty.Value
}

// Result returns the result of one action.
func (r *Resolution) Result(ref actions.Reference) (*Result, bool) {
	res, ok := r.results[ref]
	return res, ok
}

// Results returns every result in resolution order.
func (r *Resolution) Results() []*Result {
	out := make([]*Result, 0, len(r.order))
	for _, ref := range r.order {
		out = append(out, r.results[ref])
	}
	return out
}

// Eval evaluates a template string against the resolved project. The `var`
// namespace holds the project variables.
func (r *Resolution) Eval(src string) (cty.Value, hcl.Diagnostics) {
	tmpl, diags := template.Parse(src, "<template>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if rootDiags := tmpl.CheckRoots(); rootDiags.HasErrors() {
		return cty.NilVal, append(diags, rootDiags...)
	}
	v, evalDiags := tmpl.Eval(r.scope.WithVars(r.vars).EvalContext())
	return v, append(diags, evalDiags...)
}

// Resolve computes the outputs of every action in g. Actions must already be
// validated.
func Resolve(ctx context.Context, src OutputSource, g graph.Graph, project *actions.Project, environment string) (*Resolution, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving action outputs.", "project", project.Name, "environment", environment)

	order, err := g.Order()
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid action graph",
			Detail:   err.Error(),
		}}
	}

	projectVars := project.Variables
	if projectVars == nil {
		projectVars = map[string]cty.Value{}
	}

	res := &Resolution{
		Project:     project.Name,
		Environment: environment,
		results:     make(map[actions.Reference]*Result, len(order)),
		scope:       template.NewScope(project.Name, environment),
		vars:        projectVars,
	}

	var diags hcl.Diagnostics
	for _, a := range order {
		if err := ctx.Err(); err != nil {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Resolution cancelled",
				Detail:   err.Error(),
			})
		}

		result, actionDiags := res.resolveAction(ctx, src, g, project, a)
		diags = append(diags, actionDiags...)
		if actionDiags.HasErrors() {
			// Dependents would only repeat the same errors.
			return nil, diags
		}

		res.results[a.Ref()] = result
		res.order = append(res.order, a.Ref())
		res.scope.SetAction(a.Kind, a.Name, result.Value)
		logger.Debug("Resolved action.", "action", a.Ref().String(), "version", result.Version)
	}

	logger.Info("Action outputs resolved.", "actions", len(res.order))
	return res, diags
}

func (r *Resolution) resolveAction(ctx context.Context, src OutputSource, g graph.Graph, project *actions.Project, a *actions.Action) (*Result, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	deps, err := g.DependenciesOf(a.Ref())
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid action graph",
			Detail:   err.Error(),
			Subject:  a.Range(""),
		}}
	}
	depVersions := make([]string, 0, len(deps))
	for _, dep := range deps {
		if prev, ok := r.results[dep.Ref()]; ok {
			depVersions = append(depVersions, prev.Version)
		}
	}

	version, err := ComputeVersion(a, depVersions)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to compute version",
			Detail:   err.Error(),
			Subject:  a.Range(""),
		}}
	}

	vars, err := a.ResolveVariables(r.vars)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to load variables",
			Detail:   err.Error(),
			Subject:  a.Range("varfiles"),
		}}
	}

	// Variables may use templates themselves, evaluated against the project
	// variables only.
	varsVal, varDiags := template.Resolve(objectOf(vars), a.FSInfo.File, nil, r.scope.WithVars(r.vars).EvalContext())
	diags = append(diags, varDiags...)
	if varDiags.HasErrors() {
		return nil, diags
	}
	if varsVal.Type().IsObjectType() {
		vars = varsVal.AsValueMap()
	}
	if vars == nil {
		vars = map[string]cty.Value{}
	}

	if varDiags := undefinedVars(a, vars); varDiags.HasErrors() {
		return nil, append(diags, varDiags...)
	}

	config, cfgDiags := template.Resolve(a.Raw, a.FSInfo.File, a.PosOf, r.scope.WithVars(vars).EvalContext())
	diags = append(diags, cfgDiags...)
	if cfgDiags.HasErrors() {
		return nil, diags
	}
	config, cfgDiags = actions.CheckResolved(src, a, config)
	diags = append(diags, cfgDiags...)
	if cfgDiags.HasErrors() {
		return nil, diags
	}

	buildPath, buildDiags := r.buildPath(project, a)
	diags = append(diags, buildDiags...)
	if buildDiags.HasErrors() {
		return nil, diags
	}

	resolved := *a
	resolved.Raw = config
	resolved.Spec = specOf(config)

	outputs, err := src.ResolveOutputs(ctxlog.With(ctx, "action", a.Ref().String()), registry.ResolveInput{
		Action:    &resolved,
		Version:   version,
		BuildPath: buildPath,
	})
	if err != nil {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to resolve outputs",
			Detail:   err.Error(),
			Subject:  a.Range("type"),
		})
	}

	result := &Result{
		Action:    a,
		Version:   version,
		BuildPath: buildPath,
		Variables: vars,
		Outputs:   outputs,
		Config:    config,
	}
	result.Value = cty.ObjectVal(map[string]cty.Value{
		"name":       cty.StringVal(a.Name),
		"version":    cty.StringVal(version),
		"disabled":   cty.BoolVal(a.Disabled),
		"buildPath":  cty.StringVal(buildPath),
		"path":       cty.StringVal(a.SourceDir()),
		"sourcePath": cty.StringVal(a.SourceDir()),
		"mode":       cty.StringVal(DefaultMode),
		"var":        objectOf(vars),
		"outputs":    objectOf(outputs),
	})
	return result, diags
}

// buildPath returns the directory an action builds or runs in.
func (r *Resolution) buildPath(project *actions.Project, a *actions.Action) (string, hcl.Diagnostics) {
	switch {
	case a.Kind == schema.KindBuild:
		return filepath.Join(project.Root, BuildDir, a.Name), nil
	case a.Build != "":
		ref := actions.Reference{Kind: schema.KindBuild, Name: a.Build}
		build, ok := r.results[ref]
		if !ok {
			return "", hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unknown build action",
				Detail:   fmt.Sprintf("%s references %s, which has not been resolved.", a.Ref(), ref),
				Subject:  a.Range("build"),
			}}
		}
		return build.BuildPath, nil
	default:
		return a.SourceDir(), nil
	}
}

// undefinedVars reports every `${var.<name>}` read by a's templates that
// vars does not define.
func undefinedVars(a *actions.Action, vars map[string]cty.Value) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, ts := range a.Templates {
		for _, name := range ts.Template.VarRefs() {
			if _, ok := vars[name]; ok {
				continue
			}
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Undefined variable",
				Detail:   fmt.Sprintf("The value of %q reads var.%s, which is not defined by the project, the action or its varfiles.", ts.Path, name),
				Subject:  a.Range(ts.Path),
			})
		}
	}
	return diags
}

func objectOf(m map[string]cty.Value) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(m)
}

func specOf(config cty.Value) cty.Value {
	if config.IsNull() || !config.Type().IsObjectType() || !config.Type().HasAttribute("spec") {
		return cty.EmptyObjectVal
	}
	spec := config.GetAttr("spec")
	if spec.IsNull() {
		return cty.EmptyObjectVal
	}
	return spec
}
