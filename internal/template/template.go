package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Root namespaces a template may reference.
const (
	RootActions     = "actions"
	RootVar         = "var"
	RootProject     = "project"
	RootEnvironment = "environment"
)

// ActionRef is a template reference to another action, e.g.
// ${actions.build.api.outputs.deploymentImageId} yields
// {Kind: Build, Name: "api", Field: ["outputs", "deploymentImageId"]}.
type ActionRef struct {
	Kind  schema.Kind
	Name  string
	Field []string
	Range hcl.Range
}

// String renders the reference the way it is written in a template.
func (r ActionRef) String() string {
	parts := append([]string{RootActions, r.Kind.Namespace(), r.Name}, r.Field...)
	return strings.Join(parts, ".")
}

// Template is a parsed template string.
type Template struct {
	Source string
	expr   hclsyntax.Expression
}

// IsTemplate reports whether s contains a template interpolation or directive.
func IsTemplate(s string) bool {
	return strings.Contains(s, "${") || strings.Contains(s, "%{")
}

// Parse parses s as an HCL template. The filename and start position are
// used for diagnostics only.
func Parse(s, filename string, start hcl.Pos) (*Template, hcl.Diagnostics) {
	if start.Line == 0 {
		start = hcl.InitialPos
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(s), filename, start)
	if diags.HasErrors() {
		return nil, diags
	}
	return &Template{Source: s, expr: expr}, diags
}

// traversals returns the unique variable traversals in a deterministic order.
func (t *Template) traversals() []hcl.Traversal {
	unique := make(map[string]hcl.Traversal)
	for _, tr := range t.expr.Variables() {
		unique[traversalKey(tr)] = tr
	}
	keys := make([]string, 0, len(unique))
	for k := range unique {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		out = append(out, unique[k])
	}
	return out
}

// traversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// ActionRefs returns every reference to another action. References that do
// not name a kind and an action are reported as diagnostics.
func (t *Template) ActionRefs() ([]ActionRef, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var refs []ActionRef

	for _, tr := range t.traversals() {
		if tr.RootName() != RootActions {
			continue
		}
		// Anything after a numeric index is a value lookup, not an output name.
		names, _ := attrNames(tr[1:])
		if len(names) < 2 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid action reference",
				Detail:   "An action reference must have the form ${actions.<kind>.<name>...}.",
				Subject:  tr.SourceRange().Ptr(),
			})
			continue
		}
		kind, err := schema.ParseKind(names[0])
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid action reference",
				Detail:   fmt.Sprintf("%q is not an action kind: %s.", names[0], err),
				Subject:  tr.SourceRange().Ptr(),
			})
			continue
		}
		refs = append(refs, ActionRef{Kind: kind, Name: names[1], Field: names[2:], Range: tr.SourceRange()})
	}
	return refs, diags
}

// attrNames converts traversal steps into names. It stops at the first step
// that is not an attribute access or a string index, and reports whether all
// steps were consumed.
func attrNames(steps hcl.Traversal) ([]string, bool) {
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			names = append(names, s.Name)
		case hcl.TraverseIndex:
			if s.Key.Type() != cty.String || !s.Key.IsKnown() || s.Key.IsNull() {
				return names, false
			}
			names = append(names, s.Key.AsString())
		default:
			return names, false
		}
	}
	return names, true
}

// VarRefs returns the names of the variables the template reads.
func (t *Template) VarRefs() []string {
	var names []string
	seen := make(map[string]bool)
	for _, tr := range t.traversals() {
		if tr.RootName() != RootVar {
			continue
		}
		steps, _ := attrNames(tr[1:])
		if len(steps) == 0 || seen[steps[0]] {
			continue
		}
		seen[steps[0]] = true
		names = append(names, steps[0])
	}
	return names
}

// CheckRoots reports references to namespaces that do not exist.
func (t *Template) CheckRoots() hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, tr := range t.traversals() {
		switch tr.RootName() {
		case RootActions, RootVar, RootProject, RootEnvironment:
		default:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown template namespace",
				Detail: fmt.Sprintf("The namespace %q is not available in templates. Use one of: %s, %s, %s, %s.",
					tr.RootName(), RootActions, RootVar, RootProject, RootEnvironment),
				Subject: tr.SourceRange().Ptr(),
			})
		}
	}
	return diags
}

// Eval evaluates the template. A template consisting of a single
// interpolation yields the referenced value with its own type.
func (t *Template) Eval(ctx *hcl.EvalContext) (cty.Value, hcl.Diagnostics) {
	return t.expr.Value(ctx)
}
