package template

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Scope collects the values that templates can see.
type Scope struct {
	actions     map[schema.Kind]map[string]cty.Value
	vars        map[string]cty.Value
	project     string
	environment string
}

// NewScope creates an empty scope for the given project and environment.
func NewScope(project, environment string) *Scope {
	return &Scope{
		actions:     make(map[schema.Kind]map[string]cty.Value),
		vars:        make(map[string]cty.Value),
		project:     project,
		environment: environment,
	}
}

// SetAction makes the outputs of an action visible as
// ${actions.<kind>.<name>}.
func (s *Scope) SetAction(kind schema.Kind, name string, outputs cty.Value) {
	if s.actions[kind] == nil {
		s.actions[kind] = make(map[string]cty.Value)
	}
	s.actions[kind][name] = outputs
}

// WithVars returns a copy of the scope whose `var` namespace holds vars.
// The action outputs are shared with the receiver.
func (s *Scope) WithVars(vars map[string]cty.Value) *Scope {
	clone := *s
	clone.vars = vars
	return &clone
}

// EvalContext builds the HCL evaluation context for the scope.
func (s *Scope) EvalContext() *hcl.EvalContext {
	kinds := make(map[string]cty.Value, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		if len(s.actions[kind]) == 0 {
			kinds[kind.Namespace()] = cty.EmptyObjectVal
			continue
		}
		kinds[kind.Namespace()] = cty.ObjectVal(s.actions[kind])
	}

	vars := cty.EmptyObjectVal
	if len(s.vars) > 0 {
		vars = cty.ObjectVal(s.vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			RootActions: cty.ObjectVal(kinds),
			RootVar:     vars,
			RootProject: cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(s.project),
			}),
			RootEnvironment: cty.ObjectVal(map[string]cty.Value{
				"name": cty.StringVal(s.environment),
			}),
		},
		Functions: Functions(),
	}
}

// Functions returns the functions available in templates.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"coalesce":   stdlib.CoalesceFunc,
		"concat":     stdlib.ConcatFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"length":     stdlib.LengthFunc,
		"lower":      stdlib.LowerFunc,
		"replace":    stdlib.ReplaceFunc,
		"split":      stdlib.SplitFunc,
		"substr":     stdlib.SubstrFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"upper":      stdlib.UpperFunc,
	}
}
