package template

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Found is a template string located inside a configuration value.
type Found struct {
	Path  cty.Path
	Value string
}

// Find returns every string in v that contains a template, in walk order.
func Find(v cty.Value) []Found {
	var found []Found
	_ = cty.Walk(v, func(p cty.Path, v cty.Value) (bool, error) {
		if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
			return true, nil
		}
		if s := v.AsString(); IsTemplate(s) {
			found = append(found, Found{Path: p.Copy(), Value: s})
		}
		return true, nil
	})
	return found
}

// Resolve evaluates every template string in v and returns the resulting
// value. Strings without templates are returned unchanged. Positions are
// looked up with pos, which may be nil.
func Resolve(v cty.Value, filename string, pos func(cty.Path) hcl.Pos, ctx *hcl.EvalContext) (cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	out, err := cty.Transform(v, func(p cty.Path, v cty.Value) (cty.Value, error) {
		if v.IsNull() || !v.IsKnown() || v.Type() != cty.String || !IsTemplate(v.AsString()) {
			return v, nil
		}
		start := hcl.InitialPos
		if pos != nil {
			start = pos(p)
		}
		tmpl, parseDiags := Parse(v.AsString(), filename, start)
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			return v, nil
		}
		result, evalDiags := tmpl.Eval(ctx)
		diags = append(diags, evalDiags...)
		if evalDiags.HasErrors() {
			return v, nil
		}
		return result, nil
	})
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to resolve templates",
			Detail:   err.Error(),
		})
		return v, diags
	}
	return out, diags
}

// FormatPath renders a value path, e.g. `spec.ports[0].name`.
func FormatPath(p cty.Path) string {
	var b strings.Builder
	for _, step := range p {
		switch s := step.(type) {
		case cty.GetAttrStep:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		case cty.IndexStep:
			switch {
			case s.Key.Type() == cty.String:
				if b.Len() > 0 {
					b.WriteByte('.')
				}
				b.WriteString(s.Key.AsString())
			case s.Key.Type() == cty.Number:
				bf := s.Key.AsBigFloat()
				i, _ := bf.Int64()
				fmt.Fprintf(&b, "[%d]", i)
			}
		}
	}
	return b.String()
}
