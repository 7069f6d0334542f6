// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/template"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// SchemaSource looks up the schema of an action type.
type SchemaSource interface {
	Schema(kind schema.Kind, typ string) (*schema.ActionSchema, bool)
}

// Validate checks every action against its schema and against the other
// actions it references. Valid actions get their defaults applied and their
// typed fields populated.
func Validate(ctx context.Context, src SchemaSource, list []*Action) hcl.Diagnostics {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validating actions.", "count", len(list))

	var diags hcl.Diagnostics
	for _, a := range list {
		diags = append(diags, validateAction(src, a)...)
	}
	if diags.HasErrors() {
		return diags
	}

	diags = append(diags, validateReferences(src, list)...)
	if !diags.HasErrors() {
		logger.Info("Actions validated.", "count", len(list))
	}
	return diags
}

func validateAction(src SchemaSource, a *Action) hcl.Diagnostics {
	var diags hcl.Diagnostics

	if a.Type == "" {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Missing required key",
			Detail:   fmt.Sprintf("The %s action at line %d must set `type`.", a.Kind, a.FSInfo.Line),
			Subject:  a.Range(""),
		}}
	}

	s, ok := src.Schema(a.Kind, a.Type)
	if !ok {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown action type",
			Detail:   fmt.Sprintf("No %s action type named %q is registered.", a.Kind, a.Type),
			Subject:  a.Range("type"),
		}}
	}

	if a.Kind == schema.KindBuild && a.Raw.Type().HasAttribute("build") {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid build reference",
			Detail:   "Build actions cannot set `build`. Use `dependencies` to depend on another Build.",
			Subject:  a.Range("build"),
		})
	}

	v := &valueChecker{action: a, schema: s}
	checked := v.object(s.AllKeys(), a.Raw, "", true)
	diags = append(diags, v.diags...)
	if diags.HasErrors() {
		return diags
	}

	a.Raw = checked
	diags = append(diags, decodeAction(a, checked)...)
	diags = append(diags, collectTemplates(a)...)
	return diags
}

// CheckResolved checks a config whose templates have been evaluated against
// the action's schema again, since a template may produce a value of any
// type. Strings are converted where a number or boolean is expected, which
// is how dotenv varfiles provide them. It returns the checked config.
func CheckResolved(src SchemaSource, a *Action, config cty.Value) (cty.Value, hcl.Diagnostics) {
	s, ok := src.Schema(a.Kind, a.Type)
	if !ok {
		return config, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown action type",
			Detail:   fmt.Sprintf("No %s action type named %q is registered.", a.Kind, a.Type),
			Subject:  a.Range("type"),
		}}
	}

	v := &valueChecker{action: a, schema: s, resolved: true}
	checked := v.object(s.AllKeys(), config, "", true)
	for _, d := range v.diags {
		d.Detail += " The value comes from a template."
	}
	return checked, v.diags
}

// valueChecker walks a config value alongside its keys.
type valueChecker struct {
	action *Action
	schema *schema.ActionSchema
	diags  hcl.Diagnostics
	// resolved is set once templates have been evaluated.
	resolved bool
}

func (v *valueChecker) errorf(path, summary, format string, args ...any) {
	v.diags = append(v.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  v.action.Range(path),
	})
}

// object checks an object value. When strict is set, attributes without a
// matching key are reported. Missing keys with defaults are filled in.
func (v *valueChecker) object(keys []*schema.Key, val cty.Value, path string, strict bool) cty.Value {
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		v.errorf(path, "Invalid value type", "%s: expected object, got %s.", displayPath(path), ty.FriendlyName())
		return val
	}

	attrs := val.AsValueMap()
	if attrs == nil {
		attrs = make(map[string]cty.Value)
	}

	if strict {
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if findKey(keys, name) != nil {
				continue
			}
			// `build` on a Build action has its own diagnostic.
			if path == "" && name == "build" && v.action.Kind == schema.KindBuild {
				continue
			}
			v.errorf(childPath(path, name), "Unsupported key",
				"The key %q is not valid for %s actions of type %q.", childPath(path, name), v.action.Kind, v.action.Type)
		}
	}

	for _, k := range keys {
		p := childPath(path, k.Name)
		current, present := attrs[k.Name]
		if !present || current.IsNull() {
			switch {
			case k.Required:
				v.errorf(path, "Missing required key", "The key %q is required for %s actions of type %q.", p, v.action.Kind, v.action.Type)
				continue
			case k.Default != nil:
				attrs[k.Name] = *k.Default
				continue
			case path == "" && k.Name == "spec":
				// An absent spec is checked as empty so that its required keys
				// are reported and its defaults applied.
				current = cty.EmptyObjectVal
			default:
				continue
			}
		}
		attrs[k.Name] = v.value(k, current, p)
	}

	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// value checks a single value against its key and recurses into nested keys.
func (v *valueChecker) value(k *schema.Key, val cty.Value, path string) cty.Value {
	if v.resolved {
		val = coerceScalar(k.Type, val)
	}
	if err := schema.CheckValue(k.Type, val); err != nil {
		v.errorf(path, "Invalid value type", "%s: %s.", path, err)
		return val
	}
	if err := schema.CheckAllowed(k, val); err != nil {
		v.errorf(path, "Invalid value", "%s: %s.", path, err)
		return val
	}
	if (!v.resolved && schema.IsTemplateValue(val)) || !val.IsKnown() {
		return val
	}

	// The spec of a type without fields accepts no keys at all.
	strict := len(k.Children) > 0 || path == "spec"
	if !strict {
		return val
	}

	ty := val.Type()
	switch {
	case ty.IsObjectType() || ty.IsMapType():
		return v.object(k.Children, val, path, true)
	case ty.IsTupleType() || ty.IsListType():
		if val.LengthInt() == 0 {
			return val
		}
		elems := make([]cty.Value, 0, val.LengthInt())
		idx := 0
		for it := val.ElementIterator(); it.Next(); idx++ {
			_, ev := it.Element()
			if ev.Type().IsObjectType() {
				ev = v.object(k.Children, ev, fmt.Sprintf("%s[%d]", path, idx), true)
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems)
	}
	return val
}

// coerceScalar converts a string to the number or boolean t asks for. Values
// that do not convert are returned unchanged for CheckValue to report.
func coerceScalar(t schema.Type, val cty.Value) cty.Value {
	if val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
		return val
	}
	var want cty.Type
	switch t.Kind {
	case schema.ValueNumber:
		want = cty.Number
	case schema.ValueBoolean:
		want = cty.Bool
	default:
		return val
	}
	if out, err := convert.Convert(val, want); err == nil {
		return out
	}
	return val
}

// decodeAction copies validated values into the typed fields.
func decodeAction(a *Action, val cty.Value) hcl.Diagnostics {
	var diags hcl.Diagnostics

	if err := schema.ValidateName(a.Name); err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid action name",
			Detail:   err.Error() + ".",
			Subject:  a.Range("name"),
		})
	}

	a.Description = asString(attr(val, "description"))
	a.Disabled = asBool(attr(val, "disabled"))
	a.Build = asString(attr(val, "build"))
	a.Include = asStrings(attr(val, "include"))
	a.Exclude = asStrings(attr(val, "exclude"))
	a.Timeout = asInt(attr(val, "timeout"))

	source := attr(val, "source")
	a.Source = Source{
		Path:          asString(attr(source, "path")),
		RepositoryURL: asString(attr(attr(source, "repository"), "url")),
	}

	a.Variables = map[string]cty.Value{}
	if vars := attr(val, "variables"); !vars.IsNull() && vars.Type().IsObjectType() {
		for k, v := range vars.AsValueMap() {
			a.Variables[k] = v
		}
	}

	a.Spec = attr(val, "spec")
	if a.Spec.IsNull() {
		a.Spec = cty.EmptyObjectVal
	}

	a.Dependencies = nil
	deps := attr(val, "dependencies")
	if !deps.IsNull() && deps.CanIterateElements() {
		idx := 0
		for it := deps.ElementIterator(); it.Next(); idx++ {
			_, dep := it.Element()
			p := fmt.Sprintf("dependencies[%d]", idx)
			if schema.IsTemplateValue(dep) {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid dependency",
					Detail:   "Dependencies must be static; template strings are not allowed here.",
					Subject:  a.Range(p),
				})
				continue
			}
			ref, err := ParseReference(dep)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid dependency",
					Detail:   err.Error() + ".",
					Subject:  a.Range(p),
				})
				continue
			}
			a.Dependencies = append(a.Dependencies, ref)
		}
	}

	a.Varfiles = nil
	varfiles := attr(val, "varfiles")
	if !varfiles.IsNull() && varfiles.CanIterateElements() {
		for it := varfiles.ElementIterator(); it.Next(); {
			_, vf := it.Element()
			if vf.Type() == cty.String {
				a.Varfiles = append(a.Varfiles, Varfile{Path: vf.AsString()})
				continue
			}
			a.Varfiles = append(a.Varfiles, Varfile{
				Path:     asString(attr(vf, "path")),
				Optional: asBool(attr(vf, "optional")),
			})
		}
	}

	return diags
}

// collectTemplates parses every template string of the action.
func collectTemplates(a *Action) hcl.Diagnostics {
	var diags hcl.Diagnostics
	a.Templates = nil

	for _, found := range template.Find(a.Raw) {
		path := template.FormatPath(found.Path)
		tmpl, parseDiags := template.Parse(found.Value, a.FSInfo.File, a.Pos(path))
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			continue
		}
		diags = append(diags, tmpl.CheckRoots()...)
		_, refDiags := tmpl.ActionRefs()
		diags = append(diags, refDiags...)

		a.Templates = append(a.Templates, TemplateString{Path: path, Value: found.Value, Template: tmpl})
	}
	return diags
}

// validateReferences checks that builds, dependencies and template
// references point at existing actions and declared outputs.
func validateReferences(src SchemaSource, list []*Action) hcl.Diagnostics {
	var diags hcl.Diagnostics
	index := make(map[Reference]*Action, len(list))
	for _, a := range list {
		index[a.Ref()] = a
	}

	for _, a := range list {
		if a.Build != "" && !template.IsTemplate(a.Build) {
			if _, ok := index[Reference{Kind: schema.KindBuild, Name: a.Build}]; !ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown build action",
					Detail:   fmt.Sprintf("%s references the Build action %q, which does not exist.", a.Ref(), a.Build),
					Subject:  a.Range("build"),
				})
			}
		}

		for i, dep := range a.Dependencies {
			p := fmt.Sprintf("dependencies[%d]", i)
			switch _, ok := index[dep]; {
			case dep == a.Ref():
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid dependency",
					Detail:   fmt.Sprintf("%s cannot depend on itself.", a.Ref()),
					Subject:  a.Range(p),
				})
			case !ok:
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown dependency",
					Detail:   fmt.Sprintf("%s depends on %s, which does not exist.", a.Ref(), dep),
					Subject:  a.Range(p),
				})
			}
		}

		for _, ts := range a.Templates {
			refs, _ := ts.Template.ActionRefs()
			for _, ref := range refs {
				diags = append(diags, checkOutputRef(src, index, a, ref)...)
			}
		}
	}
	return diags
}

func checkOutputRef(src SchemaSource, index map[Reference]*Action, from *Action, ref template.ActionRef) hcl.Diagnostics {
	target := Reference{Kind: ref.Kind, Name: ref.Name}
	subject := ref.Range.Ptr()

	if target == from.Ref() {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid action reference",
			Detail:   fmt.Sprintf("%s cannot reference its own outputs.", from.Ref()),
			Subject:  subject,
		}}
	}

	a, ok := index[target]
	if !ok {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown action reference",
			Detail:   fmt.Sprintf("The template references %s, which does not exist.", target),
			Subject:  subject,
		}}
	}

	s, ok := src.Schema(a.Kind, a.Type)
	if ok && !s.HasOutput(ref.Field) {
		names := make([]string, 0)
		for _, o := range s.AllOutputs() {
			names = append(names, o.Name)
		}
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unknown output",
			Detail: fmt.Sprintf("%s actions of type %q have no output %q. Available outputs: %s.",
				a.Kind, a.Type, strings.Join(ref.Field, "."), strings.Join(names, ", ")),
			Subject: subject,
		}}
	}
	return nil
}

func findKey(keys []*schema.Key, name string) *schema.Key {
	for _, k := range keys {
		if k.Name == name {
			return k
		}
	}
	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "document"
	}
	return path
}
