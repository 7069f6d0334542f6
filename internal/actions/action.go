// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package actions

import (
	"math/big"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/template"
	"github.com/zclconf/go-cty/cty"
)

// FSInfo records where an action was defined.
type FSInfo struct {
	// File is the path of the config file.
	File string
	// Dir is the directory holding File.
	Dir string
	// Line is the line of the document's first key.
	Line int
}

// Source is the decoded `source` key.
type Source struct {
	Path          string
	RepositoryURL string
}

// Varfile is one entry of the `varfiles` key.
type Varfile struct {
	Path     string
	Optional bool
}

// TemplateString is a string value in the action's config that holds a
// template, e.g. `spec.image: ${actions.build.api.outputs.deploymentImageId}`.
type TemplateString struct {
	// Path is the value's location, e.g. "spec.args[1]".
	Path     string
	Value    string
	Template *template.Template
}

// Action is one Build, Deploy, Run or Test document.
//
// Load sets Kind, Type, Name, Raw and FSInfo. Everything else is filled in by
// Validate.
type Action struct {
	Kind         schema.Kind
	Type         string
	Name         string
	Description  string
	Disabled     bool
	Dependencies []Reference
	Build        string
	Include      []string
	Exclude      []string
	Variables    map[string]cty.Value
	Varfiles     []Varfile
	Timeout      int
	Source       Source

	// Spec is the type-specific config with defaults applied.
	Spec cty.Value

	// Raw is the whole document as written. After validation it also holds
	// the defaults.
	Raw cty.Value

	FSInfo    FSInfo
	Templates []TemplateString

	pos positions
}

// Ref returns the reference that identifies the action.
func (a *Action) Ref() Reference {
	return Reference{Kind: a.Kind, Name: a.Name}
}

// Pos returns the position of the value at path, falling back to the closest
// parent that has a recorded position.
func (a *Action) Pos(path string) hcl.Pos {
	for {
		if p, ok := a.pos[path]; ok {
			return p
		}
		if path == "" {
			return hcl.Pos{Line: a.FSInfo.Line, Column: 1}
		}
		path = parentPath(path)
	}
}

// PosOf is Pos for a cty.Path.
func (a *Action) PosOf(p cty.Path) hcl.Pos {
	return a.Pos(template.FormatPath(p))
}

// Range returns a single-line source range for the value at path.
func (a *Action) Range(path string) *hcl.Range {
	start := a.Pos(path)
	end := start
	end.Column++
	return &hcl.Range{Filename: a.FSInfo.File, Start: start, End: end}
}

// SourceDir is the directory the action's sources live in.
func (a *Action) SourceDir() string {
	if a.Source.Path == "" {
		return a.FSInfo.Dir
	}
	return filepath.Join(a.FSInfo.Dir, filepath.FromSlash(a.Source.Path))
}

// SpecAttr returns the named top-level spec value, or a null value.
func (a *Action) SpecAttr(name string) cty.Value {
	if a.Spec.IsNull() || !a.Spec.IsKnown() || !a.Spec.Type().IsObjectType() {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if !a.Spec.Type().HasAttribute(name) {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return a.Spec.GetAttr(name)
}

// SpecString returns the named spec value if it is a known string.
func (a *Action) SpecString(name string) string {
	return asString(a.SpecAttr(name))
}

func asString(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}

func asBool(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Bool {
		return false
	}
	return v.True()
}

func asInt(v cty.Value) int {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return 0
	}
	i, _ := v.AsBigFloat().Int(new(big.Int))
	return int(i.Int64())
}

func asStrings(v cty.Value) []string {
	if v.IsNull() || !v.IsKnown() || !v.CanIterateElements() {
		return nil
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if s := asString(ev); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func attr(v cty.Value, name string) cty.Value {
	if v.IsNull() || !v.IsKnown() || !v.Type().IsObjectType() || !v.Type().HasAttribute(name) {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return v.GetAttr(name)
}

// parentPath trims the last segment of a formatted value path.
func parentPath(path string) string {
	i := strings.LastIndexAny(path, ".[")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
