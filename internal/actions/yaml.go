// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file converts YAML nodes into cty values. Every value is recorded with
// the position of its key, so later stages can point diagnostics at the exact
// line of a config file.

package actions

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// positions maps a formatted value path (e.g. "spec.ports[0].name") to the
// position it was written at.
type positions map[string]hcl.Pos

type converter struct {
	filename string
	pos      positions
	// expanding holds the anchors of the aliases being converted.
	expanding map[*yaml.Node]bool
}

func newConverter(filename string) *converter {
	return &converter{filename: filename, pos: make(positions), expanding: make(map[*yaml.Node]bool)}
}

// alias converts the anchored node of an alias. An alias that refers to a
// node it is nested in is reported instead of followed.
func (c *converter) alias(n *yaml.Node, path string) (cty.Value, hcl.Diagnostics) {
	if n.Alias == nil || c.expanding[n.Alias] {
		return cty.NullVal(cty.DynamicPseudoType), hcl.Diagnostics{c.diag(n, "Recursive alias", fmt.Sprintf("The alias *%s refers to a node that contains it.", n.Value))}
	}
	c.expanding[n.Alias] = true
	defer delete(c.expanding, n.Alias)
	return c.convert(n.Alias, path)
}

func (c *converter) diag(n *yaml.Node, summary, detail string) *hcl.Diagnostic {
	start := hcl.Pos{Line: n.Line, Column: n.Column}
	end := hcl.Pos{Line: n.Line, Column: n.Column + 1}
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  &hcl.Range{Filename: c.filename, Start: start, End: end},
	}
}

// convert turns n into a cty value. Mappings become objects and sequences
// become tuples, so every element keeps its own type.
func (c *converter) convert(n *yaml.Node, path string) (cty.Value, hcl.Diagnostics) {
	if _, seen := c.pos[path]; !seen {
		c.pos[path] = hcl.Pos{Line: n.Line, Column: n.Column}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return c.convert(n.Content[0], path)
	case yaml.AliasNode:
		return c.alias(n, path)
	case yaml.MappingNode:
		return c.convertMapping(n, path)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		var diags hcl.Diagnostics
		elems := make([]cty.Value, len(n.Content))
		for i, item := range n.Content {
			v, itemDiags := c.convert(item, fmt.Sprintf("%s[%d]", path, i))
			diags = append(diags, itemDiags...)
			elems[i] = v
		}
		return cty.TupleVal(elems), diags
	case yaml.ScalarNode:
		return c.convertScalar(n)
	default:
		return cty.NullVal(cty.DynamicPseudoType), hcl.Diagnostics{c.diag(n, "Unsupported YAML node", fmt.Sprintf("Unexpected YAML node kind %d.", n.Kind))}
	}
}

func (c *converter) convertMapping(n *yaml.Node, path string) (cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	attrs := make(map[string]cty.Value)
	explicit := make(map[string]bool)

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		// Merge keys (`<<: *base`) contribute attributes that explicit keys
		// in the same mapping may override.
		if keyNode.ShortTag() == "!!merge" {
			merged, mergeDiags := c.convertMerge(valNode, path)
			diags = append(diags, mergeDiags...)
			for k, v := range merged {
				if !explicit[k] {
					attrs[k] = v
				}
			}
			continue
		}

		if keyNode.Kind != yaml.ScalarNode {
			diags = append(diags, c.diag(keyNode, "Invalid key", "Mapping keys must be strings."))
			continue
		}
		key := keyNode.Value
		if explicit[key] {
			diags = append(diags, c.diag(keyNode, "Duplicate key", fmt.Sprintf("The key %q is defined more than once.", key)))
			continue
		}
		explicit[key] = true

		p := key
		if path != "" {
			p = path + "." + key
		}
		c.pos[p] = hcl.Pos{Line: keyNode.Line, Column: keyNode.Column}

		v, valDiags := c.convert(valNode, p)
		diags = append(diags, valDiags...)
		attrs[key] = v
	}

	if len(attrs) == 0 {
		return cty.EmptyObjectVal, diags
	}
	return cty.ObjectVal(attrs), diags
}

func (c *converter) convertMerge(n *yaml.Node, path string) (map[string]cty.Value, hcl.Diagnostics) {
	if n.Kind == yaml.AliasNode {
		if n.Alias == nil || c.expanding[n.Alias] {
			return nil, hcl.Diagnostics{c.diag(n, "Recursive alias", fmt.Sprintf("The alias *%s refers to a node that contains it.", n.Value))}
		}
		c.expanding[n.Alias] = true
		defer delete(c.expanding, n.Alias)
		n = n.Alias
	}
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}

	var diags hcl.Diagnostics
	merged := make(map[string]cty.Value)
	// Earlier sources take precedence over later ones.
	for i := len(sources) - 1; i >= 0; i-- {
		v, srcDiags := c.convert(sources[i], path)
		diags = append(diags, srcDiags...)
		if v.IsNull() || !v.Type().IsObjectType() {
			diags = append(diags, c.diag(sources[i], "Invalid merge", "Only mappings can be merged with '<<'."))
			continue
		}
		for k, av := range v.AsValueMap() {
			merged[k] = av
		}
	}
	return merged, diags
}

func (c *converter) convertScalar(n *yaml.Node) (cty.Value, hcl.Diagnostics) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NullVal(cty.DynamicPseudoType), hcl.Diagnostics{c.diag(n, "Invalid boolean", err.Error())}
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return cty.NumberIntVal(i), nil
		}
		v, err := cty.ParseNumberVal(n.Value)
		if err != nil {
			return cty.NullVal(cty.DynamicPseudoType), hcl.Diagnostics{c.diag(n, "Invalid number", err.Error())}
		}
		return v, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NullVal(cty.DynamicPseudoType), hcl.Diagnostics{c.diag(n, "Invalid number", err.Error())}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NullVal(cty.DynamicPseudoType), hcl.Diagnostics{c.diag(n, "Invalid number", fmt.Sprintf("%q is not a finite number.", n.Value))}
		}
		return cty.NumberFloatVal(f), nil
	default:
		// Strings, timestamps and anything custom-tagged stay as written.
		return cty.StringVal(n.Value), nil
	}
}
