// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file parses `field` and `output` blocks. A field is the manifest form
// of a configuration key: it carries a type, documentation, an optional
// literal default, an optional list of allowed values and nested fields for
// object-shaped values.

package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// fieldBodySchema is the HCL schema for the body of a `field` block.
var fieldBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
		{Name: "required"},
		{Name: "allowed_values"},
		{Name: "example"},
		{Name: "deprecated"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
	},
}

// outputBodySchema is the HCL schema for the body of an `output` block.
var outputBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "description"},
	},
}

// parseFields decodes all 'field' blocks, recursing into nested fields. The
// order of the blocks is preserved.
func parseFields(blocks hcl.Blocks) ([]*schema.Key, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var keys []*schema.Key
	seen := make(map[string]bool)

	for _, block := range blocks.OfType("field") {
		// The schema guarantees us one label.
		name := block.Labels[0]

		if seen[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate field definition",
				Detail:   fmt.Sprintf("A field named '%s' has already been defined at this level.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = true

		key, keyDiags := parseField(block)
		diags = append(diags, keyDiags...)
		if key != nil {
			keys = append(keys, key)
		}
	}

	return keys, diags
}

func parseField(block *hcl.Block) (*schema.Key, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	name := block.Labels[0]

	content, contentDiags := block.Body.Content(fieldBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	typeAttr, exists := content.Attributes["type"]
	if !exists {
		missingItemRange := block.Body.MissingItemRange()
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'type' attribute",
			Detail:   "The 'type' attribute is required for all field blocks.",
			Subject:  &missingItemRange,
		})
	}

	typ, typeDiags := schema.ParseTypeExpr(typeAttr.Expr)
	diags = append(diags, typeDiags...)
	if typeDiags.HasErrors() {
		return nil, diags
	}

	key := &schema.Key{Name: name, Type: typ}
	diags = append(diags, decodeString(content.Attributes, "description", &key.Description)...)
	diags = append(diags, decodeBool(content.Attributes, "required", &key.Required)...)
	diags = append(diags, decodeBool(content.Attributes, "deprecated", &key.Deprecated)...)

	if attr, exists := content.Attributes["allowed_values"]; exists {
		allowed, allowedDiags := parseAllowedValues(name, typ, attr)
		diags = append(diags, allowedDiags...)
		key.AllowedValues = allowed
	}

	if attr, exists := content.Attributes["default"]; exists {
		// A nil eval context is used because defaults must be literal values.
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			switch err := schema.CheckValue(typ, val); {
			case err != nil:
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value type",
					Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s': %s.", name, typ, err),
					Subject:  attr.Expr.Range().Ptr(),
				})
			case schema.CheckAllowed(key, val) != nil:
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value",
					Detail:   fmt.Sprintf("The default value for '%s' is not one of its allowed values.", name),
					Subject:  attr.Expr.Range().Ptr(),
				})
			default:
				key.Default = &val
			}
		}
	}

	if attr, exists := content.Attributes["example"]; exists {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			key.Example = &val
		}
	}

	nested := content.Blocks.OfType("field")
	if len(nested) > 0 {
		if !typ.HoldsObjects() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected nested fields",
				Detail:   fmt.Sprintf("The field '%s' has type '%s'; nested fields require an object or an array of objects.", name, typ),
				Subject:  &nested[0].DefRange,
			})
		} else {
			children, childDiags := parseFields(nested)
			diags = append(diags, childDiags...)
			key.Children = children
		}
	}

	return key, diags
}

// parseAllowedValues evaluates a literal list and checks that every entry
// conforms to the field's type.
func parseAllowedValues(name string, typ schema.Type, attr *hcl.Attribute) ([]cty.Value, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}

	ty := val.Type()
	if val.IsNull() || !(ty.IsTupleType() || ty.IsListType() || ty.IsSetType()) {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid allowed_values",
			Detail:   fmt.Sprintf("The allowed_values of '%s' must be a list.", name),
			Subject:  attr.Expr.Range().Ptr(),
		})
	}

	var allowed []cty.Value
	idx := 0
	for it := val.ElementIterator(); it.Next(); idx++ {
		_, ev := it.Element()
		if err := schema.CheckValue(typ, ev); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid allowed_values",
				Detail:   fmt.Sprintf("Entry %d of the allowed_values of '%s' is not compatible with its type, '%s'.", idx, name, typ),
				Subject:  attr.Expr.Range().Ptr(),
			})
			continue
		}
		allowed = append(allowed, ev)
	}
	return allowed, diags
}

// parseOutputs decodes all 'output' blocks of an action.
func parseOutputs(blocks hcl.Blocks) ([]*schema.Output, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var outputs []*schema.Output
	seen := make(map[string]bool)

	for _, block := range blocks.OfType("output") {
		name := block.Labels[0]
		if seen[name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate output definition",
				Detail:   fmt.Sprintf("An output named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = true

		content, contentDiags := block.Body.Content(outputBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := content.Attributes["type"]
		if !exists {
			missingItemRange := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all output blocks.",
				Subject:  &missingItemRange,
			})
			continue
		}

		typ, typeDiags := schema.ParseTypeExpr(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		out := &schema.Output{Name: name, Type: typ}
		diags = append(diags, decodeString(content.Attributes, "description", &out.Description)...)
		outputs = append(outputs, out)
	}

	return outputs, diags
}
