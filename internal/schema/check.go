// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// IsTemplateValue reports whether v is a string holding a template
// expression. Such values are checked only after they have been resolved.
func IsTemplateValue(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return false
	}
	return strings.Contains(v.AsString(), "${")
}

// CheckValue reports whether v conforms to t. Null, unknown and template
// values always conform.
func CheckValue(t Type, v cty.Value) error {
	if v.IsNull() || !v.IsKnown() || IsTemplateValue(v) {
		return nil
	}
	ty := v.Type()

	switch t.Kind {
	case ValueAny:
		return nil
	case ValueString:
		if ty == cty.String {
			return nil
		}
	case ValueNumber:
		if ty == cty.Number {
			return nil
		}
	case ValueBoolean:
		if ty == cty.Bool {
			return nil
		}
	case ValueArray:
		if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
			if t.Elem == nil {
				return nil
			}
			idx := 0
			for it := v.ElementIterator(); it.Next(); idx++ {
				_, ev := it.Element()
				if err := CheckValue(*t.Elem, ev); err != nil {
					return fmt.Errorf("element %d: %w", idx, err)
				}
			}
			return nil
		}
	case ValueObject:
		if ty.IsObjectType() || ty.IsMapType() {
			if t.Elem == nil {
				return nil
			}
			for it := v.ElementIterator(); it.Next(); {
				k, ev := it.Element()
				if err := CheckValue(*t.Elem, ev); err != nil {
					return fmt.Errorf("attribute %q: %w", k.AsString(), err)
				}
			}
			return nil
		}
	case ValueUnion:
		for _, variant := range t.Variants {
			if CheckValue(variant, v) == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("expected %s, got %s", t.String(), friendlyName(ty))
}

// CheckAllowed reports whether v is one of the key's allowed values.
func CheckAllowed(k *Key, v cty.Value) error {
	if len(k.AllowedValues) == 0 || v.IsNull() || !v.IsKnown() || IsTemplateValue(v) {
		return nil
	}
	for _, allowed := range k.AllowedValues {
		if v.RawEquals(allowed) {
			return nil
		}
	}
	return fmt.Errorf("value must be one of %s", FormatValues(k.AllowedValues))
}

// FormatValues renders values as a comma separated list of literals, e.g.
// `"TCP", "UDP"`.
func FormatValues(values []cty.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatValue(v)
	}
	return strings.Join(parts, ", ")
}

// FormatValue renders a known value as a compact JSON literal, which is also
// valid YAML flow syntax.
func FormatValue(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() {
		return "null"
	}
	out, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(out)
}

func friendlyName(ty cty.Type) string {
	switch {
	case ty == cty.Bool:
		return "boolean"
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		return "array"
	case ty.IsObjectType() || ty.IsMapType():
		return "object"
	default:
		return ty.FriendlyName()
	}
}
