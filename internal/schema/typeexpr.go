// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file contains the logic for parsing manifest type expressions (e.g.
// `string`, `list(object)`, `union(string, number)`) into Type values.

package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// ParseTypeExpr converts a manifest type expression into its Type equivalent.
//
// Supported keywords are string, number, bool (or boolean), object and any.
// Supported constructors are list(T), array(T), map(T) and union(T1, T2, ...).
func ParseTypeExpr(expr hcl.Expression) (Type, hcl.Diagnostics) {
	if expr == nil {
		return Any, nil
	}

	if keyword := hcl.ExprAsKeyword(expr); keyword != "" {
		switch keyword {
		case "string":
			return String, nil
		case "number":
			return Number, nil
		case "bool", "boolean":
			return Boolean, nil
		case "object":
			return Object, nil
		case "any":
			return Any, nil
		default:
			return Any, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported type",
				Detail:   fmt.Sprintf("The keyword '%s' is not a valid type. Supported types are: string, number, bool, object, any.", keyword),
				Subject:  expr.Range().Ptr(),
			}}
		}
	}

	call, callDiags := hcl.ExprCall(expr)
	if callDiags.HasErrors() {
		return Any, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "A type must be a keyword like 'string' or a constructor like 'list(string)'.",
			Subject:  expr.Range().Ptr(),
		}}
	}

	var diags hcl.Diagnostics
	args := make([]Type, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		argType, argDiags := ParseTypeExpr(argExpr)
		diags = append(diags, argDiags...)
		args = append(args, argType)
	}
	if diags.HasErrors() {
		return Any, diags
	}

	switch call.Name {
	case "list", "array", "map":
		if len(args) != 1 {
			return Any, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid type specification",
				Detail:   fmt.Sprintf("The '%s' type constructor requires exactly one argument, got %d.", call.Name, len(args)),
				Subject:  call.ArgsRange.Ptr(),
			})
		}
		if call.Name == "map" {
			return MapOf(args[0]), diags
		}
		return ArrayOf(args[0]), diags
	case "union":
		if len(args) < 2 {
			return Any, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid type specification",
				Detail:   "The 'union' type constructor requires at least two arguments.",
				Subject:  call.ArgsRange.Ptr(),
			})
		}
		return UnionOf(args...), diags
	default:
		return Any, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type constructor",
			Detail:   fmt.Sprintf("Unknown type constructor %q. Supported constructors are: list, array, map, union.", call.Name),
			Subject:  call.NameRange.Ptr(),
		})
	}
}
