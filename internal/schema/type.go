// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ValueKind classifies a documented value type.
type ValueKind int

const (
	ValueAny ValueKind = iota
	ValueString
	ValueNumber
	ValueBoolean
	ValueObject
	ValueArray
	ValueUnion
)

// Type is the declared type of a configuration key or output.
//
// Elem is the element type of an array, or the value type of a map-like
// object. Variants holds the alternatives of a union.
type Type struct {
	Kind     ValueKind
	Elem     *Type
	Variants []Type
}

var (
	Any     = Type{Kind: ValueAny}
	String  = Type{Kind: ValueString}
	Number  = Type{Kind: ValueNumber}
	Boolean = Type{Kind: ValueBoolean}
	Object  = Type{Kind: ValueObject}
)

// ArrayOf returns an array type with the given element type.
func ArrayOf(elem Type) Type {
	return Type{Kind: ValueArray, Elem: &elem}
}

// MapOf returns an object type whose attribute values all have the given type.
func MapOf(elem Type) Type {
	return Type{Kind: ValueObject, Elem: &elem}
}

// UnionOf returns a type that accepts a value matching any of the variants.
func UnionOf(variants ...Type) Type {
	return Type{Kind: ValueUnion, Variants: variants}
}

// String renders the type the way reference pages show it, e.g.
// `array[string]` or `string | object`.
func (t Type) String() string {
	switch t.Kind {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBoolean:
		return "boolean"
	case ValueObject:
		return "object"
	case ValueArray:
		if t.Elem == nil {
			return "array"
		}
		return "array[" + t.Elem.String() + "]"
	case ValueUnion:
		names := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			names[i] = v.String()
		}
		return strings.Join(names, " | ")
	default:
		return "any"
	}
}

// Equal reports whether two types are structurally identical.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || len(t.Variants) != len(other.Variants) {
		return false
	}
	if (t.Elem == nil) != (other.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*other.Elem) {
		return false
	}
	for i := range t.Variants {
		if !t.Variants[i].Equal(other.Variants[i]) {
			return false
		}
	}
	return true
}

// IsArray reports whether the type is an array.
func (t Type) IsArray() bool { return t.Kind == ValueArray }

// IsObject reports whether the type is an object.
func (t Type) IsObject() bool { return t.Kind == ValueObject }

// HoldsObjects reports whether nested keys can describe values of this type,
// i.e. it is an object or an array of objects.
func (t Type) HoldsObjects() bool {
	if t.IsObject() {
		return true
	}
	return t.IsArray() && t.Elem != nil && t.Elem.IsObject()
}

// Cty returns the closest cty type constraint. Objects, unions and anything
// with nested keys map to cty.DynamicPseudoType and are checked structurally.
func (t Type) Cty() cty.Type {
	switch t.Kind {
	case ValueString:
		return cty.String
	case ValueNumber:
		return cty.Number
	case ValueBoolean:
		return cty.Bool
	case ValueArray:
		if t.Elem == nil {
			return cty.List(cty.DynamicPseudoType)
		}
		return cty.List(t.Elem.Cty())
	default:
		return cty.DynamicPseudoType
	}
}
