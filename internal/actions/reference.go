// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package actions

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Reference identifies an action by kind and name.
type Reference struct {
	Kind schema.Kind
	Name string
}

// String returns the `<kind>.<name>` form, e.g. "build.api".
func (r Reference) String() string {
	return r.Kind.Namespace() + "." + r.Name
}

// Less orders references by kind, then name.
func (r Reference) Less(other Reference) bool {
	if r.Kind != other.Kind {
		return r.Kind.Order() < other.Kind.Order()
	}
	return r.Name < other.Name
}

// ParseReference accepts either a `<kind>.<name>` string or a
// `{ kind, name }` object.
func ParseReference(v cty.Value) (Reference, error) {
	if v.IsNull() || !v.IsKnown() {
		return Reference{}, fmt.Errorf("action reference must not be null")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return ParseReferenceString(v.AsString())
	case ty.IsObjectType() || ty.IsMapType():
		kind, err := stringAttr(v, "kind")
		if err != nil {
			return Reference{}, err
		}
		name, err := stringAttr(v, "name")
		if err != nil {
			return Reference{}, err
		}
		return newReference(kind, name)
	default:
		return Reference{}, fmt.Errorf("action reference must be a string like \"build.api\" or an object with kind and name, got %s", ty.FriendlyName())
	}
}

// ParseReferenceString parses the `<kind>.<name>` form.
func ParseReferenceString(s string) (Reference, error) {
	kind, name, ok := strings.Cut(s, ".")
	if !ok {
		return Reference{}, fmt.Errorf("invalid action reference %q: expected <kind>.<name>", s)
	}
	return newReference(kind, name)
}

func newReference(kind, name string) (Reference, error) {
	k, err := schema.ParseKind(kind)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid action reference: %w", err)
	}
	if err := schema.ValidateName(name); err != nil {
		return Reference{}, fmt.Errorf("invalid action reference: %w", err)
	}
	return Reference{Kind: k, Name: name}, nil
}

func stringAttr(v cty.Value, name string) (string, error) {
	var attr cty.Value
	if v.Type().IsMapType() {
		if !v.HasIndex(cty.StringVal(name)).True() {
			return "", fmt.Errorf("action reference object is missing %q", name)
		}
		attr = v.Index(cty.StringVal(name))
	} else {
		if !v.Type().HasAttribute(name) {
			return "", fmt.Errorf("action reference object is missing %q", name)
		}
		attr = v.GetAttr(name)
	}
	if attr.IsNull() || !attr.IsKnown() || attr.Type() != cty.String {
		return "", fmt.Errorf("action reference %q must be a string", name)
	}
	return attr.AsString(), nil
}
