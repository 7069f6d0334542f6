// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Key defines a single configuration key of an action.
type Key struct {
	// Name is the key as written in YAML, e.g. "containerPort".
	Name string

	// Type is the value type that this key is expected to have.
	Type Type

	// Description is a markdown string that describes the key's purpose.
	Description string

	// Default is used when the key is omitted. A default never makes a key
	// required or optional on its own; see Required.
	Default *cty.Value

	// Required keys must be present in every action of the type.
	Required bool

	// AllowedValues, when set, restricts the key to one of the listed values.
	AllowedValues []cty.Value

	// Example is rendered in the reference documentation.
	Example *cty.Value

	Deprecated bool

	// Children are the nested keys of an object, or of each element of an
	// array of objects. Order is significant for documentation.
	Children []*Key
}

// Child returns the nested key with the given name.
func (k *Key) Child(name string) *Key {
	return findKey(k.Children, name)
}

// Output defines a single output value of an action.
type Output struct {
	// Name is the accessor below the action, e.g. "version" or
	// "outputs.deploymentImageId". A trailing ".*" marks a map accessor.
	Name        string
	Type        Type
	Description string
}

// IsWildcard reports whether the output is a map accessor such as `var.*`.
// A type-specific output named "*" stands for any `outputs.<name>`.
func (o *Output) IsWildcard() bool {
	return o.Name == "*" || strings.HasSuffix(o.Name, ".*")
}

// ActionSchema is the configuration contract of one action type for one kind.
type ActionSchema struct {
	Kind        Kind
	Type        string
	Provider    string
	Description string
	DocsURL     string

	// Spec lists the type-specific keys nested under `spec`.
	Spec []*Key

	// Outputs lists the type-specific outputs, named without the `outputs.`
	// prefix.
	Outputs []*Output

	SourceFile string
}

// ID returns the registry identifier, e.g. "Run.container".
func (s *ActionSchema) ID() string {
	return string(s.Kind) + "." + s.Type
}

// AllKeys returns the base keys for the kind followed by a `spec` object
// holding the type-specific keys.
func (s *ActionSchema) AllKeys() []*Key {
	keys := BaseKeys(s.Kind)
	return append(keys, &Key{
		Name:        "spec",
		Type:        Object,
		Description: "The spec for the specific action type.",
		Children:    s.Spec,
	})
}

// AllOutputs returns the common outputs followed by the type-specific ones.
// When the type declares no outputs of its own, the generic `outputs.*`
// accessor is documented instead.
func (s *ActionSchema) AllOutputs() []*Output {
	common := CommonOutputs(s.Kind)
	if len(s.Outputs) == 0 {
		return common
	}

	all := make([]*Output, 0, len(common)+len(s.Outputs))
	for _, o := range common {
		if o.Name == "outputs.*" {
			continue
		}
		all = append(all, o)
	}
	for _, o := range s.Outputs {
		all = append(all, &Output{
			Name:        "outputs." + o.Name,
			Type:        o.Type,
			Description: o.Description,
		})
	}
	return all
}

// HasOutput reports whether a template accessor below an action, split on
// dots (e.g. ["outputs", "log"]), resolves to a declared output.
func (s *ActionSchema) HasOutput(field []string) bool {
	// The action itself and the whole outputs map are always addressable.
	if len(field) == 0 || (len(field) == 1 && field[0] == "outputs") {
		return true
	}
	for _, o := range s.AllOutputs() {
		if o.IsWildcard() {
			if field[0] == strings.TrimSuffix(o.Name, ".*") {
				return true
			}
			continue
		}
		name := strings.Split(o.Name, ".")
		switch {
		case len(field) == len(name) && equalStrings(field, name):
			return true
		case len(field) > len(name) && equalStrings(field[:len(name)], name):
			// Only structured outputs may be traversed further.
			if o.Type.Kind == ValueObject || o.Type.Kind == ValueAny {
				return true
			}
		}
	}
	return false
}

// SpecKey returns the top-level spec key with the given name.
func (s *ActionSchema) SpecKey(name string) *Key {
	return findKey(s.Spec, name)
}

func findKey(keys []*Key, name string) *Key {
	for _, k := range keys {
		if k.Name == name {
			return k
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
