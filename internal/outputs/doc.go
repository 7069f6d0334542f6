// Package outputs computes the values that `${actions.<kind>.<name>...}`
// templates resolve to.
//
// Actions are visited in dependency order. For each action the common
// outputs (name, version, buildPath, ...) are derived from its config, its
// template strings are evaluated against the actions resolved before it, and
// the type-specific outputs are computed by the output resolver registered
// for its type.
package outputs
