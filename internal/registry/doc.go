// Package registry provides the central "glue" for the provider module system.
//
// The Registry stores the schema manifests that provider modules embed, the
// schemas parsed from them, and the compiled Go functions that compute the
// type-specific outputs of each action type. It also satisfies
// actions.SchemaSource, so the action validator can look types up directly.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code and the public-facing manifests are perfectly in
// sync, preventing a wide class of runtime errors.
package registry
