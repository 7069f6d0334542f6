// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema provides the Go representation of an action type's
// configuration surface: its configuration keys (name, type, default,
// required flag, description, nested children) and the output keys it exposes
// to template strings.
//
// # Core Concepts
//
//   - Kind: one of Build, Deploy, Run or Test. Every action has exactly one.
//
//   - ActionSchema: the contract of one action type for one kind, e.g. the
//     `container` Run. It lists the type-specific `spec` keys and outputs.
//
//   - Key: a leaf or nested configuration key. Nested keys live under an
//     `object` key, or under an `array[object]` key where they describe the
//     array's elements.
//
//   - Output: a value computed for an action and exposed via
//     `${actions.<kind>.<name>.<field>}`.
//
// The base keys shared by every action (apiVersion, kind, type, name, ...)
// are defined in Go rather than in manifests, so the manifest of a provider
// only has to describe its own `spec` block.
package schema
