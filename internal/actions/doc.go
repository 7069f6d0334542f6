// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package actions loads action configurations from a project's YAML files and
// validates them against the registered action type schemas.
//
// Action configs live in files named `garden.yml` or `*.garden.yml` anywhere
// below the project root. A file may hold several YAML documents separated by
// `---`; documents whose `kind` is one of Build, Deploy, Run or Test are
// actions, a `kind: Project` document supplies project-level settings and any
// other known kind is ignored.
//
// Loading and validation are separate steps. Load only parses and records
// positions; Validate checks every action against its schema, applies
// defaults and fills in the typed fields of Action.
package actions
