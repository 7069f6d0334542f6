// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the keys every action document carries regardless of its
// type, and the outputs every action exposes.

package schema

import (
	"github.com/zclconf/go-cty/cty"
)

// APIVersions lists the accepted values of the `apiVersion` key, oldest first.
var APIVersions = []string{"garden.io/v0", "garden.io/v1", "garden.io/v2"}

// DefaultAPIVersion is used when an action omits `apiVersion`.
const DefaultAPIVersion = "garden.io/v2"

// DefaultTimeout returns the default `timeout` in seconds for a kind.
func DefaultTimeout(kind Kind) int {
	if kind == KindDeploy {
		return 300
	}
	return 600
}

// dependencyType accepts `build.api` as well as `{ kind: Build, name: api }`.
var dependencyType = UnionOf(String, Object)

// BaseKeys returns the top-level keys shared by every action of the kind, in
// documentation order. The `spec` key is not included.
func BaseKeys(kind Kind) []*Key {
	kinds := make([]cty.Value, len(Kinds))
	for i, k := range Kinds {
		kinds[i] = cty.StringVal(string(k))
	}
	versions := make([]cty.Value, len(APIVersions))
	for i, v := range APIVersions {
		versions[i] = cty.StringVal(v)
	}

	keys := []*Key{
		{
			Name:          "apiVersion",
			Type:          String,
			Description:   "The schema version of this config.",
			Default:       ptr(cty.StringVal(DefaultAPIVersion)),
			AllowedValues: versions,
		},
		{
			Name:          "kind",
			Type:          String,
			Description:   "The kind of action you want to define (one of Build, Deploy, Run or Test).",
			Required:      true,
			AllowedValues: kinds,
		},
		{
			Name: "type",
			Type: String,
			Description: "The type of action, e.g. `exec`, `container` or `kubernetes`. Some are built into the tool " +
				"but mostly these will be defined by your configured providers.",
			Required: true,
		},
		{
			Name: "name",
			Type: String,
			Description: "A valid name for the action. Must be unique across all actions of the same kind in your " +
				"project.",
			Required: true,
		},
		{
			Name:        "description",
			Type:        String,
			Description: "A description of the action.",
		},
		{
			Name:        "source",
			Type:        Object,
			Description: "By default, the directory where the action is defined is used as the source for the build context.",
			Children: []*Key{
				{
					Name: "path",
					Type: String,
					Description: "A relative POSIX-style path to the source directory for this action. You must make sure " +
						"this path exists and is in a git repository!",
				},
				{
					Name:        "repository",
					Type:        Object,
					Description: "When set, the tool will import the action source from this repository.",
					Children: []*Key{
						{
							Name:        "url",
							Type:        String,
							Description: "A remote repository URL. Currently only supports git servers.",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name: "dependencies",
			Type: ArrayOf(dependencyType),
			Description: "A list of other actions that this action depends on, and should be built, deployed or run " +
				"before processing this action. Each dependency should generally be expressed as a `\"<kind>.<name>\"` " +
				"string, where `<kind>` is one of `build`, `deploy`, `run` or `test`, and `<name>` is the name of " +
				"the action to depend on. You may also optionally specify a dependency as an object, e.g. " +
				"`{ kind: \"Build\", name: \"some-image\" }`.",
			Default: ptr(cty.EmptyTupleVal),
		},
		{
			Name:        "disabled",
			Type:        Boolean,
			Description: "Set this to `true` to disable the action. Disabled actions are not executed.",
			Default:     ptr(cty.False),
		},
		{
			Name: "include",
			Type: ArrayOf(String),
			Description: "Specify a list of POSIX-style paths or globs that should be regarded as source files for " +
				"this action, and thus will affect the computed version of the action.",
			Example: ptr(cty.TupleVal([]cty.Value{cty.StringVal("my-app.js"), cty.StringVal("some-assets/**/*")})),
		},
		{
			Name: "exclude",
			Type: ArrayOf(String),
			Description: "Specify a list of POSIX-style paths or glob patterns that should be explicitly excluded " +
				"from the action's version.",
			Example: ptr(cty.TupleVal([]cty.Value{cty.StringVal("tmp/**/*"), cty.StringVal("*.log")})),
		},
		{
			Name:        "variables",
			Type:        Object,
			Description: "A map of variables scoped to this particular action. These are resolved before any other parts of the action configuration and take precedence over project-scoped variables.",
		},
		{
			Name: "varfiles",
			Type: ArrayOf(UnionOf(String, Object)),
			Description: "Specify a list of paths (relative to the directory where the action is defined) to a file " +
				"containing variables, that we apply on top of the action-level `variables` field. Files may be " +
				"dotenv, YAML or JSON files. Use `{ path, optional: true }` to tolerate a missing file.",
			Default: ptr(cty.EmptyTupleVal),
		},
	}

	if kind != KindBuild {
		keys = append(keys, &Key{
			Name: "build",
			Type: String,
			Description: "Specify a _Build_ action, and resolve this action from the context of that Build. The " +
				"action's source path becomes the Build's build path.",
		})
	}

	keys = append(keys, &Key{
		Name:        "timeout",
		Type:        Number,
		Description: "Timeout for the action, in seconds.",
		Default:     ptr(cty.NumberIntVal(int64(DefaultTimeout(kind)))),
	})

	return keys
}

// CommonOutputs returns the outputs every action of the kind exposes, in
// documentation order.
func CommonOutputs(kind Kind) []*Output {
	return []*Output{
		{Name: "name", Type: String, Description: "The name of the action."},
		{Name: "version", Type: String, Description: "The current version of the action."},
		{Name: "disabled", Type: Boolean, Description: "Whether the action is disabled."},
		{
			Name:        "buildPath",
			Type:        String,
			Description: "The build path of the action. For " + string(kind) + " actions without a `build` reference this is the source path.",
		},
		{Name: "path", Type: String, Description: "The source path of the action."},
		{Name: "sourcePath", Type: String, Description: "The source path of the action."},
		{Name: "mode", Type: String, Description: "The action mode in which the action is configured."},
		{Name: "var.*", Type: Any, Description: "The variables configured on the action."},
		{Name: "outputs.*", Type: Any, Description: "The outputs defined by the action."},
	}
}

func ptr(v cty.Value) *cty.Value {
	return &v
}
