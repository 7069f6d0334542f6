// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"fmt"
	"strings"
)

// Kind is the kind of an action.
type Kind string

const (
	KindBuild  Kind = "Build"
	KindDeploy Kind = "Deploy"
	KindRun    Kind = "Run"
	KindTest   Kind = "Test"
)

// Kinds lists every action kind in documentation order.
var Kinds = []Kind{KindBuild, KindDeploy, KindRun, KindTest}

// ParseKind parses an action kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action kind %q: must be one of Build, Deploy, Run, Test", s)
}

// Namespace returns the lowercase form used in template strings, e.g. "build"
// in `${actions.build.api.version}`.
func (k Kind) Namespace() string {
	return strings.ToLower(string(k))
}

// Order returns the position of the kind in Kinds, or len(Kinds) for an
// unknown kind.
func (k Kind) Order() int {
	for i, known := range Kinds {
		if known == k {
			return i
		}
	}
	return len(Kinds)
}
