// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxNameLength is the longest accepted action or action type name.
const MaxNameLength = 63

var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateName checks an action name or an action type against the
// identifier rule. Type names end up in file paths of the reference docs, so
// both share it.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name must not be empty")
	case len(name) > MaxNameLength:
		return fmt.Errorf("name %q is longer than %d characters", name, MaxNameLength)
	case !nameRegex.MatchString(name):
		return fmt.Errorf("name %q may only contain lowercase letters, digits, '-' and '_', and must start with a letter or digit", name)
	case strings.HasSuffix(name, "-"):
		return fmt.Errorf("name %q must not end with '-'", name)
	case strings.Contains(name, "--"):
		return fmt.Errorf("name %q must not contain consecutive dashes", name)
	}
	return nil
}
