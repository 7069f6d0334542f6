package keypath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex is used to parse a single segment of a path, e.g. `name` or `name[]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_$-]+)(\[\])?$`)

// Parse creates a Path by parsing its canonical string representation.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("key path cannot be empty")
	}

	var p Path
	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("key path contains empty segment")
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid key path segment format: %q", segmentStr)
		}
		if matches[1] == "-" {
			return nil, fmt.Errorf("invalid key name: %q", matches[1])
		}
		p = append(p, Segment{Name: matches[1], Array: matches[2] != ""})
	}

	return p, nil
}

// String serializes the Path into its canonical representation.
func (p Path) String() string {
	var sb strings.Builder
	for i, segment := range p {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.Array {
			sb.WriteString("[]")
		}
	}
	return sb.String()
}

// Equal checks two paths segment by segment.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Anchor returns the GitHub-style heading anchor for a heading whose text is
// the path in a code span, e.g. `spec.ports[]` becomes "specports".
func (p Path) Anchor() string {
	return Slug(p.String())
}

// Slug lowercases s and strips every character that GitHub drops when it
// derives a heading anchor. Spaces become dashes.
func Slug(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}
