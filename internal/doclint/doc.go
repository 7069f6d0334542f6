// Package doclint checks that reference pages are consistent with
// themselves and, when available, with the schema they document.
//
// Pages are parsed with goldmark. The YAML block under "Configuration Keys"
// is flattened into key paths with the same `.` and `[]` rules the docs
// generator uses, so both sides agree on one spelling per key.
package doclint
