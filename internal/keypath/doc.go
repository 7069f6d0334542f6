/*
Package keypath provides a structured representation for configuration key
paths as they appear in reference documentation and lint findings.

The format is a dot-separated sequence of key names, where a trailing `[]`
marks a key whose value is an array, e.g. `spec.ports[].containerPort`.

The docs generator and the doc linter both flatten schemas and YAML blocks
into these paths, so they must agree on exactly one spelling per key.
*/
package keypath
