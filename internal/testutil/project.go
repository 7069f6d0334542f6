package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// DefaultProjectConfig is written as project.garden.yml when a test project
// does not bring its own.
const DefaultProjectConfig = `apiVersion: garden.io/v2
kind: Project
name: test-project
environments:
  - name: local
`

// ProjectConfigFile is the name of the project document's file.
const ProjectConfigFile = "project.garden.yml"

// WriteFiles writes files below dir. Keys are slash-separated relative paths;
// contents are unindented first so tests can use indented literals.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(Unindent(content)+"\n"), 0o644))
	}
}

// NewProject creates a project directory holding files, plus a default
// project config if files has none, and returns its path.
func NewProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if _, ok := files[ProjectConfigFile]; !ok {
		WriteFiles(t, dir, map[string]string{ProjectConfigFile: DefaultProjectConfig})
	}
	WriteFiles(t, dir, files)
	return dir
}

// Unindent removes common leading whitespace from a multi-line string,
// allowing for readable, indented YAML snippets in Go tests. Leading and
// trailing blank lines are dropped.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")

	// Remove leading/trailing empty lines that are common with multi-line literals
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	// Find the minimum indentation of non-empty lines
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimSpace(line)
		}
	}
	return strings.Join(lines, "\n")
}
