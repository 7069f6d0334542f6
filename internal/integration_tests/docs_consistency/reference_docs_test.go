package integration_tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/actionref/internal/app"
	"github.com/specialistvlad/actionref/internal/testutil/apptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocsConsistency_GeneratedPagesLintClean validates that the pages written
// by docs generate pass docs lint with no findings.
func TestDocsConsistency_GeneratedPagesLintClean(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"actionref.yaml": `docs-dir: reference`,
	}
	generated := apptest.Run(t, files, "docs", "generate", "-project", apptest.ProjectPlaceholder)
	require.NoError(t, generated.Err)
	docsDir := filepath.Join(generated.Dir, "reference")

	// --- Act ---
	linted := apptest.RunInDir(t.Context(), t, generated.Dir, nil, "docs", "lint", "-project", generated.Dir, docsDir)

	// --- Assert ---
	require.NoError(t, linted.Err, linted.Output)
	assert.Contains(t, linted.Output, "No findings in "+docsDir)
	assert.NotContains(t, linted.Output, ".md:")
}

// TestDocsConsistency_StalePagesAreDetected validates the generate, check and
// lint commands end to end, including a page that no action type generates.
func TestDocsConsistency_StalePagesAreDetected(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"actionref.yaml": `docs-dir: reference`,
	}
	generated := apptest.Run(t, files, "docs", "generate", "-project", apptest.ProjectPlaceholder)
	require.NoError(t, generated.Err)
	dir := generated.Dir
	docsDir := filepath.Join(dir, "reference")

	checked := apptest.RunInDir(t.Context(), t, dir, nil, "docs", "check", "-project", dir)
	require.NoError(t, checked.Err)

	stray := filepath.Join(docsDir, "Run", "legacy.md")
	require.NoError(t, os.WriteFile(stray, []byte("# `legacy` Run\n"), 0o644))

	// --- Act ---
	checked = apptest.RunInDir(t.Context(), t, dir, nil, "docs", "check", "-project", dir)
	linted := apptest.RunInDir(t.Context(), t, dir, nil, "docs", "lint", docsDir)

	// --- Assert ---
	require.Error(t, checked.Err)
	assert.Contains(t, checked.Err.Error(), "is not generated by any action type")
	assert.Contains(t, checked.Err.Error(), "actionref docs generate")

	require.ErrorIs(t, linted.Err, app.ErrFindings)
	assert.Contains(t, linted.Output, stray)
	assert.Contains(t, linted.Output, "no registered action type Run.legacy")
}
