package integration_tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/actionref/internal/testutil/apptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLI_SettingsFileIsMerged validates that actionref.yaml in the project
// root is picked up, and that a flag wins over it.
func TestCLI_SettingsFileIsMerged(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"actionref.yaml": `
			docs-dir: site/actions
			workers: 2
		`,
	}

	t.Run("settings file", func(t *testing.T) {
		t.Parallel()

		// --- Act ---
		result := apptest.Run(t, files, "docs", "generate", "-project", apptest.ProjectPlaceholder)

		// --- Assert ---
		require.NoError(t, result.Err)
		_, err := os.Stat(filepath.Join(result.Dir, "site", "actions", "README.md"))
		require.NoError(t, err, "pages are written to the configured docs-dir")
		assert.Contains(t, result.Output, filepath.Join(result.Dir, "site", "actions"))
	})

	t.Run("flag wins over settings file", func(t *testing.T) {
		t.Parallel()

		// --- Act ---
		result := apptest.Run(t, files, "docs", "generate", "-project", apptest.ProjectPlaceholder, "-log-level", "debug", "-log-format", "json")

		// --- Assert ---
		require.NoError(t, result.Err)
		assert.Contains(t, result.Logs, `"level":"DEBUG"`)
	})
}

// TestCLI_ExplicitSettingsFile validates that -config replaces the lookup in
// the project root.
func TestCLI_ExplicitSettingsFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"actionref.yaml": `docs-dir: ignored`,
		"ci/settings.yaml": `
			docs-dir: from-ci
		`,
	}

	// --- Act ---
	result := apptest.Run(t, files,
		"docs", "generate",
		"-project", apptest.ProjectPlaceholder,
		"-config", filepath.Join(apptest.ProjectPlaceholder, "ci", "settings.yaml"),
	)

	// --- Assert ---
	require.NoError(t, result.Err)
	_, err := os.Stat(filepath.Join(result.Dir, "from-ci", "README.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(result.Dir, "ignored"))
	assert.True(t, os.IsNotExist(err))
}
