package integration_tests

import (
	"testing"

	"github.com/specialistvlad/actionref/internal/testutil/apptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLI_DisplaysHelp validates that the help text is shown and the command
// exits cleanly for every spelling of the help flag.
func TestCLI_DisplaysHelp(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"-h", "--help", "help"} {
		t.Run(arg, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			result := apptest.Run(t, nil, arg)

			// --- Assert ---
			require.NoError(t, result.Err)
			assert.Contains(t, result.Output, "Usage:")
			assert.Contains(t, result.Output, "docs lint [DIR]")
			assert.Empty(t, result.Logs, "nothing is logged before the app starts")
		})
	}
}

func TestCLI_DisplaysCommandHelp(t *testing.T) {
	t.Parallel()

	// --- Act ---
	result := apptest.Run(t, nil, "resolve", "-h")

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "actionref resolve [options]")
	assert.Contains(t, result.Output, "-template")
}
