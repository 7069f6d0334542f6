package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"api", "my-api", "api_v2", "0day", "docker-compose-run", strings.Repeat("a", MaxNameLength)} {
		require.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", "-api", "API", "api-", "my--api", "my.api", "my api", "../../escaped", "a/b", strings.Repeat("a", MaxNameLength+1)} {
		require.Error(t, ValidateName(name), name)
	}
}
