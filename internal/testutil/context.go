package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/actionref/internal/ctxlog"
)

// Context returns the test's context carrying a logger that drops every
// record.
func Context(t testing.TB) context.Context {
	t.Helper()
	return ctxlog.WithLogger(t.Context(), slog.New(slog.DiscardHandler))
}
