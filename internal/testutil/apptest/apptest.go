// Package apptest runs actionref command lines in-process for integration
// tests.
package apptest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/specialistvlad/actionref/internal/app"
	"github.com/specialistvlad/actionref/internal/cli"
	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/testutil"
)

// ProjectPlaceholder in an argument is replaced with the project directory.
const ProjectPlaceholder = "$PROJECT"

// Result holds the outcomes of a command run.
type Result struct {
	Dir    string
	Output string
	Logs   string
	Err    error
}

// Run writes files into a new project and runs the command line against it
// with the core modules.
func Run(t *testing.T, files map[string]string, args ...string) *Result {
	t.Helper()
	return RunWithModules(t, files, nil, args...)
}

// RunWithModules is Run with an explicit module list; nil means the core
// modules.
func RunWithModules(t *testing.T, files map[string]string, modules []registry.Module, args ...string) *Result {
	t.Helper()
	dir := testutil.NewProject(t, files)
	return RunInDir(context.Background(), t, dir, modules, args...)
}

// RunInDir runs a command line against an existing project directory. A
// panic during startup is returned as an error, the way the binary reports
// it.
func RunInDir(ctx context.Context, t *testing.T, dir string, modules []registry.Module, args ...string) *Result {
	t.Helper()

	expanded := make([]string, len(args))
	for i, arg := range args {
		expanded[i] = strings.ReplaceAll(arg, ProjectPlaceholder, dir)
	}

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	res := &Result{Dir: dir}
	res.Err = func() (err error) {
		inv, shouldExit, err := cli.Parse(expanded, out)
		if err != nil || shouldExit {
			return err
		}

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		a, err := app.NewApp(out, logs, inv.Config, modules...)
		if err != nil {
			return err
		}
		return inv.Run(ctx, a)
	}()

	res.Output, res.Logs = out.String(), logs.String()
	if os.Getenv("ACTIONREF_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.Logs)
	}
	return res
}
