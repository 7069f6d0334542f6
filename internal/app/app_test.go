package app

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var projectFiles = map[string]string{
	testutil.ProjectConfigFile: `
		apiVersion: garden.io/v2
		kind: Project
		name: shop
		environments:
		  - name: local
		variables:
		  registry: localhost:5000
	`,
	"api/garden.yml": `
		kind: Build
		type: container
		name: api
		spec:
		  publishId: ${var.registry}/api
		---
		kind: Deploy
		type: container
		name: api
		build: api
		spec:
		  image: ${actions.build.api.outputs.deploymentImageId}
		  ports:
		    - name: http
		      containerPort: 8080
	`,
	"tests/garden.yml": `
		kind: Run
		type: exec
		name: seed
		dependencies: [deploy.api]
		spec:
		  command: [make, seed]
	`,
}

func setupApp(t *testing.T, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = "docs"
	}
	config, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	a, err := NewApp(out, logs, config, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("ACTIONREF_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	valid := Config{ProjectDir: ".", LogFormat: "text", LogLevel: "info", WorkerCount: 1}

	_, err := NewConfig(valid)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"project dir", func(c *Config) { c.ProjectDir = "" }, "ProjectDir is a required"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log-format"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log-level"},
		{"workers", func(c *Config) { c.WorkerCount = 0 }, "invalid workers"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			_, err := NewConfig(c)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestApp_Validate(t *testing.T) {
	t.Parallel()
	dir := testutil.NewProject(t, projectFiles)
	a, out, _ := setupApp(t, Config{ProjectDir: filepath.Join(dir, "api")})

	require.NoError(t, a.Validate(context.Background()))
	assert.Contains(t, out.String(), "3 action(s) in project shop are valid.")
}

func TestApp_Environment(t *testing.T) {
	t.Parallel()
	dir := testutil.NewProject(t, projectFiles)
	ctx := context.Background()

	t.Run("declared environment", func(t *testing.T) {
		a, out, _ := setupApp(t, Config{ProjectDir: dir, Environment: "local"})
		require.NoError(t, a.Validate(ctx))
		require.NoError(t, a.Graph(ctx))
		assert.Contains(t, out.String(), "build.api")
	})

	commands := map[string]func(*App) error{
		"validate": func(a *App) error { return a.Validate(ctx) },
		"graph":    func(a *App) error { return a.Graph(ctx) },
		"resolve":  func(a *App) error { return a.Resolve(ctx, "") },
	}
	for name, run := range commands {
		t.Run(name+" rejects an undeclared environment", func(t *testing.T) {
			a, out, _ := setupApp(t, Config{ProjectDir: dir, Environment: "prod"})
			err := run(a)
			require.ErrorIs(t, err, ErrUnknownEnvironment)
			assert.Contains(t, err.Error(), `"prod"`)
			assert.Contains(t, err.Error(), "declared: local")
			assert.Empty(t, out.String())
		})
	}
}

func TestApp_ValidateReportsDiagnostics(t *testing.T) {
	t.Parallel()
	dir := testutil.NewProject(t, map[string]string{
		"garden.yml": `
			kind: Deploy
			type: container
			name: api
			spec:
			  replicas: 2
		`,
	})
	a, out, logs := setupApp(t, Config{ProjectDir: dir})

	err := a.Validate(context.Background())
	require.ErrorContains(t, err, "configuration has 1 error(s)")
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Missing required key")
	assert.Contains(t, logs.String(), `The key "spec.image" is required`)
}

func TestApp_Graph(t *testing.T) {
	t.Parallel()
	dir := testutil.NewProject(t, projectFiles)
	a, out, _ := setupApp(t, Config{ProjectDir: dir})

	require.NoError(t, a.Graph(context.Background()))
	assert.Equal(t, strings.Join([]string{
		"build.api",
		"deploy.api <- build.api (build, template)",
		"run.seed <- deploy.api (dependency)",
	}, "\n")+"\n", out.String())
}

func TestApp_Resolve(t *testing.T) {
	t.Parallel()
	dir := testutil.NewProject(t, projectFiles)

	t.Run("template", func(t *testing.T) {
		a, out, _ := setupApp(t, Config{ProjectDir: dir})
		require.NoError(t, a.Resolve(context.Background(), "${actions.deploy.api.outputs.deployedImageId}"))
		assert.Regexp(t, regexp.MustCompile(`^localhost:5000/api:v-[0-9a-f]{10}\n$`), out.String())
	})

	t.Run("non-string values print as JSON", func(t *testing.T) {
		a, out, _ := setupApp(t, Config{ProjectDir: dir})
		require.NoError(t, a.Resolve(context.Background(), "${actions.run.seed.disabled}"))
		assert.Equal(t, "false\n", out.String())
	})

	t.Run("all actions", func(t *testing.T) {
		a, out, _ := setupApp(t, Config{ProjectDir: dir})
		require.NoError(t, a.Resolve(context.Background(), ""))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "build.api"))
		assert.Contains(t, lines[0], filepath.Join(".garden", "build", "api"))
	})

	t.Run("unknown output", func(t *testing.T) {
		a, _, logs := setupApp(t, Config{ProjectDir: dir})
		err := a.Resolve(context.Background(), "${actions.build.api.outputs.nope}")
		require.Error(t, err)
		assert.NotEmpty(t, logs.String())
	})
}

func TestApp_Schemas(t *testing.T) {
	t.Parallel()
	a, out, _ := setupApp(t, Config{ProjectDir: t.TempDir()})

	require.NoError(t, a.Schemas(context.Background()))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, len(a.Registry().Schemas())+1, len(lines))
	assert.Regexp(t, `^Build\s+container\s+container$`, lines[1])
}

// Every built-in action type must produce reference pages that are up to
// date and lint clean against their own schemas.
func TestApp_DocsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	a, out, _ := setupApp(t, Config{ProjectDir: dir, WorkerCount: 4})

	require.NoError(t, a.DocsGenerate(ctx, ""))
	assert.Contains(t, out.String(), filepath.Join(dir, "docs"))

	require.NoError(t, a.DocsCheck(ctx, ""))
	require.NoError(t, a.DocsLint(ctx, ""), out.String())
	assert.Contains(t, out.String(), "No findings")

	page := filepath.Join(dir, "docs", "Deploy", "container.md")
	data, err := os.ReadFile(page)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(page, []byte(strings.Replace(string(data), "| Yes      |", "| No       |", 1)), 0o644))

	err = a.DocsCheck(ctx, "")
	require.ErrorContains(t, err, "differs from the generated page")
	err = a.DocsLint(ctx, "")
	require.ErrorIs(t, err, ErrFindings)
	assert.Contains(t, out.String(), "Required is No, but the schema says Yes")
}

func TestApp_UserSchemas(t *testing.T) {
	t.Parallel()

	t.Run("adds action types", func(t *testing.T) {
		schemas := t.TempDir()
		testutil.WriteFiles(t, schemas, map[string]string{
			"custom.hcl": `
				action "Test" "k6" {
				  description = "Run a k6 load test."
				  field "script" {
				    type        = string
				    description = "The script to run."
				    required    = true
				  }
				}
			`,
		})
		a, _, _ := setupApp(t, Config{ProjectDir: t.TempDir(), SchemasPath: schemas})
		s, ok := a.Registry().Schema(schema.KindTest, "k6")
		require.True(t, ok)
		assert.Equal(t, registry.UserProvider, s.Provider)
	})

	t.Run("cannot redefine built-in types", func(t *testing.T) {
		schemas := t.TempDir()
		testutil.WriteFiles(t, schemas, map[string]string{"exec.hcl": `action "Run" "exec" {}`})
		config, err := NewConfig(Config{ProjectDir: ".", SchemasPath: schemas, LogFormat: "text", LogLevel: "error", WorkerCount: 1})
		require.NoError(t, err)

		_, err = NewApp(&testutil.SafeBuffer{}, &testutil.SafeBuffer{}, config)
		require.ErrorContains(t, err, "redefines the built-in action type 'Run.exec'")
	})
}

type orphanResolverModule struct{}

func (orphanResolverModule) Register(r *registry.Registry) {
	r.RegisterManifests("orphan", fstest.MapFS{"a.hcl": &fstest.MapFile{Data: []byte(`action "Run" "noop" {}`)}})
	r.RegisterOutputs(schema.KindRun, "missing", func(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
		return nil, nil
	})
}

func TestNewApp_PanicsOnRegistryMismatch(t *testing.T) {
	t.Parallel()
	config, err := NewConfig(Config{ProjectDir: ".", LogFormat: "json", LogLevel: "error", WorkerCount: 1})
	require.NoError(t, err)

	assert.PanicsWithError(t,
		"registry validation failed:\n- action type 'Run.missing': Go output resolver is registered, but no manifest declares the type",
		func() { _, _ = NewApp(&testutil.SafeBuffer{}, &testutil.SafeBuffer{}, config, orphanResolverModule{}) },
	)
}
