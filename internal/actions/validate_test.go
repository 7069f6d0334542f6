package actions

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fakeSchemas map[string]*schema.ActionSchema

func (f fakeSchemas) Schema(kind schema.Kind, typ string) (*schema.ActionSchema, bool) {
	s, ok := f[string(kind)+"."+typ]
	return s, ok
}

func ptr(v cty.Value) *cty.Value { return &v }

func testSchemas() fakeSchemas {
	return fakeSchemas{
		"Build.container": {
			Kind: schema.KindBuild,
			Type: "container",
			Spec: []*schema.Key{
				{Name: "dockerfile", Type: schema.String, Default: ptr(cty.StringVal("Dockerfile"))},
				{Name: "buildArgs", Type: schema.MapOf(schema.String)},
			},
			Outputs: []*schema.Output{
				{Name: "deploymentImageId", Type: schema.String},
			},
		},
		"Deploy.container": {
			Kind: schema.KindDeploy,
			Type: "container",
			Spec: []*schema.Key{
				{Name: "image", Type: schema.String, Required: true},
				{
					Name: "ports",
					Type: schema.ArrayOf(schema.Object),
					Children: []*schema.Key{
						{Name: "name", Type: schema.String, Required: true},
						{Name: "containerPort", Type: schema.Number},
						{
							Name:          "protocol",
							Type:          schema.String,
							Default:       ptr(cty.StringVal("TCP")),
							AllowedValues: []cty.Value{cty.StringVal("TCP"), cty.StringVal("UDP")},
						},
					},
				},
			},
		},
		"Run.exec": {
			Kind: schema.KindRun,
			Type: "exec",
			Spec: []*schema.Key{
				{Name: "command", Type: schema.ArrayOf(schema.String), Required: true},
			},
			Outputs: []*schema.Output{{Name: "log", Type: schema.String}},
		},
	}
}

func parseActions(t *testing.T, src string) []*Action {
	t.Helper()
	file, diags := ParseFile(testutil.Context(t), "/proj/garden.yml", []byte(src))
	require.False(t, diags.HasErrors(), diags.Error())
	return file.Actions
}

func TestValidate_AppliesDefaults(t *testing.T) {
	t.Parallel()

	list := parseActions(t, `kind: Build
type: container
name: api
---
kind: Deploy
type: container
name: api
build: api
description: The API server.
dependencies:
  - run.migrate
  - { kind: Build, name: api }
variables:
  replicas: 2
varfiles:
  - vars.env
  - path: secrets.yml
    optional: true
spec:
  image: ${actions.build.api.outputs.deploymentImageId}
  ports:
    - name: http
      containerPort: 8080
---
kind: Run
type: exec
name: migrate
disabled: true
source:
  path: ../db
spec:
  command: [echo, "${actions.build.api.version}"]
`)

	diags := Validate(testutil.Context(t), testSchemas(), list)
	require.False(t, diags.HasErrors(), diags.Error())

	build, deploy, migrate := list[0], list[1], list[2]

	require.Equal(t, "Dockerfile", build.SpecString("dockerfile"), "spec default should be applied")
	require.Equal(t, 600, build.Timeout)
	require.Equal(t, "garden.io/v2", build.Raw.GetAttr("apiVersion").AsString())
	require.False(t, build.Disabled)

	require.Equal(t, "The API server.", deploy.Description)
	require.Equal(t, "api", deploy.Build)
	require.Equal(t, 300, deploy.Timeout)
	require.Equal(t, []Reference{
		{Kind: schema.KindRun, Name: "migrate"},
		{Kind: schema.KindBuild, Name: "api"},
	}, deploy.Dependencies)
	require.Equal(t, []Varfile{{Path: "vars.env"}, {Path: "secrets.yml", Optional: true}}, deploy.Varfiles)
	require.True(t, deploy.Variables["replicas"].RawEquals(cty.NumberIntVal(2)))

	port := deploy.SpecAttr("ports").Index(cty.NumberIntVal(0))
	require.Equal(t, "TCP", port.GetAttr("protocol").AsString(), "nested defaults should be applied")

	require.Len(t, deploy.Templates, 1)
	require.Equal(t, "spec.image", deploy.Templates[0].Path)

	require.True(t, migrate.Disabled)
	require.Equal(t, "/db", migrate.SourceDir())
	require.Len(t, migrate.Templates, 1)
	require.Equal(t, "spec.command[1]", migrate.Templates[0].Path)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		src     string
		summary string
		detail  string
		line    int
	}{
		{
			name:    "unknown type",
			src:     "kind: Build\ntype: nope\nname: api\n",
			summary: "Unknown action type",
			line:    2,
		},
		{
			name:    "missing type",
			src:     "kind: Build\nname: api\n",
			summary: "Missing required key",
		},
		{
			name:    "missing required spec key",
			src:     "kind: Deploy\ntype: container\nname: api\n",
			summary: "Missing required key",
			detail:  `"spec.image"`,
		},
		{
			name:    "missing nested required key",
			src:     "kind: Deploy\ntype: container\nname: api\nspec:\n  image: nginx\n  ports:\n    - containerPort: 80\n",
			summary: "Missing required key",
			detail:  `"spec.ports[0].name"`,
			line:    7,
		},
		{
			name:    "unknown top-level key",
			src:     "kind: Build\ntype: container\nname: api\ncolour: blue\n",
			summary: "Unsupported key",
			line:    4,
		},
		{
			name:    "unknown spec key",
			src:     "kind: Build\ntype: container\nname: api\nspec:\n  dockerFile: x\n",
			summary: "Unsupported key",
			detail:  `"spec.dockerFile"`,
			line:    5,
		},
		{
			name:    "wrong type",
			src:     "kind: Build\ntype: container\nname: api\ntimeout: soon\n",
			summary: "Invalid value type",
			line:    4,
		},
		{
			name:    "value not allowed",
			src:     "kind: Deploy\ntype: container\nname: api\nspec:\n  image: nginx\n  ports:\n    - name: http\n      protocol: SCTP\n",
			summary: "Invalid value",
			line:    8,
		},
		{
			name:    "api version not allowed",
			src:     "apiVersion: garden.io/v9\nkind: Build\ntype: container\nname: api\n",
			summary: "Invalid value",
			line:    1,
		},
		{
			name:    "build on a Build action",
			src:     "kind: Build\ntype: container\nname: api\nbuild: other\n",
			summary: "Invalid build reference",
			line:    4,
		},
		{
			name:    "invalid name",
			src:     "kind: Build\ntype: container\nname: My_API\n",
			summary: "Invalid action name",
			line:    3,
		},
		{
			name:    "invalid dependency",
			src:     "kind: Build\ntype: container\nname: api\ndependencies: [api]\n",
			summary: "Invalid dependency",
			line:    4,
		},
		{
			name:    "unknown dependency",
			src:     "kind: Build\ntype: container\nname: api\ndependencies: [deploy.db]\n",
			summary: "Unknown dependency",
		},
		{
			name:    "self dependency",
			src:     "kind: Build\ntype: container\nname: api\ndependencies: [build.api]\n",
			summary: "Invalid dependency",
			detail:  "cannot depend on itself",
		},
		{
			name:    "unknown build",
			src:     "kind: Deploy\ntype: container\nname: api\nbuild: missing\nspec:\n  image: nginx\n",
			summary: "Unknown build action",
			line:    4,
		},
		{
			name:    "unknown template reference",
			src:     "kind: Deploy\ntype: container\nname: api\nspec:\n  image: ${actions.build.missing.version}\n",
			summary: "Unknown action reference",
			line:    5,
		},
		{
			name:    "unknown output",
			src:     "kind: Build\ntype: container\nname: img\n---\nkind: Deploy\ntype: container\nname: api\nspec:\n  image: ${actions.build.img.outputs.nope}\n",
			summary: "Unknown output",
			detail:  "outputs.deploymentImageId",
			line:    9,
		},
		{
			name:    "unknown template namespace",
			src:     "kind: Deploy\ntype: container\nname: api\nspec:\n  image: ${local.image}\n",
			summary: "Unknown template namespace",
			line:    5,
		},
		{
			name:    "template syntax error",
			src:     "kind: Deploy\ntype: container\nname: api\nspec:\n  image: ${actions.\n",
		},
		{
			name:    "template dependency",
			src:     "kind: Build\ntype: container\nname: api\ndependencies: [\"${var.dep}\"]\n",
			summary: "Invalid dependency",
			detail:  "must be static",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			list := parseActions(t, tc.src)
			diags := Validate(testutil.Context(t), testSchemas(), list)
			require.True(t, diags.HasErrors(), "expected errors")

			if tc.summary == "" {
				return
			}
			d := findDiag(diags, tc.summary)
			require.NotNil(t, d, "no %q diagnostic in: %s", tc.summary, diags.Error())
			if tc.detail != "" {
				require.Contains(t, d.Detail, tc.detail)
			}
			if tc.line > 0 {
				require.NotNil(t, d.Subject)
				require.Equal(t, tc.line, d.Subject.Start.Line)
				require.Equal(t, "/proj/garden.yml", d.Subject.Filename)
			}
		})
	}
}

func findDiag(diags hcl.Diagnostics, summary string) *hcl.Diagnostic {
	for _, d := range diags {
		if d.Summary == summary {
			return d
		}
	}
	return nil
}
