package template

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestIsTemplate(t *testing.T) {
	t.Parallel()
	assert.True(t, IsTemplate("${var.name}"))
	assert.True(t, IsTemplate("prefix-${actions.build.api.version}"))
	assert.True(t, IsTemplate("%{if true}x%{endif}"))
	assert.False(t, IsTemplate("plain"))
	assert.False(t, IsTemplate("$HOME"))
}

func TestActionRefs(t *testing.T) {
	t.Parallel()

	tmpl, diags := Parse("${actions.build.api.outputs.deploymentImageId}:${actions.deploy.my-db.version}", "test.yml", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())

	refs, diags := tmpl.ActionRefs()
	require.False(t, diags.HasErrors(), diags.Error())
	require.Len(t, refs, 2)

	got := make([]string, len(refs))
	for i, r := range refs {
		got[i] = r.String()
	}
	want := []string{
		"actions.build.api.outputs.deploymentImageId",
		"actions.deploy.my-db.version",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ActionRefs() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, schema.KindBuild, refs[0].Kind)
	require.Equal(t, "api", refs[0].Name)
	require.Equal(t, []string{"outputs", "deploymentImageId"}, refs[0].Field)
}

func TestActionRefs_IndexSyntax(t *testing.T) {
	t.Parallel()

	tmpl, diags := Parse(`${actions.deploy.chart.outputs["release-name"]}`, "test.yml", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())

	refs, diags := tmpl.ActionRefs()
	require.False(t, diags.HasErrors())
	require.Len(t, refs, 1)
	require.Equal(t, []string{"outputs", "release-name"}, refs[0].Field)
}

func TestActionRefs_Invalid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		src  string
	}{
		{name: "missing name", src: "${actions.build}"},
		{name: "unknown kind", src: "${actions.destroy.api.version}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tmpl, diags := Parse(tc.src, "test.yml", hcl.InitialPos)
			require.False(t, diags.HasErrors())
			_, diags = tmpl.ActionRefs()
			require.True(t, diags.HasErrors())
			require.Contains(t, diags.Error(), "Invalid action reference")
		})
	}
}

func TestVarRefsAndRoots(t *testing.T) {
	t.Parallel()

	tmpl, diags := Parse("${var.image}-${var.tag}-${var.image}-${local.x}", "test.yml", hcl.InitialPos)
	require.False(t, diags.HasErrors())
	require.Equal(t, []string{"image", "tag"}, tmpl.VarRefs())

	diags = tmpl.CheckRoots()
	require.Len(t, diags, 1)
	require.Contains(t, diags.Error(), `"local"`)
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()
	_, diags := Parse("${actions.build.", "test.yml", hcl.Pos{Line: 7, Column: 3})
	require.True(t, diags.HasErrors())
	require.Equal(t, "test.yml", diags[0].Subject.Filename)
	require.Equal(t, 7, diags[0].Subject.Start.Line)
}

func TestEval(t *testing.T) {
	t.Parallel()

	scope := NewScope("demo", "local")
	scope.SetAction(schema.KindBuild, "api", cty.ObjectVal(map[string]cty.Value{
		"version": cty.StringVal("v-abc"),
		"outputs": cty.ObjectVal(map[string]cty.Value{
			"port": cty.NumberIntVal(8080),
		}),
	}))
	scope = scope.WithVars(map[string]cty.Value{"tag": cty.StringVal("latest")})
	ctx := scope.EvalContext()

	cases := []struct {
		name string
		src  string
		want cty.Value
	}{
		{name: "interpolation in text", src: "api:${actions.build.api.version}", want: cty.StringVal("api:v-abc")},
		{name: "single interpolation keeps type", src: "${actions.build.api.outputs.port}", want: cty.NumberIntVal(8080)},
		{name: "variables", src: "${var.tag}", want: cty.StringVal("latest")},
		{name: "project and environment", src: "${project.name}/${environment.name}", want: cty.StringVal("demo/local")},
		{name: "functions", src: "${upper(var.tag)}", want: cty.StringVal("LATEST")},
		{name: "escaped", src: "$${not.a.template}", want: cty.StringVal("${not.a.template}")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tmpl, diags := Parse(tc.src, "test.yml", hcl.InitialPos)
			require.False(t, diags.HasErrors(), diags.Error())
			got, diags := tmpl.Eval(ctx)
			require.False(t, diags.HasErrors(), diags.Error())
			require.True(t, tc.want.RawEquals(got), "got %#v", got)
		})
	}

	t.Run("unknown output", func(t *testing.T) {
		t.Parallel()
		tmpl, _ := Parse("${actions.build.api.nope}", "test.yml", hcl.InitialPos)
		_, diags := tmpl.Eval(ctx)
		require.True(t, diags.HasErrors())
	})
}

func TestFindAndResolve(t *testing.T) {
	t.Parallel()

	cfg := cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("api"),
		"spec": cty.ObjectVal(map[string]cty.Value{
			"image": cty.StringVal("${actions.build.api.outputs.image}"),
			"args": cty.TupleVal([]cty.Value{
				cty.StringVal("--port"),
				cty.StringVal("${var.port}"),
			}),
		}),
	})

	found := Find(cfg)
	require.Len(t, found, 2)
	paths := []string{FormatPath(found[0].Path), FormatPath(found[1].Path)}
	assert.ElementsMatch(t, []string{"spec.image", "spec.args[1]"}, paths)

	scope := NewScope("demo", "local")
	scope.SetAction(schema.KindBuild, "api", cty.ObjectVal(map[string]cty.Value{
		"outputs": cty.ObjectVal(map[string]cty.Value{"image": cty.StringVal("registry/api:v-1")}),
	}))
	scope = scope.WithVars(map[string]cty.Value{"port": cty.NumberIntVal(80)})

	resolved, diags := Resolve(cfg, "test.yml", nil, scope.EvalContext())
	require.False(t, diags.HasErrors(), diags.Error())

	spec := resolved.GetAttr("spec")
	require.Equal(t, "registry/api:v-1", spec.GetAttr("image").AsString())
	require.True(t, spec.GetAttr("args").Index(cty.NumberIntVal(1)).RawEquals(cty.NumberIntVal(80)))
	require.Equal(t, "api", resolved.GetAttr("name").AsString())
	require.Empty(t, Find(resolved))
}

func TestResolve_ReportsPosition(t *testing.T) {
	t.Parallel()

	cfg := cty.ObjectVal(map[string]cty.Value{
		"image": cty.StringVal("${var.missing}"),
	})
	pos := func(cty.Path) hcl.Pos { return hcl.Pos{Line: 12, Column: 10} }

	_, diags := Resolve(cfg, "garden.yml", pos, NewScope("demo", "local").EvalContext())
	require.True(t, diags.HasErrors())
	require.Equal(t, "garden.yml", diags[0].Subject.Filename)
	require.Equal(t, 12, diags[0].Subject.Start.Line)
}
