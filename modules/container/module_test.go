package container

import (
	"testing"

	"github.com/specialistvlad/actionref/internal/actions"
	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := testutil.Context(t)
	r := registry.New()
	(&Module{}).Register(r)
	require.NoError(t, r.LoadManifests(ctx, ""))
	require.NoError(t, r.ValidateRegistry(ctx))
	return r
}

func TestModule_Schemas(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)

	var ids []string
	for _, s := range r.Schemas() {
		ids = append(ids, s.ID())
		assert.Equal(t, Provider, s.Provider)
		assert.NotEmpty(t, s.Description, s.ID())
	}
	assert.Equal(t, []string{"Build.container", "Deploy.container", "Run.container", "Test.container"}, ids)

	deploy, ok := r.Schema(schema.KindDeploy, "container")
	require.True(t, ok)
	assert.True(t, deploy.SpecKey("image").Required)
	protocol := deploy.SpecKey("ports").Child("protocol")
	require.NotNil(t, protocol)
	require.NotNil(t, protocol.Default)
	assert.Equal(t, cty.StringVal("TCP"), *protocol.Default)
	assert.Len(t, protocol.AllowedValues, 2)
}

func TestBuildOutputs(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)

	tests := []struct {
		name string
		spec map[string]cty.Value
		want map[string]string
	}{
		{
			name: "defaults to the action name",
			spec: map[string]cty.Value{},
			want: map[string]string{
				"localImageName":      "api",
				"localImageId":        "api:v-0123456789",
				"deploymentImageName": "api",
				"deploymentImageId":   "api:v-0123456789",
			},
		},
		{
			name: "local and publish IDs",
			spec: map[string]cty.Value{
				"localId":   cty.StringVal("my-api:dev"),
				"publishId": cty.StringVal("localhost:5000/org/api"),
			},
			want: map[string]string{
				"localImageName":      "my-api",
				"localImageId":        "my-api:v-0123456789",
				"deploymentImageName": "localhost:5000/org/api",
				"deploymentImageId":   "localhost:5000/org/api:v-0123456789",
			},
		},
		{
			name: "publish ID tag wins over the version",
			spec: map[string]cty.Value{"publishId": cty.StringVal("org/api:latest")},
			want: map[string]string{
				"localImageName":      "api",
				"localImageId":        "api:v-0123456789",
				"deploymentImageName": "org/api",
				"deploymentImageId":   "org/api:latest",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &actions.Action{Kind: schema.KindBuild, Type: "container", Name: "api", Spec: cty.ObjectVal(tc.spec)}
			out, err := r.ResolveOutputs(testutil.Context(t), registry.ResolveInput{Action: a, Version: "v-0123456789"})
			require.NoError(t, err)

			got := make(map[string]string, len(out))
			for k, v := range out {
				got[k] = v.AsString()
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeployAndRunOutputs(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)
	ctx := testutil.Context(t)

	deploy := &actions.Action{
		Kind: schema.KindDeploy, Type: "container", Name: "api",
		Spec: cty.ObjectVal(map[string]cty.Value{"image": cty.StringVal("org/api:v-1")}),
	}
	out, err := r.ResolveOutputs(ctx, registry.ResolveInput{Action: deploy})
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("org/api:v-1"), out["deployedImageId"])

	run := &actions.Action{Kind: schema.KindTest, Type: "container", Name: "unit", Spec: cty.EmptyObjectVal}
	out, err = r.ResolveOutputs(ctx, registry.ResolveInput{Action: run})
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal(""), out["log"])
}

func TestSplitImageID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		id, name, tag string
	}{
		{"api", "api", ""},
		{"api:1.0", "api", "1.0"},
		{"localhost:5000/api", "localhost:5000/api", ""},
		{"localhost:5000/api:dev", "localhost:5000/api", "dev"},
		{"org/api:1.0@sha256:abc", "org/api", "1.0"},
	}
	for _, tc := range tests {
		name, tag := SplitImageID(tc.id)
		assert.Equal(t, tc.name, name, tc.id)
		assert.Equal(t, tc.tag, tag, tc.id)
	}
}
