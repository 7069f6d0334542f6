package helm

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

func TestModule(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	r := registry.New()
	(&Module{}).Register(r)
	require.NoError(t, r.LoadManifests(ctx, ""))
	require.NoError(t, r.ValidateRegistry(ctx))

	deploy, ok := r.Schema(schema.KindDeploy, "helm")
	require.True(t, ok)
	assert.True(t, deploy.HasOutput([]string{"outputs", "release-name"}))

	tests := []struct {
		name string
		spec cty.Value
		want string
	}{
		{"defaults to the action name", cty.EmptyObjectVal, "ingress"},
		{"explicit release name", cty.ObjectVal(map[string]cty.Value{"releaseName": cty.StringVal("nginx")}), "nginx"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &actions.Action{Kind: schema.KindDeploy, Type: "helm", Name: "ingress", Spec: tc.spec}
			out, err := r.ResolveOutputs(ctx, registry.ResolveInput{Action: a})
			require.NoError(t, err)
			assert.Equal(t, cty.StringVal(tc.want), out["release-name"])
		})
	}
}
