package helm

import (
	"context"
	"embed"

	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider is the name the manifests are registered under.
const Provider = "helm"

//go:embed *.hcl
var manifests embed.FS

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the manifests and output resolvers of the provider.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifests(Provider, manifests)
	r.RegisterOutputs(schema.KindDeploy, "helm", DeployOutputs)
	r.RegisterOutputs(schema.KindRun, "helm-pod", podOutputs)
}

// DeployOutputs reports the release name, which defaults to the action name.
func DeployOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	name := in.Action.SpecString("releaseName")
	if name == "" {
		name = in.Action.Name
	}
	return map[string]cty.Value{"release-name": cty.StringVal(name)}, nil
}

func podOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	return map[string]cty.Value{"log": cty.StringVal("")}, nil
}
