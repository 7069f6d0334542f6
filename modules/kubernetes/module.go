package kubernetes

import (
	"context"
	"embed"

	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider is the name the manifests are registered under.
const Provider = "kubernetes"

//go:embed *.hcl
var manifests embed.FS

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the manifests and output resolvers of the provider.
// Deploy.kubernetes declares no outputs of its own and has no resolver.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifests(Provider, manifests)
	r.RegisterOutputs(schema.KindRun, "kubernetes-pod", podOutputs)
	r.RegisterOutputs(schema.KindTest, "kubernetes-pod", podOutputs)
}

func podOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	return map[string]cty.Value{"log": cty.StringVal("")}, nil
}
