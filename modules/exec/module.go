package exec

import (
	"context"
	"embed"

	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider is the name the manifests are registered under.
const Provider = "exec"

//go:embed *.hcl
var manifests embed.FS

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the manifests and output resolvers of the provider.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifests(Provider, manifests)
	for _, kind := range schema.Kinds {
		r.RegisterOutputs(kind, "exec", Outputs)
	}
}

// Outputs resolves the command outputs, which only exist once the action has
// run.
func Outputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	return map[string]cty.Value{
		"log":    cty.StringVal(""),
		"stdout": cty.StringVal(""),
		"stderr": cty.StringVal(""),
	}, nil
}
