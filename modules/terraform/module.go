package terraform

import (
	"embed"

	"github.com/specialistvlad/actionref/internal/registry"
)

// Provider is the name the manifests are registered under.
const Provider = "terraform"

//go:embed *.hcl
var manifests embed.FS

// Module implements the registry.Module interface for this package.
//
// Terraform outputs are read from the stack's state after it is applied, so
// no resolver is registered and `outputs.*` resolves to an empty map.
type Module struct{}

// Register registers the manifests of the provider.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifests(Provider, manifests)
}
