package registry

import (
	"io/fs"
	"sort"

	"github.com/specialistvlad/actionref/internal/schema"
)

// Module is the interface that all provider modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// manifestSource is an embedded set of manifests registered by a module.
type manifestSource struct {
	provider string
	fsys     fs.FS
}

// Registry holds all the registered manifests, schemas and output resolvers
// for a single application instance.
type Registry struct {
	manifests []manifestSource
	resolvers map[string]OutputResolver
	schemas   map[string]*schema.ActionSchema
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		resolvers: make(map[string]OutputResolver),
		schemas:   make(map[string]*schema.ActionSchema),
	}
}

func schemaID(kind schema.Kind, typ string) string {
	return string(kind) + "." + typ
}

// Schema returns the schema of an action type.
func (r *Registry) Schema(kind schema.Kind, typ string) (*schema.ActionSchema, bool) {
	s, ok := r.schemas[schemaID(kind, typ)]
	return s, ok
}

// Schemas returns all loaded schemas ordered by kind, then type.
func (r *Registry) Schemas() []*schema.ActionSchema {
	out := make([]*schema.ActionSchema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind.Order() < out[j].Kind.Order()
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// Providers returns the names of the providers that registered manifests.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.manifests))
	for _, m := range r.manifests {
		names = append(names, m.provider)
	}
	sort.Strings(names)
	return names
}
