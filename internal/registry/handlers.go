package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/actionref/internal/actions"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// ResolveInput is what an output resolver derives its values from.
type ResolveInput struct {
	// Action is the validated action. Templates in its Spec are already
	// resolved.
	Action *actions.Action
	// Version is the action's computed version, e.g. "v-1a2b3c4d5e".
	Version string
	// BuildPath is the directory the action builds or runs in.
	BuildPath string
}

// OutputResolver computes the type-specific `outputs.*` values of a validated
// action. Resolvers only derive values from configuration; values that exist
// only after execution resolve to empty strings.
type OutputResolver func(ctx context.Context, in ResolveInput) (map[string]cty.Value, error)

// RegisterManifests registers the schema manifests of a provider.
func (r *Registry) RegisterManifests(provider string, manifests fs.FS) {
	for _, m := range r.manifests {
		if m.provider == provider {
			panic(fmt.Sprintf("manifests for provider '%s' already registered", provider))
		}
	}
	slog.Debug("Registering manifests.", "provider", provider)
	r.manifests = append(r.manifests, manifestSource{provider: provider, fsys: manifests})
}

// RegisterOutputs registers the Go function that computes an action type's outputs.
func (r *Registry) RegisterOutputs(kind schema.Kind, typ string, fn OutputResolver) {
	id := schemaID(kind, typ)
	if _, exists := r.resolvers[id]; exists {
		panic(fmt.Sprintf("output resolver for '%s' already registered", id))
	}
	slog.Debug("Registering output resolver.", "type", id)
	r.resolvers[id] = fn
}

// Resolver returns the output resolver of an action type.
func (r *Registry) Resolver(kind schema.Kind, typ string) (OutputResolver, bool) {
	fn, ok := r.resolvers[schemaID(kind, typ)]
	return fn, ok
}

// ResolveOutputs runs the resolver of the action's type and checks the
// result against the declared outputs. Declared outputs the resolver did not
// set resolve to null. Types without a resolver yield an empty map.
func (r *Registry) ResolveOutputs(ctx context.Context, in ResolveInput) (map[string]cty.Value, error) {
	a := in.Action
	s, ok := r.Schema(a.Kind, a.Type)
	if !ok {
		return nil, fmt.Errorf("no schema registered for %s action type '%s'", a.Kind, a.Type)
	}

	out := make(map[string]cty.Value)
	fn, ok := r.Resolver(a.Kind, a.Type)
	if ok {
		ctxlog.FromContext(ctx).Debug("Running output resolver.", "type", s.ID())
		values, err := fn(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve outputs of %s: %w", a.Ref(), err)
		}
		for k, v := range values {
			out[k] = v
		}
	}

	declared := make(map[string]*schema.Output, len(s.Outputs))
	wildcard := false
	for _, o := range s.Outputs {
		if o.IsWildcard() {
			wildcard = true
			continue
		}
		declared[o.Name] = o
	}

	var undeclared []string
	for k, v := range out {
		o, ok := declared[k]
		if !ok {
			if !wildcard {
				undeclared = append(undeclared, k)
			}
			continue
		}
		if err := schema.CheckValue(o.Type, v); err != nil {
			return nil, fmt.Errorf("output '%s' of %s: %w", k, a.Ref(), err)
		}
	}
	if len(undeclared) > 0 {
		sort.Strings(undeclared)
		return nil, fmt.Errorf("resolver for '%s' returned undeclared outputs: %s", s.ID(), strings.Join(undeclared, ", "))
	}

	for name := range declared {
		if _, ok := out[name]; !ok {
			out[name] = cty.NullVal(cty.DynamicPseudoType)
		}
	}
	return out, nil
}
