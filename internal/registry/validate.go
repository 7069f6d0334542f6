package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/schema"
)

// ValidateRegistry performs a strict parity check between manifests and Go code.
// Every output resolver must belong to a loaded manifest, and every manifest
// that declares named outputs must have a resolver to compute them.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	ids := make([]string, 0, len(r.resolvers))
	for id := range r.resolvers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := r.schemas[id]; !ok {
			errs = append(errs, fmt.Sprintf("action type '%s': Go output resolver is registered, but no manifest declares the type", id))
		}
	}

	for _, s := range r.Schemas() {
		var named []string
		for _, o := range s.Outputs {
			if o.IsWildcard() {
				continue
			}
			named = append(named, o.Name)
			if o.Type.Kind == schema.ValueAny {
				logger.Warn("Manifest declares an output with 'type = any', which disables type checking of resolved values. Consider using a specific type.", "type", s.ID(), "output", o.Name)
			}
		}

		if _, ok := r.resolvers[s.ID()]; !ok && len(named) > 0 {
			errs = append(errs, fmt.Sprintf("action type '%s': manifest declares outputs (%s), but no Go output resolver is registered", s.ID(), strings.Join(named, ", ")))
		}

		for _, fk := range schema.Flatten(s.Spec) {
			if fk.Key.Description == "" {
				logger.Warn("Manifest field has no description; its reference page will be incomplete.", "type", s.ID(), "field", fk.Path.String())
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
