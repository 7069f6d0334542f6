package registry

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/manifest"
)

// UserProvider is the provider name given to manifests loaded from the
// user's schema directory.
const UserProvider = "user"

// LoadManifests parses the manifests of every registered provider, then
// those found below userPath (if not empty). User manifests may add action
// types but may not redefine built-in ones.
func (r *Registry) LoadManifests(ctx context.Context, userPath string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading manifests...", "providers", r.Providers(), "userPath", userPath)

	for _, src := range r.manifests {
		schemas, err := manifest.Load(ctx, src.fsys, src.provider)
		if err != nil {
			return err
		}
		for _, s := range schemas {
			if prev, exists := r.schemas[s.ID()]; exists {
				return fmt.Errorf("action type '%s' is defined by both provider '%s' and provider '%s'", s.ID(), prev.Provider, s.Provider)
			}
			r.schemas[s.ID()] = s
		}
	}

	if userPath != "" {
		info, err := os.Stat(userPath)
		if err != nil {
			return fmt.Errorf("failed to read schemas path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("schemas path %s is not a directory", userPath)
		}

		schemas, err := manifest.Load(ctx, os.DirFS(userPath), UserProvider)
		if err != nil {
			return err
		}
		for _, s := range schemas {
			if prev, exists := r.schemas[s.ID()]; exists {
				return fmt.Errorf("manifest %s redefines the built-in action type '%s' of provider '%s'", s.SourceFile, s.ID(), prev.Provider)
			}
			r.schemas[s.ID()] = s
		}
		logger.Debug("Loaded user manifests.", "path", userPath, "schemas", len(schemas))
	}

	logger.Info("Registry loaded successfully.", "schemas_loaded", len(r.schemas))
	return nil
}
