// Package dockercompose provides the docker-compose and docker-compose-run
// action types.
package dockercompose

import (
	"context"
	"embed"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider is the name the manifests are registered under.
const Provider = "docker-compose"

//go:embed *.hcl
var manifests embed.FS

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the manifests and output resolvers of the provider.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifests(Provider, manifests)
	r.RegisterOutputs(schema.KindDeploy, "docker-compose", DeployOutputs)
	r.RegisterOutputs(schema.KindRun, "docker-compose-run", logOutput)
	r.RegisterOutputs(schema.KindTest, "docker-compose-run", logOutput)
}

// DeployOutputs reports the Compose project name.
func DeployOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	name := in.Action.SpecString("projectName")
	if name == "" {
		name = ProjectName(in.Action.SourceDir())
	}
	return map[string]cty.Value{"projectName": cty.StringVal(name)}, nil
}

func logOutput(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	return map[string]cty.Value{"log": cty.StringVal("")}, nil
}

var invalidProjectChars = regexp.MustCompile(`[^a-z0-9_-]`)

// ProjectName returns the project name Compose picks for a directory: its
// lowercased base name without characters Compose does not allow.
func ProjectName(dir string) string {
	return invalidProjectChars.ReplaceAllString(strings.ToLower(filepath.Base(dir)), "")
}
