package container

import (
	"context"
	"embed"
	"strings"

	"github.com/specialistvlad/actionref/internal/registry"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Provider is the name the manifests are registered under.
const Provider = "container"

//go:embed *.hcl
var manifests embed.FS

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the manifests and output resolvers of the provider.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifests(Provider, manifests)
	r.RegisterOutputs(schema.KindBuild, "container", BuildOutputs)
	r.RegisterOutputs(schema.KindDeploy, "container", DeployOutputs)
	r.RegisterOutputs(schema.KindRun, "container", logOutput)
	r.RegisterOutputs(schema.KindTest, "container", logOutput)
}

// BuildOutputs derives the image names and IDs of a Build action. Local IDs
// are tagged with the action version; a publish ID keeps its own tag if it has
// one.
func BuildOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	a := in.Action

	localName := a.Name
	if id := a.SpecString("localId"); id != "" {
		localName, _ = SplitImageID(id)
	}

	deployName, deployTag := localName, in.Version
	if id := a.SpecString("publishId"); id != "" {
		name, tag := SplitImageID(id)
		deployName = name
		if tag != "" {
			deployTag = tag
		}
	}

	return map[string]cty.Value{
		"localImageName":      cty.StringVal(localName),
		"localImageId":        cty.StringVal(localName + ":" + in.Version),
		"deploymentImageName": cty.StringVal(deployName),
		"deploymentImageId":   cty.StringVal(deployName + ":" + deployTag),
	}, nil
}

// DeployOutputs reports the image a Deploy action runs.
func DeployOutputs(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	return map[string]cty.Value{
		"deployedImageId": cty.StringVal(in.Action.SpecString("image")),
	}, nil
}

// logOutput is shared by the Run and Test types, whose log only exists once
// the action has run.
func logOutput(ctx context.Context, in registry.ResolveInput) (map[string]cty.Value, error) {
	return map[string]cty.Value{"log": cty.StringVal("")}, nil
}

// SplitImageID splits an image ID into its name and tag. A digest is dropped.
// The colon of a registry port, as in "localhost:5000/api", is not a tag
// separator.
func SplitImageID(id string) (name, tag string) {
	if i := strings.Index(id, "@"); i >= 0 {
		id = id[:i]
	}
	i := strings.LastIndex(id, ":")
	if i < 0 || strings.Contains(id[i+1:], "/") {
		return id, ""
	}
	return id[:i], id[i+1:]
}
