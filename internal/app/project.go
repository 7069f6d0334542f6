package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/actions"
	"github.com/specialistvlad/actionref/internal/fsutil"
	"github.com/specialistvlad/actionref/internal/graph"
)

// Project is a loaded and validated project.
type Project struct {
	*actions.Project
	Graph *graph.Manager
}

// LoadProject finds the project root above the configured directory, loads
// and validates its actions and builds their graph. Diagnostics are written
// to the error writer before an error is returned.
func (a *App) LoadProject(ctx context.Context) (*Project, error) {
	ctx = a.withLogger(ctx)

	dir, err := fsutil.ExpandPath(a.config.ProjectDir)
	if err != nil {
		return nil, err
	}
	root, err := fsutil.FindProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Project root found.", "root", root)

	project, err := actions.Load(ctx, root)
	if err != nil {
		var diags hcl.Diagnostics
		if errors.As(err, &diags) {
			return nil, a.reportDiagnostics(diags)
		}
		return nil, err
	}

	if diags := actions.Validate(ctx, a.registry, project.Actions); len(diags) > 0 {
		if err := a.reportDiagnostics(diags); err != nil {
			return nil, err
		}
	}

	g, err := graph.Build(ctx, project.Actions)
	if err != nil {
		return nil, err
	}
	return &Project{Project: project, Graph: g}, nil
}

// ErrUnknownEnvironment is returned when the selected environment is not
// declared by the project.
var ErrUnknownEnvironment = errors.New("unknown environment")

// environment returns the configured environment, falling back to the
// project's default one. An explicitly selected environment must be declared
// by the project.
func (a *App) environment(p *Project) (string, error) {
	name := a.config.Environment
	if name == "" {
		return p.DefaultEnvironment, nil
	}
	for _, env := range p.Environments {
		if env == name {
			a.logger.Debug("Using environment.", "environment", name)
			return name, nil
		}
	}
	declared := "it declares none"
	if len(p.Environments) > 0 {
		declared = "declared: " + strings.Join(p.Environments, ", ")
	}
	return "", fmt.Errorf("%w %q: project %s does not declare it (%s)", ErrUnknownEnvironment, name, p.Name, declared)
}

// reportDiagnostics writes diags to the error writer. It returns an error if
// any of them is an error; warnings alone return nil.
func (a *App) reportDiagnostics(diags hcl.Diagnostics) error {
	if len(diags) == 0 {
		return nil
	}

	files := diagnosticFiles(diags)
	w := hcl.NewDiagnosticTextWriter(a.errW, files, 100, a.config.Color)
	if err := w.WriteDiagnostics(diags); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}

	if !diags.HasErrors() {
		return nil
	}
	count := 0
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			count++
		}
	}
	return fmt.Errorf("configuration has %d error(s)", count)
}

// diagnosticFiles reads the sources the diagnostics point at so that the
// text writer can show snippets. Unreadable files are left out.
func diagnosticFiles(diags hcl.Diagnostics) map[string]*hcl.File {
	files := make(map[string]*hcl.File)
	for _, d := range diags {
		if d.Subject == nil || d.Subject.Filename == "" {
			continue
		}
		name := d.Subject.Filename
		if _, seen := files[name]; seen {
			continue
		}
		data, err := os.ReadFile(name)
		if err != nil {
			files[name] = nil
			continue
		}
		files[name] = &hcl.File{Bytes: data}
	}
	for name, f := range files {
		if f == nil {
			delete(files, name)
		}
	}
	return files
}
