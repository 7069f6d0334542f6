// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/fsutil"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// IsConfigFile reports whether a file name holds action configs.
func IsConfigFile(name string) bool {
	switch {
	case name == "garden.yml", name == "garden.yaml":
		return true
	case strings.HasSuffix(name, ".garden.yml"), strings.HasSuffix(name, ".garden.yaml"):
		return true
	}
	return false
}

// ignoredKinds are document kinds that may share a file with actions.
var ignoredKinds = map[string]bool{
	"Module":         true,
	"Workflow":       true,
	"Command":        true,
	"ConfigTemplate": true,
	"RenderTemplate": true,
}

// Project is the result of loading a project directory.
type Project struct {
	Root               string
	Name               string
	DefaultEnvironment string
	Environments       []string
	Variables          map[string]cty.Value
	Actions            []*Action
}

// File holds the documents parsed from one config file.
type File struct {
	Actions []*Action
	Project *ProjectDoc
}

// ProjectDoc is a `kind: Project` document.
type ProjectDoc struct {
	Name               string
	DefaultEnvironment string
	Environments       []string
	Variables          map[string]cty.Value
	File               string
}

// Load finds and parses every config file below root.
func Load(ctx context.Context, root string) (*Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading action configs.", "root", root)

	files, err := fsutil.FindFiles(root, IsConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to find config files in %s: %w", root, err)
	}
	logger.Debug("Found config files.", "files", files)

	project := &Project{
		Root:      root,
		Name:      filepath.Base(root),
		Variables: map[string]cty.Value{},
	}

	var allDiags hcl.Diagnostics
	var projectDoc *ProjectDoc
	seen := make(map[Reference]*Action)

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		file, diags := ParseFile(ctx, path, src)
		allDiags = append(allDiags, diags...)
		if file == nil {
			continue
		}

		if file.Project != nil {
			if projectDoc != nil {
				allDiags = append(allDiags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Multiple project configs",
					Detail:   fmt.Sprintf("Found project documents in both %s and %s.", projectDoc.File, file.Project.File),
				})
			} else {
				projectDoc = file.Project
			}
		}

		for _, a := range file.Actions {
			if a.Name == "" {
				project.Actions = append(project.Actions, a)
				continue
			}
			if prev, dup := seen[a.Ref()]; dup {
				allDiags = append(allDiags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate action",
					Detail:   fmt.Sprintf("The action %s is defined in both %s (line %d) and %s.", a.Ref(), prev.FSInfo.File, prev.FSInfo.Line, a.FSInfo.File),
					Subject:  a.Range("name"),
				})
				continue
			}
			seen[a.Ref()] = a
			project.Actions = append(project.Actions, a)
		}
	}

	if allDiags.HasErrors() {
		return nil, fmt.Errorf("failed to load action configs: %w", allDiags)
	}

	if projectDoc != nil {
		if projectDoc.Name != "" {
			project.Name = projectDoc.Name
		}
		project.DefaultEnvironment = projectDoc.DefaultEnvironment
		project.Environments = projectDoc.Environments
		project.Variables = projectDoc.Variables
	}
	if project.DefaultEnvironment == "" && len(project.Environments) > 0 {
		project.DefaultEnvironment = project.Environments[0]
	}

	sort.SliceStable(project.Actions, func(i, j int) bool {
		return project.Actions[i].Ref().Less(project.Actions[j].Ref())
	})

	logger.Info("Action configs loaded.", "project", project.Name, "files", len(files), "actions", len(project.Actions))
	return project, nil
}

// ParseFile splits a config file into documents and converts the action and
// project documents it contains.
func ParseFile(ctx context.Context, filename string, src []byte) (*File, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	var diags hcl.Diagnostics
	file := &File{}

	dec := yaml.NewDecoder(bytes.NewReader(src))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid YAML",
				Detail:   err.Error(),
				Subject:  &hcl.Range{Filename: filename, Start: hcl.InitialPos, End: hcl.InitialPos},
			})
		}
		if len(doc.Content) == 0 {
			continue
		}

		conv := newConverter(filename)
		val, docDiags := conv.convert(&doc, "")
		diags = append(diags, docDiags...)
		if docDiags.HasErrors() || val.IsNull() {
			continue
		}
		root := doc.Content[0]
		if !val.Type().IsObjectType() {
			diags = append(diags, conv.diag(root, "Invalid document", "A config document must be a mapping."))
			continue
		}

		rawKind := asString(attr(val, "kind"))
		switch {
		case rawKind == "":
			diags = append(diags, conv.diag(root, "Missing kind", "Every config document must set `kind`."))
			continue
		case rawKind == "Project":
			file.Project = decodeProject(val, filename)
			continue
		case ignoredKinds[rawKind]:
			logger.Debug("Skipping non-action document.", "file", filename, "kind", rawKind, "line", root.Line)
			continue
		}

		kind, err := schema.ParseKind(rawKind)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown kind",
				Detail:   err.Error(),
				Subject:  rangeAt(filename, conv.pos["kind"]),
			})
			continue
		}

		// Store the canonical spelling so the allowed-values check accepts
		// `kind: build` the same way as `kind: Build`.
		attrs := val.AsValueMap()
		attrs["kind"] = cty.StringVal(string(kind))

		a := &Action{
			Kind: kind,
			Type: asString(attrs["type"]),
			Name: asString(attrs["name"]),
			Raw:  cty.ObjectVal(attrs),
			FSInfo: FSInfo{
				File: filename,
				Dir:  filepath.Dir(filename),
				Line: root.Line,
			},
			pos: conv.pos,
		}
		file.Actions = append(file.Actions, a)
	}

	logger.Debug("Parsed config file.", "file", filename, "actions", len(file.Actions))
	return file, diags
}

func decodeProject(val cty.Value, filename string) *ProjectDoc {
	p := &ProjectDoc{
		Name:               asString(attr(val, "name")),
		DefaultEnvironment: asString(attr(val, "defaultEnvironment")),
		Variables:          map[string]cty.Value{},
		File:               filename,
	}
	if vars := attr(val, "variables"); !vars.IsNull() && vars.Type().IsObjectType() {
		p.Variables = vars.AsValueMap()
		if p.Variables == nil {
			p.Variables = map[string]cty.Value{}
		}
	}
	if envs := attr(val, "environments"); !envs.IsNull() && envs.CanIterateElements() {
		for it := envs.ElementIterator(); it.Next(); {
			_, env := it.Element()
			if name := asString(attr(env, "name")); name != "" {
				p.Environments = append(p.Environments, name)
			}
		}
	}
	return p
}

func rangeAt(filename string, pos hcl.Pos) *hcl.Range {
	if pos.Line == 0 {
		pos = hcl.InitialPos
	}
	end := pos
	end.Column++
	return &hcl.Range{Filename: filename, Start: pos, End: end}
}
