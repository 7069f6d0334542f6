// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/schema"
)

// Load parses every .hcl file in fsys and returns the action schemas it
// defines, tagged with the given provider name.
func Load(ctx context.Context, fsys fs.FS, provider string) ([]*schema.ActionSchema, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading schema manifests.", "provider", provider)

	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk manifests for provider %s: %w", provider, err)
	}

	if len(files) == 0 {
		logger.Warn("No .hcl manifest files found.", "provider", provider)
		return nil, nil
	}

	parser := hclparse.NewParser()
	var allDiags hcl.Diagnostics
	var schemas []*schema.ActionSchema
	seen := make(map[string]string)

	for _, file := range files {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", file, err)
		}

		filename := path.Join(provider, file)
		hclFile, diags := parser.ParseHCL(src, filename)
		allDiags = append(allDiags, diags...)
		if diags.HasErrors() {
			continue
		}

		parsed, diags := ParseFile(ctx, hclFile, filename, provider)
		allDiags = append(allDiags, diags...)

		for _, s := range parsed {
			if prev, dup := seen[s.ID()]; dup {
				allDiags = append(allDiags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate action type",
					Detail:   fmt.Sprintf("The %s type %q is defined in both %s and %s.", s.Kind, s.Type, prev, filename),
				})
				continue
			}
			seen[s.ID()] = filename
			schemas = append(schemas, s)
		}
	}

	if allDiags.HasErrors() {
		return nil, fmt.Errorf("failed to load manifests for provider %s: %w", provider, allDiags)
	}

	logger.Debug("Schema manifests loaded.", "provider", provider, "files", len(files), "schemas", len(schemas))
	return schemas, nil
}

// manifestRoot defines the top-level structure of a manifest file.
type manifestRoot struct {
	Actions []*hclAction `hcl:"action,block"`
}

// hclAction represents a single 'action' block for decoding purposes.
type hclAction struct {
	Kind string   `hcl:"kind,label"`
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

// actionBodySchema defines the schema for the body of an 'action' block.
var actionBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "docs_url"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

// ParseFile decodes an HCL file that contains one or more 'action' blocks.
func ParseFile(ctx context.Context, hclFile *hcl.File, filename, provider string) ([]*schema.ActionSchema, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing action schemas from manifest.", "file", filename)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		}}
	}

	root := &manifestRoot{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, root)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	schemas := make([]*schema.ActionSchema, 0, len(root.Actions))
	for _, block := range root.Actions {
		kind, err := schema.ParseKind(block.Kind)
		if err != nil {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid action kind",
				Detail:   err.Error(),
				Subject:  block.Body.MissingItemRange().Ptr(),
			})
			continue
		}

		if err := schema.ValidateName(block.Type); err != nil {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid action type",
				Detail:   err.Error(),
				Subject:  block.Body.MissingItemRange().Ptr(),
			})
			continue
		}

		content, contentDiags := block.Body.Content(actionBodySchema)
		allDiags = append(allDiags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		s := &schema.ActionSchema{
			Kind:       kind,
			Type:       block.Type,
			Provider:   provider,
			SourceFile: filename,
		}

		allDiags = append(allDiags, decodeString(content.Attributes, "description", &s.Description)...)
		allDiags = append(allDiags, decodeString(content.Attributes, "docs_url", &s.DocsURL)...)

		var fieldDiags hcl.Diagnostics
		s.Spec, fieldDiags = parseFields(content.Blocks)
		allDiags = append(allDiags, fieldDiags...)

		var outputDiags hcl.Diagnostics
		s.Outputs, outputDiags = parseOutputs(content.Blocks)
		allDiags = append(allDiags, outputDiags...)

		schemas = append(schemas, s)
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}

	logger.Debug("Successfully parsed action schemas.", "file", filename, "count", len(schemas))
	return schemas, allDiags
}

// decodeString decodes an optional string attribute into target.
func decodeString(attrs hcl.Attributes, name string, target *string) hcl.Diagnostics {
	attr, exists := attrs[name]
	if !exists {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, target)
}

// decodeBool decodes an optional bool attribute into target.
func decodeBool(attrs hcl.Attributes, name string, target *bool) hcl.Diagnostics {
	attr, exists := attrs[name]
	if !exists {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, target)
}
