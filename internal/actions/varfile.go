// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// LoadVarfile reads a variables file. `.yml`, `.yaml` and `.json` files must
// hold a single mapping; `.env` files, files named `.env.*` and files without
// an extension are parsed as dotenv.
func LoadVarfile(path string) (map[string]cty.Value, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" || strings.HasPrefix(filepath.Base(path), ".env") {
		ext = ".env"
	}

	switch ext {
	case ".env":
		env, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read varfile %s: %w", path, err)
		}
		vars := make(map[string]cty.Value, len(env))
		for k, v := range env {
			vars[k] = cty.StringVal(v)
		}
		return vars, nil

	case ".yml", ".yaml", ".json":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read varfile %s: %w", path, err)
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(src, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse varfile %s: %w", path, err)
		}
		if len(doc.Content) == 0 {
			return map[string]cty.Value{}, nil
		}
		val, diags := newConverter(path).convert(&doc, "")
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse varfile %s: %w", path, diags)
		}
		if !val.Type().IsObjectType() {
			return nil, fmt.Errorf("varfile %s must contain a mapping at the top level", path)
		}
		vars := val.AsValueMap()
		if vars == nil {
			vars = map[string]cty.Value{}
		}
		return vars, nil

	default:
		return nil, fmt.Errorf("unsupported varfile format %q for %s: use .env, .yml, .yaml or .json", ext, path)
	}
}

// ResolveVariables merges base, the action's `variables` and its varfiles,
// in increasing order of precedence.
func (a *Action) ResolveVariables(base map[string]cty.Value) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(base)+len(a.Variables))
	for k, v := range base {
		vars[k] = v
	}
	for k, v := range a.Variables {
		vars[k] = v
	}

	for _, vf := range a.Varfiles {
		path := vf.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.FSInfo.Dir, filepath.FromSlash(path))
		}
		fileVars, err := LoadVarfile(path)
		if err != nil {
			if vf.Optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("action %s: %w", a.Ref(), err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	return vars, nil
}
