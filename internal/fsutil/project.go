package fsutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ProjectConfigNames are the file names that may hold a project document,
// in lookup order.
var ProjectConfigNames = []string{"project.garden.yml", "garden.yml"}

// FindProjectRoot walks up from startDir until it finds a directory holding a
// config file with a `kind: Project` document.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ProjectConfigNames {
			ok, err := hasProjectDocument(filepath.Join(dir, name))
			if err != nil {
				return "", err
			}
			if ok {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a project directory (or any of the parent directories): %s", startDir)
		}
		dir = parent
	}
}

// hasProjectDocument reports whether the file exists and contains a project document.
func hasProjectDocument(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc struct {
			Kind string `yaml:"kind"`
		}
		if err := dec.Decode(&doc); err != nil {
			// io.EOF or a broken document; either way there is no project here.
			return false, nil
		}
		if doc.Kind == "Project" {
			return true, nil
		}
	}
}

// ExpandPath expands a leading "~" to the current user's home directory and
// makes the result absolute. An empty path stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return filepath.Abs(expanded)
}
