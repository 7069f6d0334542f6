package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/fsutil"
	"github.com/specialistvlad/actionref/internal/schema"
	"golang.org/x/sync/errgroup"
)

// SchemaSource lists the action types to document.
type SchemaSource interface {
	Schemas() []*schema.ActionSchema
}

// Render renders every page and the index in memory, keyed by their
// slash-separated path relative to the docs directory.
func Render(src SchemaSource) (map[string][]byte, error) {
	schemas := src.Schemas()
	pages := make(map[string][]byte, len(schemas)+1)
	for _, s := range schemas {
		page, err := RenderPage(s)
		if err != nil {
			return nil, err
		}
		pages[PagePath(s)] = page
	}
	pages[IndexFile] = RenderIndex(schemas)
	return pages, nil
}

// Generate writes every page and the index below outDir using at most
// workers concurrent writers. It returns the written paths, sorted.
func Generate(ctx context.Context, src SchemaSource, outDir string, workers int) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Generating reference docs.", "outDir", outDir, "workers", workers)

	pages, err := Render(src)
	if err != nil {
		return nil, err
	}

	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Every target is checked before anything is written.
	targets := make(map[string]string, len(pages))
	for rel := range pages {
		target, err := pageTarget(outDir, rel)
		if err != nil {
			return nil, err
		}
		targets[rel] = target
	}

	written := make([]string, 0, len(pages))
	for _, rel := range sortedKeys(pages) {
		target := targets[rel]
		data := pages[rel]
		written = append(written, target)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", target, err)
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			logger.Debug("Wrote reference page.", "path", target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Reference docs generated.", "outDir", outDir, "pages", len(written))
	return written, nil
}

// ErrStale is wrapped by every error Check reports for an out-of-date file.
var ErrStale = errors.New("reference docs are out of date")

// Check renders the docs in memory and compares them with the files below
// outDir. Missing, changed and orphaned pages are all reported.
func Check(ctx context.Context, src SchemaSource, outDir string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Checking reference docs.", "outDir", outDir)

	pages, err := Render(src)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, rel := range sortedKeys(pages) {
		target, err := pageTarget(outDir, rel)
		if err != nil {
			return err
		}
		existing, err := os.ReadFile(target)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result = multierror.Append(result, fmt.Errorf("%w: %s is missing", ErrStale, target))
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("failed to read %s: %w", target, err))
		case !bytes.Equal(existing, pages[rel]):
			result = multierror.Append(result, fmt.Errorf("%w: %s differs from the generated page", ErrStale, target))
		}
	}

	if info, err := os.Stat(outDir); err == nil && info.IsDir() {
		found, err := fsutil.FindFilesByExtension(outDir, ".md")
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", outDir, err)
		}
		for _, f := range found {
			rel, err := filepath.Rel(outDir, f)
			if err != nil {
				continue
			}
			if _, ok := pages[filepath.ToSlash(rel)]; !ok {
				result = multierror.Append(result, fmt.Errorf("%w: %s is not generated by any action type", ErrStale, f))
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	logger.Info("Reference docs are up to date.", "pages", len(pages))
	return nil
}

// pageTarget joins a page path to outDir and rejects paths that leave it.
func pageTarget(outDir, rel string) (string, error) {
	target := filepath.Join(outDir, filepath.FromSlash(rel))
	r, err := filepath.Rel(outDir, target)
	if err != nil || path.IsAbs(rel) || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("page %s resolves outside the docs directory %s", rel, outDir)
	}
	return target, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
