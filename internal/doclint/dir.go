package doclint

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc/pool"
	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/docs"
	"github.com/specialistvlad/actionref/internal/fsutil"
	"github.com/specialistvlad/actionref/internal/schema"
)

// SchemaSource finds the schema a page documents.
type SchemaSource interface {
	Schema(kind schema.Kind, typ string) (*schema.ActionSchema, bool)
}

// LintFile lints a single page. The schema is looked up by the page's
// location, `<Kind>/<type>.md` relative to root. src may be nil.
func LintFile(src SchemaSource, root, file string) ([]Finding, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)

	var findings []Finding
	if path.Base(rel) == docs.IndexFile {
		findings = lintIndex(data, root, filepath.Dir(file))
	} else {
		findings, err = lintPage(src, rel, data)
		if err != nil {
			return nil, fmt.Errorf("failed to lint %s: %w", file, err)
		}
	}

	for i := range findings {
		findings[i].Path = file
	}
	return findings, nil
}

func lintPage(src SchemaSource, rel string, data []byte) ([]Finding, error) {
	page, err := ParsePage(data)
	if err != nil {
		return nil, err
	}

	var s *schema.ActionSchema
	var findings []Finding
	if src != nil {
		s, findings = lookupSchema(src, rel, page)
	}
	return append(findings, Lint(page, s)...), nil
}

// lookupSchema resolves the schema of a page from its location and checks
// that the page's title agrees with it.
func lookupSchema(src SchemaSource, rel string, page *ParsedPage) (*schema.ActionSchema, []Finding) {
	dir, file := path.Split(rel)
	kind, err := schema.ParseKind(strings.TrimSuffix(dir, "/"))
	if err != nil {
		return nil, []Finding{{Rule: RulePage, Line: 1, Message: fmt.Sprintf("page is not in a kind directory: %v", err)}}
	}
	typ := strings.TrimSuffix(file, ".md")

	s, ok := src.Schema(kind, typ)
	if !ok {
		return nil, []Finding{{Rule: RulePage, Line: 1, Message: fmt.Sprintf("no registered action type %s.%s matches this page", kind, typ)}}
	}
	if page.Kind != kind || page.Type != typ {
		return s, []Finding{{Rule: RulePage, Line: 1, Message: fmt.Sprintf("page title does not match %s", docs.Title(s))}}
	}
	return s, nil
}

// lintIndex checks that every relative link of the index page points to an
// existing file.
func lintIndex(data []byte, root, dir string) []Finding {
	page, err := ParsePage(data)
	if err != nil {
		return []Finding{{Rule: RuleIndexLinks, Line: 1, Message: err.Error()}}
	}

	var findings []Finding
	for _, link := range page.Links {
		u, err := url.Parse(link.Destination)
		if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(u.Path))
		if rel, err := filepath.Rel(root, target); err != nil || strings.HasPrefix(rel, "..") {
			findings = append(findings, Finding{Rule: RuleIndexLinks, Line: link.Line, Message: fmt.Sprintf("link %s points outside the docs directory", link.Destination)})
			continue
		}
		if _, err := os.Stat(target); err != nil {
			findings = append(findings, Finding{Rule: RuleIndexLinks, Line: link.Line, Message: fmt.Sprintf("dead link %s", link.Destination)})
		}
	}
	return findings
}

// LintDir lints every Markdown page below dir with at most workers pages in
// flight. Findings are sorted by path and line.
func LintDir(ctx context.Context, src SchemaSource, dir string, workers int) ([]Finding, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Linting reference docs.", "dir", dir, "workers", workers)

	files, err := fsutil.FindFilesByExtension(dir, ".md")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages in %s: %w", dir, err)
	}
	if workers < 1 {
		workers = 1
	}

	type fileResult struct {
		findings []Finding
		err      error
	}

	p := pool.NewWithResults[fileResult]().WithMaxGoroutines(workers)
	for _, file := range files {
		p.Go(func() fileResult {
			if err := ctx.Err(); err != nil {
				return fileResult{err: err}
			}
			findings, err := LintFile(src, dir, file)
			return fileResult{findings: findings, err: err}
		})
	}

	// Every page is linted even when some cannot be read.
	var findings []Finding
	var errs *multierror.Error
	for _, r := range p.Wait() {
		findings = append(findings, r.findings...)
		if r.err != nil {
			errs = multierror.Append(errs, r.err)
		}
	}
	SortFindings(findings)
	if err := errs.ErrorOrNil(); err != nil {
		return findings, err
	}

	logger.Info("Reference docs linted.", "pages", len(files), "findings", len(findings))
	return findings, nil
}
