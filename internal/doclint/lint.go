package doclint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/actionref/internal/docs"
	"github.com/specialistvlad/actionref/internal/keypath"
	"github.com/specialistvlad/actionref/internal/schema"
	"gopkg.in/yaml.v3"
)

// Rule names.
const (
	RuleKeySections  = "key-sections"
	RuleKeyTable     = "key-table"
	RuleYAMLDefaults = "yaml-defaults"
	RuleOutputRefs   = "output-refs"
	RuleIndexLinks   = "index-links"
	RulePage         = "page"
)

// Finding is one problem found on a page.
type Finding struct {
	Rule    string
	Path    string
	Line    int
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: [%s] %s", f.Path, f.Line, f.Rule, f.Message)
}

// Lint runs every rule on a parsed page. The schema may be nil, in which case
// only the rules that compare the page with itself run.
func Lint(page *ParsedPage, s *schema.ActionSchema) []Finding {
	var findings []Finding
	findings = append(findings, checkKeySections(page, s)...)
	findings = append(findings, checkKeyTables(page, s)...)
	findings = append(findings, checkYAMLDefaults(page)...)
	findings = append(findings, checkOutputRefs(page)...)
	SortFindings(findings)
	return findings
}

// SortFindings orders findings by path, line and rule.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// bare drops the array markers from a path. The YAML block cannot show that
// an empty key holds an array, so both sides are compared without them.
func bare(path string) string {
	return strings.ReplaceAll(path, "[]", "")
}

func checkKeySections(page *ParsedPage, s *schema.ActionSchema) []Finding {
	var findings []Finding

	sections := make(map[string]*Section, len(page.Keys))
	for _, sec := range page.Keys {
		if prev, dup := sections[bare(sec.Name)]; dup {
			findings = append(findings, Finding{
				Rule:    RuleKeySections,
				Line:    sec.Line,
				Message: fmt.Sprintf("key `%s` is documented twice (first at line %d)", sec.Name, prev.Line),
			})
			continue
		}
		sections[bare(sec.Name)] = sec
	}

	inYAML := make(map[string]bool, len(page.YAMLKeys))
	for _, k := range page.YAMLKeys {
		inYAML[bare(k.Path)] = true
		if _, ok := sections[bare(k.Path)]; !ok {
			findings = append(findings, Finding{
				Rule:    RuleKeySections,
				Line:    k.Line,
				Message: fmt.Sprintf("key `%s` from the YAML block has no `### %s` section", k.Path, k.Path),
			})
		}
	}
	for _, sec := range page.Keys {
		if !inYAML[bare(sec.Name)] {
			findings = append(findings, Finding{
				Rule:    RuleKeySections,
				Line:    sec.Line,
				Message: fmt.Sprintf("section `%s` does not appear in the YAML block", sec.Name),
			})
		}
	}

	if s == nil {
		return findings
	}

	documented := make(map[string]bool, len(page.Keys))
	for _, sec := range page.Keys {
		documented[sec.Name] = true
		p, err := keypath.Parse(sec.Name)
		if err != nil || schema.Lookup(s.AllKeys(), p) == nil {
			findings = append(findings, Finding{
				Rule:    RuleKeySections,
				Line:    sec.Line,
				Message: fmt.Sprintf("section `%s` is not a key of %s", sec.Name, s.ID()),
			})
		}
	}
	for _, fk := range schema.Flatten(s.AllKeys()) {
		if !documented[fk.Path.String()] {
			findings = append(findings, Finding{
				Rule:    RuleKeySections,
				Line:    page.YAMLLine,
				Message: fmt.Sprintf("key `%s` of %s is not documented", fk.Path, s.ID()),
			})
		}
	}
	return findings
}

func checkKeyTables(page *ParsedPage, s *schema.ActionSchema) []Finding {
	var findings []Finding
	add := func(sec *Section, format string, args ...any) {
		line := sec.Line
		if sec.Table != nil {
			line = sec.Table.Line
		}
		findings = append(findings, Finding{
			Rule:    RuleKeyTable,
			Line:    line,
			Message: fmt.Sprintf("`%s`: ", sec.Name) + fmt.Sprintf(format, args...),
		})
	}

	for _, sec := range page.Keys {
		if sec.Table == nil {
			add(sec, "section has no table")
			continue
		}
		typ, hasType := sec.Table.Cell("Type")
		required, hasRequired := sec.Table.Cell("Required")
		if !hasType {
			add(sec, "table has no Type column")
		}
		if !hasRequired {
			add(sec, "table has no Required column")
		} else if required != "Yes" && required != "No" {
			add(sec, "Required must be Yes or No, got %q", required)
		}

		if s == nil {
			continue
		}
		p, err := keypath.Parse(sec.Name)
		if err != nil {
			continue
		}
		k := schema.Lookup(s.AllKeys(), p)
		if k == nil {
			continue
		}

		if hasType && typ != k.Type.String() {
			add(sec, "type is %s, but the schema says %s", typ, k.Type.String())
		}
		if hasRequired && required != yesNo(k.Required) {
			add(sec, "Required is %s, but the schema says %s", required, yesNo(k.Required))
		}

		def, hasDefault := sec.Table.Cell("Default")
		switch {
		case k.Default == nil && hasDefault:
			add(sec, "table shows default %s, but the schema has none", def)
		case k.Default != nil && !hasDefault:
			add(sec, "table has no default, but the schema default is %s", schema.FormatValue(*k.Default))
		case k.Default != nil && def != schema.FormatValue(*k.Default):
			add(sec, "default is %s, but the schema default is %s", def, schema.FormatValue(*k.Default))
		}

		allowed, hasAllowed := sec.Table.Cell("Allowed Values")
		if len(k.AllowedValues) > 0 && allowed != schema.FormatValues(k.AllowedValues) {
			add(sec, "allowed values are %q, but the schema allows %s", allowed, schema.FormatValues(k.AllowedValues))
		} else if len(k.AllowedValues) == 0 && hasAllowed {
			add(sec, "table lists allowed values, but the schema has none")
		}
	}
	return findings
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func checkYAMLDefaults(page *ParsedPage) []Finding {
	sections := make(map[string]*Section, len(page.Keys))
	for _, sec := range page.Keys {
		sections[bare(sec.Name)] = sec
	}

	var findings []Finding
	for _, k := range page.YAMLKeys {
		sec, ok := sections[bare(k.Path)]
		if !ok || sec.Table == nil || k.Nested {
			continue
		}

		cell, hasDefault := sec.Table.Cell("Default")
		switch {
		case !hasDefault && k.Value != nil:
			findings = append(findings, Finding{
				Rule:    RuleYAMLDefaults,
				Line:    k.Line,
				Message: fmt.Sprintf("`%s` has the value %v in the YAML block, but its table has no default", k.Path, k.Value),
			})
		case hasDefault:
			var def any
			if err := yaml.Unmarshal([]byte(cell), &def); err != nil {
				findings = append(findings, Finding{
					Rule:    RuleYAMLDefaults,
					Line:    sec.Table.Line,
					Message: fmt.Sprintf("`%s` has an unparsable default %q: %v", k.Path, cell, err),
				})
				continue
			}
			if !cmp.Equal(def, k.Value) {
				findings = append(findings, Finding{
					Rule:    RuleYAMLDefaults,
					Line:    k.Line,
					Message: fmt.Sprintf("`%s` is %v in the YAML block, but its default is %s", k.Path, k.Value, cell),
				})
			}
		}
	}
	return findings
}

func checkOutputRefs(page *ParsedPage) []Finding {
	if page.Kind == "" {
		return nil
	}
	ns := page.Kind.Namespace()
	prefix := "${actions." + ns + ".<name>."

	var exact []string
	var wildcards []string
	for _, sec := range page.Outputs {
		if !strings.HasPrefix(sec.Name, prefix) || !strings.HasSuffix(sec.Name, "}") {
			continue
		}
		field := strings.TrimSuffix(strings.TrimPrefix(sec.Name, prefix), "}")
		if strings.HasSuffix(field, ".*") {
			wildcards = append(wildcards, strings.TrimSuffix(field, "*"))
			continue
		}
		exact = append(exact, field)
	}

	var findings []Finding
	for _, ref := range page.References {
		parts := strings.SplitN(strings.TrimSuffix(strings.TrimPrefix(ref.Text, "${actions."), "}"), ".", 3)
		if len(parts) < 3 || parts[0] != ns {
			// Other kinds, and the action itself, are documented elsewhere.
			continue
		}
		field := parts[2]
		if matchesOutput(field, exact, wildcards) {
			continue
		}
		findings = append(findings, Finding{
			Rule:    RuleOutputRefs,
			Line:    ref.Line,
			Message: fmt.Sprintf("%s refers to output `%s`, which has no `%s` section", ref.Text, field, docs.OutputKey(page.Kind, field)),
		})
	}
	return findings
}

func matchesOutput(field string, exact, wildcards []string) bool {
	for _, e := range exact {
		if field == e || strings.HasPrefix(field, e+".") {
			return true
		}
	}
	for _, w := range wildcards {
		if strings.HasPrefix(field, w) {
			return true
		}
	}
	return false
}
