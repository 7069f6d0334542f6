package docs

import (
	"fmt"
	"path"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/specialistvlad/actionref/internal/keypath"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// WrapWidth is the column at which YAML comments are wrapped.
const WrapWidth = 116

// IndexFile is the name of the index page.
const IndexFile = "README.md"

// Section headings shared with the doc linter.
const (
	HeadingDescription = "Description"
	HeadingKeys        = "Configuration Keys"
	HeadingOutputs     = "Outputs"
)

// PagePath returns the slash-separated path of a schema's page relative to the
// docs directory, e.g. "Run/container.md".
func PagePath(s *schema.ActionSchema) string {
	return path.Join(string(s.Kind), s.Type+".md")
}

// Title returns the page title, e.g. "`container` Run".
func Title(s *schema.ActionSchema) string {
	return fmt.Sprintf("`%s` %s", s.Type, s.Kind)
}

// OutputKey returns the template accessor documented for an output, e.g.
// "${actions.run.<name>.outputs.log}".
func OutputKey(kind schema.Kind, output string) string {
	return fmt.Sprintf("${actions.%s.<name>.%s}", kind.Namespace(), output)
}

// RenderPage renders the reference page of one action type.
func RenderPage(s *schema.ActionSchema) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("cannot render a page for a nil schema")
	}

	keys := s.AllKeys()
	var b strings.Builder

	fmt.Fprintf(&b, "---\ntitle: %q\ntocTitle: %q\n---\n\n", Title(s), Title(s))
	fmt.Fprintf(&b, "# %s\n\n", Title(s))

	fmt.Fprintf(&b, "## %s\n\n", HeadingDescription)
	if desc := strings.TrimSpace(s.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	if s.DocsURL != "" {
		fmt.Fprintf(&b, "See the [provider documentation](%s) for more details.\n\n", s.DocsURL)
	}

	fmt.Fprintf(&b, "## %s\n\n", HeadingKeys)
	b.WriteString("The YAML block below lists every key of the action. The values are the defaults.\n\n")
	b.WriteString("```yaml\n")
	writeYAMLKeys(&b, keys, "", "")
	b.WriteString("```\n")

	for _, fk := range schema.Flatten(keys) {
		b.WriteString("\n")
		if err := writeKeySection(&b, fk); err != nil {
			return nil, fmt.Errorf("failed to render key %s of %s: %w", fk.Path, s.ID(), err)
		}
	}

	fmt.Fprintf(&b, "\n## %s\n\n", HeadingOutputs)
	fmt.Fprintf(&b, "The following keys are available via the `${actions.%s.<name>}` template string key for `%s` action.\n",
		s.Kind.Namespace(), s.Type)
	for _, o := range s.AllOutputs() {
		fmt.Fprintf(&b, "\n### `%s`\n\n", OutputKey(s.Kind, o.Name))
		if desc := strings.TrimSpace(o.Description); desc != "" {
			b.WriteString(desc)
			b.WriteString("\n\n")
		}
		writeTable(&b, []string{"Type"}, [][]string{{code(o.Type.String())}})
	}

	return []byte(b.String()), nil
}

// writeYAMLKeys renders keys as YAML with their descriptions as comments.
// The first line written uses first as its prefix instead of indent, which
// places the `- ` marker of an array item.
func writeYAMLKeys(b *strings.Builder, keys []*schema.Key, indent, first string) {
	prefix := func() string {
		if first != "" {
			p := first
			first = ""
			return p
		}
		return indent
	}

	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, line := range commentLines(k.Description, len(indent)) {
			b.WriteString(strings.TrimRight(prefix()+line, " "))
			b.WriteString("\n")
		}

		b.WriteString(prefix())
		b.WriteString(k.Name)
		b.WriteString(":")

		switch {
		case len(k.Children) > 0 && k.Type.IsArray():
			b.WriteString("\n")
			writeYAMLKeys(b, k.Children, indent+"    ", indent+"  - ")
		case len(k.Children) > 0:
			b.WriteString("\n")
			writeYAMLKeys(b, k.Children, indent+"  ", "")
		case k.Default != nil:
			b.WriteString(" ")
			b.WriteString(schema.FormatValue(*k.Default))
			b.WriteString("\n")
		default:
			b.WriteString("\n")
		}
	}
}

// commentLines wraps a description into `# ` comment lines that fit within
// WrapWidth when indented by indent columns.
func commentLines(desc string, indent int) []string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil
	}
	width := WrapWidth - indent - 2
	if width < 20 {
		width = 20
	}

	var out []string
	for _, para := range strings.Split(desc, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			out = append(out, "#")
			continue
		}
		for _, line := range strings.Split(wordwrap.WrapString(para, uint(width)), "\n") {
			out = append(out, "# "+line)
		}
	}
	return out
}

func writeKeySection(b *strings.Builder, fk schema.FlatKey) error {
	k := fk.Key
	fmt.Fprintf(b, "### %s\n\n", code(fk.Path.String()))

	if len(fk.Path) > 1 {
		crumbs := make([]string, 0, len(fk.Path))
		for i := range fk.Path[:len(fk.Path)-1] {
			parent := fk.Path[:i+1]
			crumbs = append(crumbs, fmt.Sprintf("[%s](#%s)", fk.Path[i].Name, parent.Anchor()))
		}
		crumbs = append(crumbs, fk.Path[len(fk.Path)-1].Name)
		b.WriteString(strings.Join(crumbs, " > "))
		b.WriteString("\n\n")
	}

	if k.Deprecated {
		b.WriteString("**Deprecated**: this key will be removed in a future release.\n\n")
	}
	if desc := strings.TrimSpace(k.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	header := []string{"Type"}
	row := []string{code(k.Type.String())}
	if len(k.AllowedValues) > 0 {
		header = append(header, "Allowed Values")
		row = append(row, schema.FormatValues(k.AllowedValues))
	}
	if k.Default != nil {
		header = append(header, "Default")
		row = append(row, code(schema.FormatValue(*k.Default)))
	}
	header = append(header, "Required")
	row = append(row, yesNo(k.Required))
	writeTable(b, header, [][]string{row})

	if k.Example != nil {
		b.WriteString("\nExample:\n\n```yaml\n")
		writeExample(b, fk.Path, *k.Example)
		b.WriteString("```\n")
	}
	return nil
}

// writeExample nests the example value below every segment of p.
func writeExample(b *strings.Builder, p keypath.Path, example cty.Value) {
	indent := ""
	item := false
	for i, seg := range p {
		prefix := indent
		if item {
			prefix = indent + "- "
			indent += "  "
		}
		if i == len(p)-1 {
			fmt.Fprintf(b, "%s%s: %s\n", prefix, seg.Name, schema.FormatValue(example))
			return
		}
		fmt.Fprintf(b, "%s%s:\n", prefix, seg.Name)
		indent += "  "
		item = seg.Array
	}
}

// writeTable renders a Markdown table with padded columns. Pipes in cells,
// e.g. in union types, are escaped.
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	escaped := make([][]string, len(rows))
	for i, row := range rows {
		escaped[i] = make([]string, len(row))
		for j, cell := range row {
			escaped[i][j] = strings.ReplaceAll(cell, "|", `\|`)
		}
	}
	rows = escaped

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(len(h), 3)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			fmt.Fprintf(b, " %-*s |", widths[i], cell)
		}
		b.WriteString("\n")
	}

	writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
}

func code(s string) string {
	return "`" + s + "`"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// RenderIndex renders the index page linking every schema page, grouped by
// kind.
func RenderIndex(schemas []*schema.ActionSchema) []byte {
	var b strings.Builder
	b.WriteString("---\ntitle: Action Types\norder: 1\n---\n\n# Action Types\n")

	for _, kind := range schema.Kinds {
		var links []string
		for _, s := range schemas {
			if s.Kind == kind {
				links = append(links, fmt.Sprintf("* [%s](./%s)", Title(s), PagePath(s)))
			}
		}
		if len(links) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", kind)
		b.WriteString(strings.Join(links, "\n"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}
