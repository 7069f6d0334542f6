package doclint

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/specialistvlad/actionref/internal/docs"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Table is a Markdown table.
type Table struct {
	Header []string
	Rows   [][]string
	Line   int
}

// Cell returns the cell of the first row in the named column.
func (t *Table) Cell(column string) (string, bool) {
	if t == nil || len(t.Rows) == 0 {
		return "", false
	}
	for i, h := range t.Header {
		if h == column && i < len(t.Rows[0]) {
			return t.Rows[0][i], true
		}
	}
	return "", false
}

// Section is a `###` heading and the first table that follows it.
type Section struct {
	// Name is the heading's text, e.g. "spec.ports[].name".
	Name  string
	Line  int
	Table *Table
}

// YAMLKey is one key of the page's YAML block.
type YAMLKey struct {
	// Path uses the docs spelling, e.g. "spec.ports[].name". A key is only
	// marked as an array when its value is a sequence.
	Path string
	Line int
	// Value is the decoded value, nil when the key is empty.
	Value any
	// Nested is set when the value holds further keys.
	Nested bool
}

// Reference is a `${actions...}` template key found in prose.
type Reference struct {
	Text string
	Line int
}

// Link is a Markdown link.
type Link struct {
	Destination string
	Line        int
}

// ParsedPage is what the rules look at.
type ParsedPage struct {
	Kind schema.Kind
	Type string

	// YAMLLine is the first line of the YAML block, 0 if there is none.
	YAMLLine   int
	YAMLKeys   []YAMLKey
	Keys       []*Section
	Outputs    []*Section
	References []Reference
	Links      []Link
}

var (
	titleRegex     = regexp.MustCompile("^`([^`]+)` (\\w+)$")
	referenceRegex = regexp.MustCompile(`\$\{actions\.[^}\s]*\}`)
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParsePage parses a reference page.
func ParsePage(src []byte) (*ParsedPage, error) {
	src = blankFrontMatter(src)
	lines := newLineIndex(src)
	doc := markdown.Parser().Parse(text.NewReader(src))

	page := &ParsedPage{}
	var h2 string
	var current *Section
	var yamlErr error

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := textOf(node, src)
			line := lines.of(firstOffset(node))
			switch node.Level {
			case 1:
				// Code spans lose their backticks in textOf.
				if node.Lines().Len() > 0 {
					seg := node.Lines().At(0)
					raw := strings.TrimSpace(string(seg.Value(src)))
					if m := titleRegex.FindStringSubmatch(raw); m != nil {
						page.Type = m[1]
						if kind, err := schema.ParseKind(m[2]); err == nil {
							page.Kind = kind
						}
					}
				}
				current = nil
			case 2:
				h2 = title
				current = nil
			case 3:
				current = &Section{Name: title, Line: line}
				switch h2 {
				case docs.HeadingKeys:
					page.Keys = append(page.Keys, current)
				case docs.HeadingOutputs:
					page.Outputs = append(page.Outputs, current)
				default:
					current = nil
				}
			default:
				current = nil
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			if h2 == docs.HeadingKeys && len(page.Keys) == 0 && page.YAMLLine == 0 && string(node.Language(src)) == "yaml" {
				if node.Lines().Len() == 0 {
					return ast.WalkSkipChildren, nil
				}
				page.YAMLLine = lines.of(node.Lines().At(0).Start)
				page.YAMLKeys, yamlErr = flattenYAML(blockText(node, src), page.YAMLLine)
			}
			return ast.WalkSkipChildren, nil

		case *east.Table:
			if current != nil && current.Table == nil {
				current.Table = parseTable(node, src)
				current.Table.Line = lines.of(firstOffset(node))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.TextBlock:
			for i := 0; i < node.Lines().Len(); i++ {
				seg := node.Lines().At(i)
				for _, m := range referenceRegex.FindAllString(string(seg.Value(src)), -1) {
					page.References = append(page.References, Reference{Text: m, Line: lines.of(seg.Start)})
				}
			}

		case *ast.Link:
			page.Links = append(page.Links, Link{Destination: string(node.Destination), Line: lines.of(firstOffset(node))})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if yamlErr != nil {
		return page, fmt.Errorf("invalid YAML block at line %d: %w", page.YAMLLine, yamlErr)
	}
	return page, nil
}

// blankFrontMatter replaces a leading `---` front matter block with spaces so
// that it is not parsed as Markdown and line numbers stay the same.
func blankFrontMatter(src []byte) []byte {
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return src
	}
	end := bytes.Index(src[4:], []byte("\n---\n"))
	if end < 0 {
		return src
	}
	end += 4 + len("\n---\n")

	out := make([]byte, len(src))
	copy(out, src)
	for i := 0; i < end; i++ {
		if out[i] != '\n' {
			out[i] = ' '
		}
	}
	return out
}

type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, c := range src {
		if c == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

// of returns the 1-based line of a byte offset.
func (l lineIndex) of(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}

// firstOffset finds the byte offset where a node's content starts.
func firstOffset(n ast.Node) int {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start
		}
		if off := firstOffset(c); off >= 0 {
			return off
		}
	}
	return -1
}

// textOf concatenates the text of a node's inline children.
func textOf(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.RawHTML:
			for i := 0; i < t.Segments.Len(); i++ {
				seg := t.Segments.At(i)
				b.Write(seg.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockText(n ast.Node, src []byte) []byte {
	var b bytes.Buffer
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		b.Write(seg.Value(src))
	}
	return b.Bytes()
}

func parseTable(t *east.Table, src []byte) *Table {
	table := &Table{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.ReplaceAll(textOf(cell, src), `\|`, "|"))
		}
		if _, ok := row.(*east.TableHeader); ok {
			table.Header = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// flattenYAML lists every key of a YAML block. Line numbers are offset by the
// block's first line.
func flattenYAML(src []byte, firstLine int) ([]YAMLKey, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var keys []YAMLKey
	seen := make(map[string]bool)
	var walk func(prefix string, n *yaml.Node) error
	walk = func(prefix string, n *yaml.Node) error {
		if n.Kind != yaml.MappingNode {
			return nil
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			name := k.Value
			if prefix != "" {
				name = prefix + "." + name
			}

			key := YAMLKey{Line: firstLine + k.Line - 1}
			var children []*yaml.Node
			switch v.Kind {
			case yaml.MappingNode:
				if len(v.Content) > 0 {
					key.Nested = true
					children = append(children, v)
				}
			case yaml.SequenceNode:
				name += "[]"
				for _, item := range v.Content {
					if item.Kind == yaml.MappingNode {
						key.Nested = true
						children = append(children, item)
					}
				}
			}
			key.Path = name

			if !key.Nested {
				if err := v.Decode(&key.Value); err != nil {
					return fmt.Errorf("line %d: %w", key.Line, err)
				}
			}
			if !seen[key.Path] {
				seen[key.Path] = true
				keys = append(keys, key)
			}
			for _, child := range children {
				if err := walk(name, child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk("", doc.Content[0]); err != nil {
		return nil, err
	}
	return keys, nil
}
