package doclint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/actionref/internal/docs"
	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/specialistvlad/actionref/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func ptr(v cty.Value) *cty.Value { return &v }

func containerRun() *schema.ActionSchema {
	return &schema.ActionSchema{
		Kind:        schema.KindRun,
		Type:        "container",
		Description: "Run a command in a container. The image is available as `${actions.run.<name>.outputs.log}`.",
		Spec: []*schema.Key{
			{Name: "image", Type: schema.String, Description: "The image to run.", Required: true},
			{
				Name:          "protocol",
				Type:          schema.String,
				Description:   "The protocol.",
				Default:       ptr(cty.StringVal("TCP")),
				AllowedValues: []cty.Value{cty.StringVal("TCP"), cty.StringVal("UDP")},
			},
			{
				Name:        "ports",
				Type:        schema.ArrayOf(schema.Object),
				Description: "Ports to expose.",
				Children: []*schema.Key{
					{Name: "name", Type: schema.String, Description: "The port name.", Required: true},
					{Name: "containerPort", Type: schema.Number, Description: "The container port.", Default: ptr(cty.NumberIntVal(8080))},
				},
			},
			{Name: "args", Type: schema.ArrayOf(schema.UnionOf(schema.String, schema.Number)), Description: "Arguments."},
		},
		Outputs: []*schema.Output{{Name: "log", Type: schema.String, Description: "The log."}},
	}
}

type schemaMap map[string]*schema.ActionSchema

func (m schemaMap) Schema(kind schema.Kind, typ string) (*schema.ActionSchema, bool) {
	s, ok := m[string(kind)+"."+typ]
	return s, ok
}

func (m schemaMap) Schemas() []*schema.ActionSchema {
	out := make([]*schema.ActionSchema, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	return out
}

func render(t *testing.T, s *schema.ActionSchema) []byte {
	t.Helper()
	page, err := docs.RenderPage(s)
	require.NoError(t, err)
	return page
}

func md(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestParsePage_GeneratedPage(t *testing.T) {
	t.Parallel()
	s := containerRun()

	page, err := ParsePage(render(t, s))
	require.NoError(t, err)

	assert.Equal(t, schema.KindRun, page.Kind)
	assert.Equal(t, "container", page.Type)
	assert.Greater(t, page.YAMLLine, 0)
	assert.Len(t, page.Keys, len(schema.Flatten(s.AllKeys())))
	assert.Len(t, page.Outputs, len(s.AllOutputs()))

	var paths []string
	for _, k := range page.YAMLKeys {
		paths = append(paths, k.Path)
	}
	assert.Contains(t, paths, "spec.ports[]")
	assert.Contains(t, paths, "spec.ports[].containerPort")
	assert.Contains(t, paths, "dependencies[]")

	var args *Section
	for _, sec := range page.Keys {
		if sec.Name == "spec.args[]" {
			args = sec
		}
	}
	require.NotNil(t, args)
	typ, ok := args.Table.Cell("Type")
	require.True(t, ok)
	assert.Equal(t, "array[string | number]", typ, "escaped pipes are restored")

	require.NotEmpty(t, page.References)
	assert.Equal(t, "${actions.run.<name>.outputs.log}", page.References[0].Text)
}

func TestParsePage_Titles(t *testing.T) {
	t.Parallel()

	page, err := ParsePage(md("# `exec` Build", "", "Runs a command."))
	require.NoError(t, err)
	assert.Equal(t, schema.KindBuild, page.Kind)
	assert.Equal(t, "exec", page.Type)

	page, err = ParsePage(md("#", "", "## Keys"))
	require.NoError(t, err, "an empty title is not a crash")
	assert.Empty(t, page.Type)
}

func TestLint_GeneratedPageIsClean(t *testing.T) {
	t.Parallel()
	s := containerRun()
	page, err := ParsePage(render(t, s))
	require.NoError(t, err)

	assert.Empty(t, Lint(page, nil))
	assert.Empty(t, Lint(page, s))
}

func TestLint_SelfConsistency(t *testing.T) {
	t.Parallel()

	src := md(
		"---",
		"title: \"`exec` Run\"",
		"---",
		"",
		"# `exec` Run",
		"",
		"## Description",
		"",
		"Runs `${actions.run.<name>.outputs.missing}`, `${actions.run.<name>.outputs.log}` and `${actions.build.api.outputs.x}`.",
		"",
		"## Configuration Keys",
		"",
		"```yaml",
		"# The command.",
		"command: [\"echo\"]",
		"",
		"timeout: 600",
		"",
		"extra:",
		"```",
		"",
		"### `command[]`",
		"",
		"| Type            | Default    | Required |",
		"| --------------- | ---------- | -------- |",
		"| `array[string]` | `[\"echo\"]` | Yes      |",
		"",
		"### `timeout`",
		"",
		"| Type     | Default | Required |",
		"| -------- | ------- | -------- |",
		"| `number` | `300`   | Maybe    |",
		"",
		"### `orphan`",
		"",
		"Nothing here.",
		"",
		"## Outputs",
		"",
		"### `${actions.run.<name>.outputs.log}`",
		"",
		"| Type     |",
		"| -------- |",
		"| `string` |",
	)

	page, err := ParsePage(src)
	require.NoError(t, err)
	findings := Lint(page, nil)

	want := []Finding{
		{Rule: RuleOutputRefs, Line: 9},
		{Rule: RuleYAMLDefaults, Line: 17},
		{Rule: RuleKeySections, Line: 19},
		{Rule: RuleKeyTable, Line: 30},
		{Rule: RuleKeySections, Line: 34},
		{Rule: RuleKeyTable, Line: 34},
	}
	require.Len(t, findings, len(want), "%v", findings)
	for i, w := range want {
		assert.Equal(t, w.Rule, findings[i].Rule, findings[i].String())
		assert.Equal(t, w.Line, findings[i].Line, findings[i].String())
	}

	assert.Contains(t, findings[0].Message, "outputs.missing")
	assert.Contains(t, findings[1].Message, "its default is 300")
	assert.Contains(t, findings[2].Message, "key `extra` from the YAML block has no `### extra` section")
	assert.Contains(t, findings[3].Message, `Required must be Yes or No, got "Maybe"`)
	assert.Contains(t, findings[4].Message, "section `orphan` does not appear in the YAML block")
	assert.Contains(t, findings[5].Message, "section has no table")
}

func TestLint_AgainstSchema(t *testing.T) {
	t.Parallel()
	page, err := ParsePage(render(t, containerRun()))
	require.NoError(t, err)

	changed := containerRun()
	changed.Spec[0].Required = false                    // image
	changed.Spec[1].Default = ptr(cty.StringVal("UDP")) // protocol
	changed.Spec[2].Children[1].Type = schema.String    // ports[].containerPort
	changed.Spec = append(changed.Spec, &schema.Key{Name: "cpu", Type: schema.Number})

	var messages []string
	for _, f := range Lint(page, changed) {
		messages = append(messages, f.Rule+": "+f.Message)
	}
	assert.ElementsMatch(t, []string{
		"key-table: `spec.image`: Required is Yes, but the schema says No",
		"key-table: `spec.protocol`: default is \"TCP\", but the schema default is \"UDP\"",
		"key-table: `spec.ports[].containerPort`: type is number, but the schema says string",
		"key-sections: key `spec.cpu` of Run.container is not documented",
	}, messages)
}

func TestLintDir(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	dir := t.TempDir()

	exec := &schema.ActionSchema{Kind: schema.KindBuild, Type: "exec", Description: "Build with a command."}
	src := schemaMap{"Run.container": containerRun(), "Build.exec": exec}
	_, err := docs.Generate(ctx, src, dir, 2)
	require.NoError(t, err)

	findings, err := LintDir(ctx, src, dir, 4)
	require.NoError(t, err)
	assert.Empty(t, findings, "generated docs must lint clean")

	t.Run("unknown page and dead link", func(t *testing.T) {
		dir := t.TempDir()
		_, err := docs.Generate(ctx, src, dir, 1)
		require.NoError(t, err)

		require.NoError(t, os.Remove(filepath.Join(dir, "Build", "exec.md")))
		stray := filepath.Join(dir, "Deploy", "gone.md")
		require.NoError(t, os.MkdirAll(filepath.Dir(stray), 0o755))
		require.NoError(t, os.WriteFile(stray, render(t, &schema.ActionSchema{Kind: schema.KindDeploy, Type: "gone"}), 0o644))

		findings, err := LintDir(ctx, src, dir, 2)
		require.NoError(t, err)
		require.Len(t, findings, 2, "%v", findings)

		assert.Equal(t, stray, findings[0].Path)
		assert.Equal(t, RulePage, findings[0].Rule)
		assert.Contains(t, findings[0].Message, "no registered action type Deploy.gone")

		assert.Equal(t, filepath.Join(dir, docs.IndexFile), findings[1].Path)
		assert.Equal(t, RuleIndexLinks, findings[1].Rule)
		assert.Contains(t, findings[1].Message, "dead link ./Build/exec.md")
	})
}
