package actions

import (
	"testing"

	"github.com/specialistvlad/actionref/internal/schema"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestLoadVarfile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("dotenv", func(t *testing.T) {
		path := writeFile(t, dir, "vars.env", "# comment\nIMAGE=nginx\nTAG=\"1.25\"\n")
		vars, err := LoadVarfile(path)
		require.NoError(t, err)
		require.Equal(t, "nginx", vars["IMAGE"].AsString())
		require.Equal(t, "1.25", vars["TAG"].AsString())
	})

	t.Run("dotenv without extension", func(t *testing.T) {
		path := writeFile(t, dir, ".env.local", "MODE=dev\n")
		vars, err := LoadVarfile(path)
		require.NoError(t, err)
		require.Equal(t, "dev", vars["MODE"].AsString())
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, dir, "vars.yml", "replicas: 3\nports: [80, 443]\ndebug: true\n")
		vars, err := LoadVarfile(path)
		require.NoError(t, err)
		require.True(t, vars["replicas"].RawEquals(cty.NumberIntVal(3)))
		require.Equal(t, 2, vars["ports"].LengthInt())
		require.True(t, vars["debug"].True())
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, dir, "vars.json", `{"region": "eu-west-1"}`)
		vars, err := LoadVarfile(path)
		require.NoError(t, err)
		require.Equal(t, "eu-west-1", vars["region"].AsString())
	})

	t.Run("empty yaml", func(t *testing.T) {
		path := writeFile(t, dir, "empty.yaml", "")
		vars, err := LoadVarfile(path)
		require.NoError(t, err)
		require.Empty(t, vars)
	})

	t.Run("yaml list is rejected", func(t *testing.T) {
		path := writeFile(t, dir, "list.yml", "- a\n- b\n")
		_, err := LoadVarfile(path)
		require.ErrorContains(t, err, "must contain a mapping")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "vars.toml", "a = 1\n")
		_, err := LoadVarfile(path)
		require.ErrorContains(t, err, "unsupported varfile format")
	})
}

func TestResolveVariables(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "first.env", "A=from-first\nB=from-first\n")
	writeFile(t, dir, "second.yml", "B: from-second\n")

	a := &Action{
		Kind: schema.KindDeploy,
		Name: "api",
		Variables: map[string]cty.Value{
			"A":     cty.StringVal("from-action"),
			"LOCAL": cty.StringVal("from-action"),
		},
		Varfiles: []Varfile{
			{Path: "first.env"},
			{Path: "second.yml"},
			{Path: "missing.env", Optional: true},
		},
		FSInfo: FSInfo{Dir: dir},
	}

	vars, err := a.ResolveVariables(map[string]cty.Value{
		"PROJECT": cty.StringVal("from-project"),
		"LOCAL":   cty.StringVal("from-project"),
	})
	require.NoError(t, err)
	require.Equal(t, "from-project", vars["PROJECT"].AsString())
	require.Equal(t, "from-action", vars["LOCAL"].AsString())
	require.Equal(t, "from-first", vars["A"].AsString())
	require.Equal(t, "from-second", vars["B"].AsString())

	a.Varfiles = append(a.Varfiles, Varfile{Path: "required.env"})
	_, err = a.ResolveVariables(nil)
	require.ErrorContains(t, err, "deploy.api")
}
