package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casewall/internal/editor"
)

// isolate points config and data at temp dirs and clears overrides.
func isolate(t *testing.T) (configDir, dataDir string) {
	t.Helper()
	configDir, dataDir = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("XDG_DATA_HOME", dataDir)
	color.NoColor = true
	for _, k := range []string{
		"CASEWALL_STORE", "CASEWALL_DATA", "CASEWALL_PROVIDER", "CASEWALL_MODEL",
		"CASEWALL_BASE_URL", "CASEWALL_MAX_RETRIES", "CASEWALL_DEBUG",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return configDir, dataDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newCase creates a case and returns its id.
func newCase(t *testing.T, name string) string {
	t.Helper()
	out, err := run(t, "new", name)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.NotEmpty(t, fields)
	return fields[len(fields)-1]
}

func TestNewAndList(t *testing.T) {
	isolate(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No cases yet")

	id := newCase(t, "Caso Alfa")
	newCase(t, "Caso Beta")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "RECORDS")
	assert.Contains(t, out, "Caso Alfa")
	assert.Contains(t, out, id)
	assert.Less(t, strings.Index(out, "Caso Beta"), strings.Index(out, "Caso Alfa"))
}

func TestExportImport(t *testing.T) {
	isolate(t)
	id := newCase(t, "Caso Alfa")
	path := filepath.Join(t.TempDir(), "alfa.mapinv")

	_, err := run(t, "export", id, "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Caso Alfa")

	out, err := run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported Caso Alfa")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Caso Alfa"))
}

func TestExportUnknownCase(t *testing.T) {
	isolate(t)
	_, err := run(t, "export", "case-missing", "-o", filepath.Join(t.TempDir(), "x.mapinv"))
	assert.ErrorIs(t, err, editor.ErrCaseNotFound)
}

func TestImportMissingFile(t *testing.T) {
	isolate(t)
	_, err := run(t, "import", filepath.Join(t.TempDir(), "nope.mapinv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRender(t *testing.T) {
	isolate(t)
	id := newCase(t, "Caso Alfa")
	dir := t.TempDir()

	out, err := run(t, "render", id, "-o", filepath.Join(dir, "snap"), "--format", "both")
	require.NoError(t, err)
	assert.Contains(t, out, "snap.png")
	assert.FileExists(t, filepath.Join(dir, "snap.png"))
	assert.FileExists(t, filepath.Join(dir, "snap.svg"))

	_, err = run(t, "render", id, "-o", filepath.Join(dir, "snap"), "--format", "gif")
	assert.Error(t, err)
}

func TestRenderTargets(t *testing.T) {
	tests := []struct {
		base, format string
		want         []string
	}{
		{"out", "", []string{"out.png", "out.svg"}},
		{"out.svg", "", []string{"out.svg"}},
		{"out.png", "both", []string{"out.png", "out.svg"}},
		{"out", "SVG", []string{"out.svg"}},
		{"out.png", "svg", []string{"out.svg"}},
	}
	for _, tt := range tests {
		got, err := renderTargets(tt.base, tt.format)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.base, tt.format)
	}
	_, err := renderTargets("out", "bmp")
	assert.Error(t, err)
}

func TestExtractInput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(file, []byte("  relatório\r\n"), 0o644))

	got, err := extractInput(nil, "direct", "")
	require.NoError(t, err)
	assert.Equal(t, "direct", got)

	got, err = extractInput(nil, "", file)
	require.NoError(t, err)
	assert.Equal(t, "relatório", got)

	got, err = extractInput(strings.NewReader("from stdin\n"), "", "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	_, err = extractInput(nil, "a", file)
	assert.Error(t, err)
	_, err = extractInput(nil, "", "")
	assert.Error(t, err)
	_, err = extractInput(strings.NewReader("  \n"), "", "-")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	configDir, _ := isolate(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	assert.FileExists(t, filepath.Join(configDir, "casewall", "config.toml"))

	out, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[store]")
	assert.Contains(t, out, `backend = "file"`)
}
