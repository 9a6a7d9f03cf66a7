package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/example/devfetch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() model.ScanResult {
	result := model.NewScanResult()
	result.GlobalTools = []model.Tool{
		{Name: "python3", Path: "/usr/bin/python3", Version: model.StringPtr("3.11.0"), Category: model.LanguageToolchain},
		{Name: "make", Path: "/usr/bin/make", Version: model.StringPtr("4.3"), Category: model.BuildSystem},
		{Name: "git", Path: "/usr/bin/git", Category: model.DeveloperTool},
		{Name: "go", Path: "/usr/local/go/bin/go", Version: model.StringPtr("1.22.1"), Category: model.LanguageToolchain},
	}
	result.ProjectInfo = &model.ProjectInfo{
		Path: "/work/app",
		Markers: []model.DetectedMarker{
			{File: "pyproject.toml", Ecosystem: "Python"},
			{File: "Makefile", Ecosystem: "C/C++ (Make)"},
		},
		Ecosystems: map[string]model.EcosystemInfo{
			"Python": {
				Name:         "Python",
				ToolVersion:  model.StringPtr("3.11.0"),
				Dependencies: &model.DependencyInfo{Count: 7, Sample: []string{"flask", "numpy"}},
			},
			"C/C++ (Make)": {Name: "C/C++ (Make)", ToolVersion: model.StringPtr("4.3")},
		},
	}
	return result
}

func TestWriteJSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "\n  \"globalTools\": [")
	assert.Contains(t, out, `"category": "LanguageToolchain"`)
	assert.Contains(t, out, `"version": null`)
	assert.Contains(t, out, `"toolVersion": "4.3"`)
	assert.Contains(t, out, `"dependencies": null`)
	assert.Contains(t, out, `"file": "pyproject.toml"`)
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := sampleResult()
	require.NoError(t, WriteJSON(&buf, want))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadJSONRejectsGarbage(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestWritePrettyGroupsByCategory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePretty(&buf, sampleResult(), false))
	out := buf.String()

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "GLOBAL DEVELOPER TOOLS")
	assert.Contains(t, out, "  ▸ go v1.22.1 (/usr/local/go/bin/go)")
	assert.Contains(t, out, "  ▸ git (/usr/bin/git)")

	order := []string{"Language Toolchains", "▸ go ", "▸ python3 ", "Build Systems", "Developer Tools"}
	last := -1
	for _, s := range order {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, s)
		assert.Greater(t, idx, last, s)
		last = idx
	}
	assert.NotContains(t, out, model.PackageManager.DisplayName())
}

func TestWritePrettyProject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePretty(&buf, sampleResult(), false))
	out := buf.String()

	assert.Contains(t, out, "Path: /work/app")
	assert.Contains(t, out, "  ▸ Python (pyproject.toml)")
	assert.Contains(t, out, "├─ 7 dependencies")
	assert.Contains(t, out, "• numpy")
	assert.Less(t, strings.Index(out, "◆ C/C++ (Make)"), strings.Index(out, "◆ Python"))
}

func TestWritePrettyColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePretty(&buf, sampleResult(), true))
	assert.Contains(t, buf.String(), sgrGreen+"v3.11.0"+reset)
}

func TestWritePrettyEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePretty(&buf, model.NewScanResult(), false))
	assert.Contains(t, buf.String(), "Nothing found.")
	assert.NotContains(t, buf.String(), "GLOBAL")
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return len(p), nil
}

func TestWritePrettyReportsWriteError(t *testing.T) {
	err := WritePretty(&failingWriter{n: 3}, sampleResult(), false)
	assert.EqualError(t, err, "disk full")
}

func TestColorWriter(t *testing.T) {
	var buf bytes.Buffer
	w, ok := ColorWriter(&buf, false)
	assert.False(t, ok)
	assert.Same(t, &buf, w)

	_, ok = ColorWriter(&buf, true)
	assert.False(t, ok)
}
