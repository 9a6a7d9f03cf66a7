//go:build unix

package scan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/devfetch/internal/events"
	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/pathscan"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndToEnd(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}

	bin := t.TempDir()
	script := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"+body), 0o755))
	}
	script("rustc", "echo 'rustc 1.76.0 (07dca489a 2024-02-04)'\n")
	script("cargo", `if [ "$1" = "metadata" ]; then echo '{"packages":[{"name":"demo"}]}'; else echo 'cargo 1.76.0'; fi`+"\n")
	t.Setenv("PATH", bin)

	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "Cargo.toml"), []byte("[package]\nname = \"demo\"\n"), 0o644))

	var buf bytes.Buffer
	var progress atomic.Int32
	svc := New(Config{
		Timeout:    2 * time.Second,
		Workers:    2,
		Logger:     zerolog.Nop(),
		Events:     events.NewEmitter(&buf),
		OnProgress: func(pathscan.Progress) { progress.Add(1) },
	})

	result := svc.Run(context.Background(), Options{ScanGlobal: true, ScanLocal: true, TargetDir: project})

	require.Len(t, result.GlobalTools, 2)
	assert.Equal(t, "cargo", result.GlobalTools[0].Name)
	assert.Equal(t, model.PackageManager, result.GlobalTools[0].Category)
	assert.Equal(t, "rustc", result.GlobalTools[1].Name)
	assert.Equal(t, "1.76.0", *result.GlobalTools[1].Version)
	assert.Equal(t, model.LanguageToolchain, result.GlobalTools[1].Category)
	assert.Equal(t, int32(2), progress.Load())

	require.NotNil(t, result.ProjectInfo)
	assert.Equal(t, []model.DetectedMarker{{File: "Cargo.toml", Ecosystem: "Rust"}}, result.ProjectInfo.Markers)
	rust := result.ProjectInfo.Ecosystems["Rust"]
	assert.Equal(t, "1.76.0", *rust.ToolVersion)
	assert.Equal(t, &model.DependencyInfo{Count: 1, Sample: []string{"demo"}}, rust.Dependencies)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"type":"probe-complete"`))
	assert.Equal(t, 1, strings.Count(out, `"type":"marker-detected"`))
}
