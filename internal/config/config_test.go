package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envTimeout, envWorkers, envFormat, envNoColor, envVerbose, envEvents,
		envOutputFile, envExtraTools, envToolsFile, envNoColorStd,
	} {
		t.Setenv(key, "")
	}
}

func TestLoaderLoadWithFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	toolsFile := filepath.Join(dir, "tools.txt")
	if err := os.WriteFile(toolsFile, []byte("# extra\nzig\n\njust\n"), 0o600); err != nil {
		t.Fatalf("write tools: %v", err)
	}

	configPath := filepath.Join(dir, "devfetch.yml")
	configBody := []byte("timeout: 2s\nworkers: 6\nformat: json\nextraTools: nim, odin\ntoolsFile: " + toolsFile + "\n")
	if err := os.WriteFile(configPath, configBody, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(envWorkers, "12")
	t.Setenv(envNoColorStd, "1")

	loader := Loader{ConfigPath: configPath}
	cfg, err := loader.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}

	if cfg.Timeout != 2*time.Second {
		t.Fatalf("expected timeout 2s from file, got %s", cfg.Timeout)
	}

	if cfg.Workers != 12 {
		t.Fatalf("env override should set workers to 12, got %d", cfg.Workers)
	}

	if cfg.Format != FormatJSON {
		t.Fatalf("expected json format, got %s", cfg.Format)
	}

	if !cfg.NoColor {
		t.Fatal("NO_COLOR should disable colour")
	}

	want := []string{"nim", "odin", "zig", "just"}
	if strings.Join(cfg.ExtraTools, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected extra tools: %#v", cfg.ExtraTools)
	}
}

func TestOverridesBeatEnvAndFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "devfetch.yml")
	if err := os.WriteFile(configPath, []byte("verbose: true\nextraTools:\n  - zig\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envTimeout, "500")

	off := false
	cfg, err := Loader{ConfigPath: configPath}.Load(Overrides{
		Verbose:    &off,
		Timeout:    3 * time.Second,
		TimeoutSet: true,
		ExtraTools: []string{"gleam"},
	})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Verbose {
		t.Fatal("flag override should disable verbose")
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("expected flag timeout, got %s", cfg.Timeout)
	}
	if len(cfg.ExtraTools) != 1 || cfg.ExtraTools[0] != "gleam" {
		t.Fatalf("expected overrides to replace extra tools, got %#v", cfg.ExtraTools)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Loader{}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timeout != DefaultTimeout || cfg.Format != FormatPretty || cfg.NoColor || cfg.Verbose || cfg.Events || len(cfg.ExtraTools) != 0 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.Workers < 1 {
		t.Fatalf("default workers should be positive, got %d", cfg.Workers)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Loader{ConfigPath: filepath.Join(t.TempDir(), "nope.yml")}.Load(Overrides{})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadInvalidFileTimeout(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "devfetch.yml")
	if err := os.WriteFile(path, []byte("timeout: soon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := (Loader{ConfigPath: path}).Load(Overrides{}); err == nil {
		t.Fatal("expected invalid timeout error")
	}
}

func TestValidate(t *testing.T) {
	base := DefaultRuntimeConfig()
	tests := []struct {
		name    string
		mutate  func(*RuntimeConfig)
		wantErr bool
	}{
		{"defaults", func(*RuntimeConfig) {}, false},
		{"timeout too small", func(c *RuntimeConfig) { c.Timeout = 10 * time.Millisecond }, true},
		{"timeout too large", func(c *RuntimeConfig) { c.Timeout = time.Minute }, true},
		{"zero workers", func(c *RuntimeConfig) { c.Workers = 0 }, true},
		{"too many workers", func(c *RuntimeConfig) { c.Workers = MaxWorkers + 1 }, true},
		{"unknown format", func(c *RuntimeConfig) { c.Format = "xml" }, true},
		{"empty format", func(c *RuntimeConfig) { c.Format = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTimeout(t *testing.T) {
	tests := map[string]time.Duration{
		"1500":    1500 * time.Millisecond,
		"2s":      2 * time.Second,
		" 250ms ": 250 * time.Millisecond,
	}
	for in, want := range tests {
		got, err := ParseTimeout(in)
		if err != nil || got != want {
			t.Fatalf("ParseTimeout(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseTimeout("later"); err == nil {
		t.Fatal("expected error for invalid timeout")
	}
}

func TestParseToolList(t *testing.T) {
	tools := ParseToolList("zig, nim\njust  odin")
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %#v", tools)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "devfetch.yml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Fatal("expected refusal to overwrite without force")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}

	cfg, err := Loader{ConfigPath: path}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("written config invalid: %v", err)
	}
	if cfg.Timeout != DefaultTimeout || cfg.Format != FormatPretty {
		t.Fatalf("unexpected config after round trip: %#v", cfg)
	}
}
