package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "devfetch.yml"

	FormatPretty = "pretty"
	FormatJSON   = "json"

	DefaultTimeout = time.Second
	MinTimeout     = 100 * time.Millisecond
	MaxTimeout     = 30 * time.Second
	MaxWorkers     = 256

	envTimeout    = "DEVFETCH_TIMEOUT"
	envWorkers    = "DEVFETCH_WORKERS"
	envFormat     = "DEVFETCH_FORMAT"
	envNoColor    = "DEVFETCH_NO_COLOR"
	envVerbose    = "DEVFETCH_VERBOSE"
	envEvents     = "DEVFETCH_EVENTS"
	envOutputFile = "DEVFETCH_OUTPUT_FILE"
	envExtraTools = "DEVFETCH_EXTRA_TOOLS"
	envToolsFile  = "DEVFETCH_TOOLS_FILE"
	envNoColorStd = "NO_COLOR"
)

// Loader merges configuration coming from files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings for a scan.
type RuntimeConfig struct {
	Timeout    time.Duration
	Workers    int
	Format     string
	NoColor    bool
	Verbose    bool
	Events     bool
	OutputFile string
	ExtraTools []string
}

// Overrides captures values coming from the config file, env vars or CLI flags.
// Zero values mean "not set" except where a Set flag or pointer says otherwise.
type Overrides struct {
	Timeout    time.Duration
	TimeoutSet bool
	Workers    int
	WorkersSet bool
	Format     string
	NoColor    *bool
	Verbose    *bool
	Events     *bool
	OutputFile string
	ExtraTools []string
	ToolsFile  string
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Timeout: DefaultTimeout,
		Workers: runtime.NumCPU(),
		Format:  FormatPretty,
	}
}

// Load resolves the final runtime configuration. A missing devfetch.yml is
// not an error; any other path that does not exist is.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load %s: %w", path, err)
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	} else if path != DefaultConfigPath {
		return cfg, fmt.Errorf("config file %s not found", l.ConfigPath)
	}

	if err := cfg.apply(overridesFromEnv()); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the config can drive a scan.
func (c RuntimeConfig) Validate() error {
	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("timeout must be between %s and %s (got %s)", MinTimeout, MaxTimeout, c.Timeout)
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (got %d)", MaxWorkers, c.Workers)
	}

	switch c.Format {
	case FormatPretty, FormatJSON:
	case "":
		return errors.New("output format must be specified")
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Format, FormatPretty, FormatJSON)
	}

	return nil
}

func (c *RuntimeConfig) apply(src Overrides) error {
	if src.TimeoutSet {
		c.Timeout = src.Timeout
	}

	if src.WorkersSet {
		c.Workers = src.Workers
	}

	if src.Format != "" {
		c.Format = strings.ToLower(strings.TrimSpace(src.Format))
	}

	if src.NoColor != nil {
		c.NoColor = *src.NoColor
	}

	if src.Verbose != nil {
		c.Verbose = *src.Verbose
	}

	if src.Events != nil {
		c.Events = *src.Events
	}

	if src.OutputFile != "" {
		c.OutputFile = src.OutputFile
	}

	if len(src.ExtraTools) > 0 {
		c.ExtraTools = cleanList(src.ExtraTools)
	}

	if src.ToolsFile != "" {
		values, err := readToolsFile(src.ToolsFile)
		if err != nil {
			return err
		}
		c.ExtraTools = append(c.ExtraTools, values...)
	}

	return nil
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Timeout    string   `yaml:"timeout"`
		Workers    *int     `yaml:"workers"`
		Format     string   `yaml:"format"`
		NoColor    *bool    `yaml:"noColor"`
		Verbose    *bool    `yaml:"verbose"`
		Events     *bool    `yaml:"events"`
		OutputFile string   `yaml:"outputFile"`
		ExtraTools toolList `yaml:"extraTools"`
		ToolsFile  string   `yaml:"toolsFile"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		Format:     raw.Format,
		NoColor:    raw.NoColor,
		Verbose:    raw.Verbose,
		Events:     raw.Events,
		OutputFile: raw.OutputFile,
		ExtraTools: raw.ExtraTools,
		ToolsFile:  raw.ToolsFile,
	}

	if raw.Timeout != "" {
		d, err := ParseTimeout(raw.Timeout)
		if err != nil {
			return Overrides{}, err
		}
		over.Timeout = d
		over.TimeoutSet = true
	}

	if raw.Workers != nil {
		over.Workers = *raw.Workers
		over.WorkersSet = true
	}

	return over, nil
}

// overridesFromEnv ignores values that do not parse.
func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envTimeout); value != "" {
		if d, err := ParseTimeout(value); err == nil {
			ov.Timeout = d
			ov.TimeoutSet = true
		}
	}

	if value := os.Getenv(envWorkers); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Workers = parsed
			ov.WorkersSet = true
		}
	}

	if value := os.Getenv(envFormat); value != "" {
		ov.Format = value
	}

	// https://no-color.org: any non-empty value disables colour.
	if os.Getenv(envNoColorStd) != "" {
		v := true
		ov.NoColor = &v
	}
	if value := os.Getenv(envNoColor); value != "" {
		ov.NoColor = parseBool(value)
	}

	if value := os.Getenv(envVerbose); value != "" {
		ov.Verbose = parseBool(value)
	}

	if value := os.Getenv(envEvents); value != "" {
		ov.Events = parseBool(value)
	}

	if value := os.Getenv(envOutputFile); value != "" {
		ov.OutputFile = value
	}

	if value := os.Getenv(envExtraTools); value != "" {
		ov.ExtraTools = ParseToolList(value)
	}

	if value := os.Getenv(envToolsFile); value != "" {
		ov.ToolsFile = value
	}

	return ov
}

func parseBool(value string) *bool {
	parsed := strings.EqualFold(value, "true") || value == "1"
	return &parsed
}

// ParseTimeout accepts a Go duration ("1500ms", "2s") or a bare number of
// milliseconds.
func ParseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", value, err)
	}
	return d, nil
}

// ParseToolList splits comma, space or newline separated tool names.
func ParseToolList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

func splitOnDelimiters(input string, delims []rune) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	return cleanList(strings.FieldsFunc(trimmed, separator))
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

// readToolsFile reads one tool name per line; blank lines and # comments are skipped.
func readToolsFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open tools file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var tools []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tools = append(tools, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tools file: %w", err)
	}

	return tools, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// toolList enables YAML fields that can be specified as a scalar or sequence.
type toolList []string

func (t *toolList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*t = cleanList(out)
	case yaml.ScalarNode:
		*t = ParseToolList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for extraTools")
	}
	return nil
}

// fileConfig is the on-disk shape written by WriteDefault.
type fileConfig struct {
	Timeout    string   `yaml:"timeout"`
	Workers    int      `yaml:"workers"`
	Format     string   `yaml:"format"`
	NoColor    bool     `yaml:"noColor"`
	Verbose    bool     `yaml:"verbose"`
	Events     bool     `yaml:"events"`
	OutputFile string   `yaml:"outputFile,omitempty"`
	ExtraTools []string `yaml:"extraTools"`
}

// Marshal renders c in the config file format.
func (c RuntimeConfig) Marshal() ([]byte, error) {
	extra := c.ExtraTools
	if extra == nil {
		extra = []string{}
	}
	return yaml.Marshal(fileConfig{
		Timeout:    c.Timeout.String(),
		Workers:    c.Workers,
		Format:     c.Format,
		NoColor:    c.NoColor,
		Verbose:    c.Verbose,
		Events:     c.Events,
		OutputFile: c.OutputFile,
		ExtraTools: extra,
	})
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if fileExists(path) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := DefaultRuntimeConfig().Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
