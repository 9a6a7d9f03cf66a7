// Package detector recognises project ecosystems from marker files in a
// directory and asks the matching toolchains for versions and dependencies.
package detector

import (
	"context"
	"os"
	"path/filepath"

	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/probe"
	"github.com/example/devfetch/internal/runner"
	"github.com/rs/zerolog"
)

// Options configures a Detector.
type Options struct {
	// Registry selects dependency parsers; nil means DefaultRegistry.
	Registry Registry
	Logger   zerolog.Logger
	// OnMarker is called for every marker found, in table order.
	OnMarker func(model.DetectedMarker)
}

// Detector inspects a single project directory.
type Detector struct {
	runner   runner.Runner
	registry Registry
	log      zerolog.Logger
	onMarker func(model.DetectedMarker)
}

// New returns a Detector that runs ecosystem commands through r.
func New(r runner.Runner, opts Options) *Detector {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Detector{
		runner:   r,
		registry: registry,
		log:      opts.Logger,
		onMarker: opts.OnMarker,
	}
}

// Detect returns nil when dir is not a directory or holds no marker.
func (d *Detector) Detect(ctx context.Context, dir string) *model.ProjectInfo {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		d.log.Debug().Str("dir", dir).Msg("target is not a directory")
		return nil
	}

	project := &model.ProjectInfo{
		Path:       dir,
		Markers:    []model.DetectedMarker{},
		Ecosystems: map[string]model.EcosystemInfo{},
	}

	for _, m := range markers {
		file, ok := findMarker(dir, m)
		if !ok {
			continue
		}
		d.log.Debug().Str("marker", m.Pattern).Msg("found marker")

		detected := model.DetectedMarker{File: m.Pattern, Ecosystem: m.Ecosystem}
		project.Markers = append(project.Markers, detected)
		if d.onMarker != nil {
			d.onMarker(detected)
		}

		eco := d.probeEcosystem(ctx, m)
		if eco.Dependencies == nil {
			eco.Dependencies = d.readManifest(m, file)
		}
		if eco.Empty() {
			continue
		}
		if prev, seen := project.Ecosystems[m.Ecosystem]; seen {
			eco = merge(prev, eco)
		}
		project.Ecosystems[m.Ecosystem] = eco
	}

	if len(project.Markers) == 0 {
		return nil
	}
	return project
}

// MatchMarkers lists the markers present in dir without running any
// ecosystem command.
func MatchMarkers(dir string) []model.DetectedMarker {
	var found []model.DetectedMarker
	for _, m := range markers {
		if _, ok := findMarker(dir, m); ok {
			found = append(found, model.DetectedMarker{File: m.Pattern, Ecosystem: m.Ecosystem})
		}
	}
	return found
}

// findMarker returns the path of the file in dir that satisfies m.
func findMarker(dir string, m Marker) (string, bool) {
	if !m.IsGlob() {
		path := filepath.Join(dir, m.Pattern)
		if _, err := os.Stat(path); err != nil {
			return "", false
		}
		return path, true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if ok, _ := filepath.Match(m.Pattern, entry.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func (d *Detector) probeEcosystem(ctx context.Context, m Marker) model.EcosystemInfo {
	eco := model.EcosystemInfo{Name: m.Ecosystem}

	for _, cmd := range m.Commands {
		if ctx.Err() != nil {
			break
		}
		path, err := d.runner.LookPath(cmd.Tool)
		if err != nil {
			d.log.Debug().Str("tool", cmd.Tool).Msg("tool not found")
			continue
		}

		switch cmd.Shape {
		case PlainText:
			if eco.ToolVersion != nil {
				continue
			}
			text, ok := d.runner.ExecuteForText(ctx, path, cmd.Args...)
			if ok {
				eco.ToolVersion = model.StringPtr(probe.ExtractVersion(text))
			}
		case StructuredJSON:
			out, err := d.runner.Execute(ctx, path, cmd.Args...)
			if err != nil {
				d.log.Debug().Str("command", cmd.String()).Err(err).Msg("ecosystem command failed")
				continue
			}
			// npm exits non-zero on extraneous packages but still prints the listing.
			eco.Dependencies = d.registry.Parse(m.Kind, out.Stdout)
		}
	}
	return eco
}

func (d *Detector) readManifest(m Marker, file string) *model.DependencyInfo {
	parse, ok := manifestParsers[m.Pattern]
	if !ok {
		return nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		d.log.Debug().Str("file", file).Err(err).Msg("cannot read manifest")
		return nil
	}
	names, err := parse(data)
	if err != nil {
		d.log.Debug().Str("file", file).Err(err).Msg("cannot parse manifest")
		return nil
	}
	return model.NewDependencyInfo(names)
}

// merge keeps what prev already reported and fills the gaps from next.
func merge(prev, next model.EcosystemInfo) model.EcosystemInfo {
	if prev.ToolVersion == nil {
		prev.ToolVersion = next.ToolVersion
	}
	if prev.Dependencies == nil {
		prev.Dependencies = next.Dependencies
	}
	return prev
}
