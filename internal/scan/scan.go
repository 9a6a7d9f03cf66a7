// Package scan runs the global and local phases of a devfetch invocation
// and assembles the result.
package scan

import (
	"context"
	"path/filepath"
	"time"

	"github.com/example/devfetch/internal/classify"
	"github.com/example/devfetch/internal/detector"
	"github.com/example/devfetch/internal/events"
	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/pathscan"
	"github.com/example/devfetch/internal/probe"
	"github.com/example/devfetch/internal/runner"
	"github.com/rs/zerolog"
)

// Options selects what a scan covers.
type Options struct {
	ScanGlobal bool
	ScanLocal  bool
	// TargetDir is the project directory for the local phase; empty means ".".
	TargetDir string
}

// Discoverer finds tools on the search path.
type Discoverer interface {
	Discover(ctx context.Context) []model.Tool
}

// ProjectDetector inspects a project directory.
type ProjectDetector interface {
	Detect(ctx context.Context, dir string) *model.ProjectInfo
}

// Service wires the phases together.
type Service struct {
	Discoverer Discoverer
	Detector   ProjectDetector
	Events     *events.Emitter
	Log        zerolog.Logger
}

// Config holds what New needs to build the production Service.
type Config struct {
	Timeout    time.Duration
	Workers    int
	ExtraTools []string
	Logger     zerolog.Logger
	Events     *events.Emitter
	// OnProgress is forwarded to the path scanner.
	OnProgress func(pathscan.Progress)
}

// New builds a Service backed by real process execution.
func New(cfg Config) *Service {
	exec := runner.New(cfg.Timeout)
	emitter := cfg.Events

	discoverer := pathscan.New(exec, probe.New(exec), pathscan.Options{
		Vocabulary: pathscan.NewVocabulary(cfg.ExtraTools...),
		Workers:    cfg.Workers,
		Logger:     cfg.Logger.With().Str("phase", "global").Logger(),
		OnProgress: func(p pathscan.Progress) {
			emitter.ProbeCompleted(p.Done, p.Total, p.Name, p.Kept)
			if cfg.OnProgress != nil {
				cfg.OnProgress(p)
			}
		},
	})

	det := detector.New(exec, detector.Options{
		Logger: cfg.Logger.With().Str("phase", "local").Logger(),
		OnMarker: func(m model.DetectedMarker) {
			emitter.MarkerDetected(m.File, m.Ecosystem)
		},
	})

	return &Service{
		Discoverer: discoverer,
		Detector:   det,
		Events:     emitter,
		Log:        cfg.Logger,
	}
}

// Run executes the selected phases. Probe and detection failures only
// shrink the result; they never fail the scan.
func (s *Service) Run(ctx context.Context, opts Options) model.ScanResult {
	start := time.Now()
	result := model.NewScanResult()

	target := opts.TargetDir
	if target == "" {
		target = "."
	}
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	s.Events.ScanStarted(opts.ScanGlobal, opts.ScanLocal, target)

	if opts.ScanGlobal {
		s.Log.Info().Msg("scanning PATH for developer tools")
		tools := s.Discoverer.Discover(ctx)
		classify.Tools(tools)
		result.GlobalTools = append(result.GlobalTools, tools...)
	}

	if opts.ScanLocal {
		s.Log.Info().Str("dir", target).Msg("detecting project ecosystems")
		result.ProjectInfo = s.Detector.Detect(ctx, target)
	}

	markers := 0
	if result.ProjectInfo != nil {
		markers = len(result.ProjectInfo.Markers)
	}
	s.Events.ScanFinished(len(result.GlobalTools), markers, time.Since(start))
	return result
}
