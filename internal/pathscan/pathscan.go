// Package pathscan finds developer tools on the executable search path and
// keeps the ones that answer a version query.
package pathscan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/example/devfetch/internal/model"
	"github.com/example/devfetch/internal/probe"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ScanSearchPath lists the developer-tool candidates in the directories of
// pathList, a PATH-style list. Names are deduplicated across directories and
// returned sorted. Unreadable directories are skipped.
func ScanSearchPath(pathList string, vocab Vocabulary) []string {
	if pathList == "" {
		return nil
	}

	seen := make(map[string]struct{})
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name, ok := toolName(entry.Name())
			if !ok || !vocab.Matches(name) {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			// Stat follows symlinks: /usr/bin/python3 -> python3.12 is a candidate.
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !isExecutable(info) {
				continue
			}
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver maps a command name to the executable the search path would run.
type Resolver interface {
	LookPath(name string) (string, error)
}

// VersionProber asks one executable for its version.
type VersionProber interface {
	Probe(ctx context.Context, path string) probe.Result
}

// Progress is reported once per finished probe. Done counts completed probes
// across all workers; it is for display only.
type Progress struct {
	Done  int
	Total int
	Name  string
	Kept  bool
}

// Options configures a Scanner.
type Options struct {
	Vocabulary Vocabulary
	// Workers caps concurrent probes; zero means runtime.NumCPU().
	Workers int
	Logger  zerolog.Logger
	// OnProgress is called from worker goroutines and must be safe for concurrent use.
	OnProgress func(Progress)
}

// Scanner discovers tools on the search path.
type Scanner struct {
	resolver   Resolver
	prober     VersionProber
	vocab      Vocabulary
	workers    int
	log        zerolog.Logger
	onProgress func(Progress)
}

// New builds a Scanner.
func New(resolver Resolver, prober VersionProber, opts Options) *Scanner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	vocab := opts.Vocabulary
	if vocab.fragments == nil {
		vocab = NewVocabulary()
	}
	return &Scanner{
		resolver:   resolver,
		prober:     prober,
		vocab:      vocab,
		workers:    workers,
		log:        opts.Logger,
		onProgress: opts.OnProgress,
	}
}

type candidate struct {
	name string
	path string
}

// Discover scans PATH, resolves and probes every candidate in parallel and
// returns the tools that reported a version, sorted by name. Every category
// is model.Unknown; classification happens afterwards.
func (s *Scanner) Discover(ctx context.Context) []model.Tool {
	names := ScanSearchPath(os.Getenv("PATH"), s.vocab)
	s.log.Debug().Int("candidates", len(names)).Msg("found potential executables")

	candidates := make([]candidate, 0, len(names))
	for _, name := range names {
		path, err := s.resolver.LookPath(name)
		if err != nil {
			s.log.Debug().Str("tool", name).Err(err).Msg("cannot resolve candidate")
			continue
		}
		candidates = append(candidates, candidate{name: name, path: path})
	}

	total := len(candidates)
	found := make([]*model.Tool, total)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, c := range candidates {
		g.Go(func() error {
			res := s.prober.Probe(ctx, c.path)
			kept := res.Succeeded && probe.LooksLikeVersionOutput(res.Output)
			if kept {
				found[i] = &model.Tool{
					Name:     c.name,
					Path:     c.path,
					Version:  res.Version,
					Category: model.Unknown,
				}
				s.log.Debug().Str("tool", c.name).Str("path", c.path).Str("version", deref(res.Version)).Msg("discovered")
			}

			n := done.Add(1)
			if s.onProgress != nil {
				s.onProgress(Progress{Done: int(n), Total: total, Name: c.name, Kept: kept})
			}
			return nil
		})
	}
	_ = g.Wait()

	tools := make([]model.Tool, 0, total)
	for _, t := range found {
		if t != nil {
			tools = append(tools, *t)
		}
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	s.log.Debug().Int("tools", len(tools)).Msg("found developer tools")
	return tools
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
