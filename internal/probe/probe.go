// Package probe asks executables for their version and recognises version banners.
package probe

import (
	"context"
	"regexp"
	"strings"

	"github.com/example/devfetch/internal/model"
)

// MaxVersionOutputLen is the longest output still treated as a version banner.
// Anything longer is almost always help or usage text.
const MaxVersionOutputLen = 500

// versionRegex matches "1.2", "v1.2.3", "version 1.2.3.4", "2.0.0-alpha" and similar.
var versionRegex = regexp.MustCompile(`(?i)(?:version\s+)?v?(\d+(?:\.\d+){1,3}(?:[.-][a-z0-9]+)?)`)

var versionKeywords = []string{"version", "copyright", "release"}

// Strategies lists the argument vectors tried, in order, when probing a binary.
var Strategies = [][]string{
	{"--version"},
	{"-v"},
	{"version"},
	{"-V"},
}

// Result is the outcome of probing one executable.
type Result struct {
	Succeeded bool
	Output    string
	Version   *string
}

// TextRunner runs a program and returns its textual answer, if any.
type TextRunner interface {
	ExecuteForText(ctx context.Context, program string, args ...string) (string, bool)
}

// Prober tries each strategy against an executable until one produces a version banner.
type Prober struct {
	runner TextRunner
}

// New returns a Prober that invokes binaries through r.
func New(r TextRunner) *Prober {
	return &Prober{runner: r}
}

// Probe returns the first strategy's output that looks like version
// information. Later strategies are never consulted once one succeeds.
func (p *Prober) Probe(ctx context.Context, path string) Result {
	for _, args := range Strategies {
		if ctx.Err() != nil {
			break
		}
		text, ok := p.runner.ExecuteForText(ctx, path, args...)
		if !ok || !LooksLikeVersionOutput(text) {
			continue
		}
		return Result{
			Succeeded: true,
			Output:    strings.TrimSpace(text),
			Version:   model.StringPtr(ExtractVersion(text)),
		}
	}
	return Result{}
}

// LooksLikeVersionOutput is a heuristic gate, not a parser: it accepts short
// text mentioning a version keyword or containing a dotted version number.
// False positives and negatives are expected for unusual tools.
func LooksLikeVersionOutput(text string) bool {
	if len(text) > MaxVersionOutputLen {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range versionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return versionRegex.MatchString(text)
}

// ExtractVersion returns the version number on the first line of text, or ""
// if there is none.
func ExtractVersion(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSuffix(first, "\r")
	matches := versionRegex.FindStringSubmatch(first)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
