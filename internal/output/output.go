// Package output renders a scan result for people (pretty) or programs (JSON).
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/example/devfetch/internal/model"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// WriteJSON writes result as indented JSON followed by a newline.
func WriteJSON(w io.Writer, result model.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// ReadJSON decodes a result previously written by WriteJSON.
func ReadJSON(r io.Reader) (model.ScanResult, error) {
	var result model.ScanResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return model.ScanResult{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}

// ColorWriter decides whether colour is usable on w and, on Windows
// consoles, wraps w so ANSI sequences are translated.
func ColorWriter(w io.Writer, noColor bool) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if noColor || !ok {
		return w, false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return w, false
	}
	return colorable.NewColorable(f), true
}

const rule = "═══════════════════════════════════════════════════════"

// WritePretty writes the human-readable report. Tools are grouped by
// category in model.Categories order; ecosystems are listed by name.
func WritePretty(w io.Writer, result model.ScanResult, color bool) error {
	p := &printer{w: w, pal: newPalette(color)}

	if len(result.GlobalTools) > 0 {
		p.banner("GLOBAL DEVELOPER TOOLS", p.pal.blue)
		p.tools(result.GlobalTools)
	}
	if result.ProjectInfo != nil {
		p.banner("PROJECT INFORMATION", p.pal.greenBanner)
		p.project(result.ProjectInfo)
	}
	if len(result.GlobalTools) == 0 && result.ProjectInfo == nil {
		p.line("\n%s", p.pal.dim("Nothing found."))
	}
	p.line("")
	return p.err
}

// printer keeps the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	pal palette
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) banner(title string, paint func(string) string) {
	p.line("\n%s", paint(rule))
	p.line("%s", paint("  "+title))
	p.line("%s", paint(rule))
}

func (p *printer) tools(tools []model.Tool) {
	groups := map[model.Category][]model.Tool{}
	for _, t := range tools {
		groups[t.Category] = append(groups[t.Category], t)
	}

	for _, cat := range model.Categories() {
		group := groups[cat]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		p.line("\n%s", p.pal.heading(cat.DisplayName()))
		for _, t := range group {
			var b strings.Builder
			fmt.Fprintf(&b, "  %s %s", p.pal.green("▸"), p.pal.bright(t.Name))
			if t.Version != nil {
				fmt.Fprintf(&b, " %s", p.pal.green("v"+*t.Version))
			}
			fmt.Fprintf(&b, " %s", p.pal.dim("("+t.Path+")"))
			p.line("%s", b.String())
		}
	}
}

func (p *printer) project(info *model.ProjectInfo) {
	p.line("\n%s %s", p.pal.bold("Path:"), p.pal.cyan(info.Path))

	if len(info.Markers) > 0 {
		p.line("\n%s", p.pal.heading("Detected Ecosystems:"))
		for _, m := range info.Markers {
			p.line("  %s %s (%s)", p.pal.green("▸"), p.pal.bright(m.Ecosystem), p.pal.dim(m.File))
		}
	}

	if len(info.Ecosystems) == 0 {
		return
	}
	names := make([]string, 0, len(info.Ecosystems))
	for name := range info.Ecosystems {
		names = append(names, name)
	}
	sort.Strings(names)

	p.line("\n%s", p.pal.heading("Ecosystem Details:"))
	for _, name := range names {
		eco := info.Ecosystems[name]
		head := fmt.Sprintf("  %s %s", p.pal.cyan("◆"), p.pal.bright(name))
		if eco.ToolVersion != nil {
			head += " " + p.pal.green("v"+*eco.ToolVersion)
		}
		p.line("%s", head)

		if deps := eco.Dependencies; deps != nil {
			p.line("    %s %s dependencies", p.pal.dim("├─"), p.pal.yellow(fmt.Sprint(deps.Count)))
			if len(deps.Sample) > 0 {
				p.line("    %s %s", p.pal.dim("└─"), p.pal.dim("Sample:"))
				for _, dep := range deps.Sample {
					p.line("       %s %s", p.pal.dim("•"), p.pal.bright(dep))
				}
			}
		}
	}
}
