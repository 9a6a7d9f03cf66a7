package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/example/devfetch/internal/pathscan"
)

// progressLine redraws "Probing tools... n/N" in place. Updates arrive from
// probe workers; the mutex keeps redraws whole and the count monotonic.
type progressLine struct {
	mu    sync.Mutex
	w     io.Writer
	shown int
	width int
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

func (p *progressLine) update(ev pathscan.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev.Done <= p.shown {
		return
	}
	p.shown = ev.Done
	line := fmt.Sprintf("  Probing tools... %d/%d", ev.Done, ev.Total)
	if len(line) > p.width {
		p.width = len(line)
	}
	fmt.Fprintf(p.w, "\r%s", line)
}

// clear erases the line so the report starts on a clean row.
func (p *progressLine) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.width == 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width))
}
