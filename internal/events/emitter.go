// Package events writes the scan lifecycle as NDJSON for machine consumers.
package events

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event types.
const (
	TypeScanStart      = "scan-start"
	TypeProbeComplete  = "probe-complete"
	TypeMarkerDetected = "marker-detected"
	TypeScanFinished   = "scan-finished"
	TypeReport         = "report"
)

// Event is one NDJSON record.
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Emitter writes events to an io.Writer; it is safe for concurrent use.
// A nil *Emitter discards everything.
type Emitter struct {
	writer io.Writer
	now    func() time.Time

	mu  sync.Mutex
	err error
}

// NewEmitter returns an emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w, now: func() time.Time { return time.Now().UTC() }}
}

// Emit serializes evt as one line. The first write failure is kept and
// reported by Err; later events are still attempted.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return e.record(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.writer.Write(append(payload, '\n')); err != nil {
		if e.err == nil {
			e.err = err
		}
		return err
	}
	return nil
}

func (e *Emitter) record(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
	return err
}

// Err returns the first error Emit hit.
func (e *Emitter) Err() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// ScanStarted announces which phases will run.
func (e *Emitter) ScanStarted(global, local bool, target string) {
	_ = e.Emit(Event{
		Type:    TypeScanStart,
		Message: "scan started",
		Fields:  map[string]any{"global": global, "local": local, "target": target},
	})
}

// ProbeCompleted reports one finished candidate probe.
func (e *Emitter) ProbeCompleted(done, total int, name string, kept bool) {
	_ = e.Emit(Event{
		Type:   TypeProbeComplete,
		Fields: map[string]any{"done": done, "total": total, "name": name, "kept": kept},
	})
}

// MarkerDetected reports a project marker file.
func (e *Emitter) MarkerDetected(file, ecosystem string) {
	_ = e.Emit(Event{
		Type:   TypeMarkerDetected,
		Fields: map[string]any{"file": file, "ecosystem": ecosystem},
	})
}

// ScanFinished summarises the result.
func (e *Emitter) ScanFinished(tools, markers int, elapsed time.Duration) {
	_ = e.Emit(Event{
		Type:    TypeScanFinished,
		Message: "scan finished",
		Fields:  map[string]any{"tools": tools, "markers": markers, "elapsedMs": elapsed.Milliseconds()},
	})
}
