package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type errorWriter struct{}

func (errorWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}

type errorMarshaler struct{}

func (errorMarshaler) MarshalJSON() ([]byte, error) {
	return nil, errors.New("marshal error")
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var out []Event
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", sc.Text(), err)
		}
		out = append(out, evt)
	}
	return out
}

func TestEmitAssignsTimestamp(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	emitter.now = func() time.Time { return fixed }

	if err := emitter.Emit(Event{Type: "x"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	preset := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := emitter.Emit(Event{Type: "y", Timestamp: preset}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	events := decodeLines(t, buf)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(fixed) {
		t.Errorf("expected assigned timestamp %v, got %v", fixed, events[0].Timestamp)
	}
	if !events[1].Timestamp.Equal(preset) {
		t.Errorf("expected preserved timestamp %v, got %v", preset, events[1].Timestamp)
	}
}

func TestLifecycleHelpers(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)

	emitter.ScanStarted(true, true, "/work/app")
	emitter.ProbeCompleted(1, 3, "node", true)
	emitter.MarkerDetected("package.json", "Node.js")
	emitter.ScanFinished(1, 1, 1500*time.Millisecond)

	events := decodeLines(t, buf)
	wantTypes := []string{TypeScanStart, TypeProbeComplete, TypeMarkerDetected, TypeScanFinished}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(events))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d: expected type %q, got %q", i, want, events[i].Type)
		}
	}

	probe := events[1].Fields
	if probe["name"] != "node" || probe["kept"] != true || probe["done"] != float64(1) || probe["total"] != float64(3) {
		t.Errorf("unexpected probe fields: %v", probe)
	}
	if events[2].Fields["ecosystem"] != "Node.js" {
		t.Errorf("unexpected marker fields: %v", events[2].Fields)
	}
	if events[3].Fields["elapsedMs"] != float64(1500) {
		t.Errorf("unexpected finish fields: %v", events[3].Fields)
	}
}

func TestConcurrentProbeEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				emitter.ProbeCompleted(w*perWorker+i+1, workers*perWorker, "tool", i%2 == 0)
			}
		}()
	}
	wg.Wait()

	events := decodeLines(t, buf)
	if len(events) != workers*perWorker {
		t.Fatalf("expected %d lines, got %d", workers*perWorker, len(events))
	}
	seen := map[float64]bool{}
	for _, evt := range events {
		done := evt.Fields["done"].(float64)
		if seen[done] {
			t.Fatalf("duplicate event for done=%v", done)
		}
		seen[done] = true
	}
}

func TestEmitErrors(t *testing.T) {
	emitter := NewEmitter(errorWriter{})
	if err := emitter.Emit(Event{Type: "x"}); err == nil {
		t.Fatal("expected write error")
	}
	emitter.MarkerDetected("go.mod", "Go")
	if err := emitter.Err(); err == nil || !strings.Contains(err.Error(), "write failed") {
		t.Fatalf("expected first write error to be kept, got %v", err)
	}

	buf := &bytes.Buffer{}
	bad := NewEmitter(buf)
	if err := bad.Emit(Event{Type: "x", Fields: map[string]any{"bad": errorMarshaler{}}}); err == nil {
		t.Fatal("expected marshal error")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written on marshal failure, got %q", buf.String())
	}
	if bad.Err() == nil {
		t.Fatal("marshal failure should be recorded")
	}
}

func TestNilEmitterDiscards(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(Event{Type: "x"}); err != nil {
		t.Fatalf("nil emitter returned %v", err)
	}
	emitter.ScanStarted(true, false, ".")
	emitter.ScanFinished(0, 0, 0)
	if emitter.Err() != nil {
		t.Fatal("nil emitter should report no error")
	}
}
