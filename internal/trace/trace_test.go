package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLevelGating(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	req := Begin(ring, ScopeRequest, "complete", 0)
	ctxSpan := Begin(ring, ScopeContext, "context", req.ID())
	if ctxSpan.ID() != req.ID() {
		t.Fatalf("expected disabled child to report its parent id")
	}
	Error(ring, ScopeProposal, "hints", errors.New("boom"), req.ID())
	req.WithExtra("proposals", "3").End("")
	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected begin, error and end events, got %d", len(events))
	}
	if events[1].Kind != KindError || events[1].Detail != "boom" {
		t.Fatalf("expected error event to bypass level, got %+v", events[1])
	}
	if events[2].Extra["proposals"] != "3" {
		t.Fatalf("expected extra on end event, got %+v", events[2].Extra)
	}
}

func TestStreamFormats(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeProposal, "proposal", "name", 7)
	if !strings.Contains(buf.String(), `"name":"proposal"`) || !strings.Contains(buf.String(), `"parent_id":7`) {
		t.Fatalf("unexpected ndjson output %q", buf.String())
	}
	buf.Reset()
	tr = NewStreamTracer(&buf, LevelDebug, FormatText)
	s := Begin(tr, ScopeRequest, "complete", 0)
	s.WithExtra("b", "2").WithExtra("a", "1").End("done")
	if !strings.Contains(buf.String(), "complete (done) {a=1, b=2}") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop without tracer")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != ring {
		t.Fatalf("expected stored tracer")
	}
	span := Begin(ring, ScopeRequest, "r", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("expected current span %d, got %d", span.ID(), CurrentSpan(ctx))
	}
}

func TestNewConfig(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("expected Nop for LevelOff")
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf, RingSize: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeServer, "start", "", 0)
	multi, ok := tr.(*MultiTracer)
	if !ok || multi.Ring() == nil || len(multi.Ring().Snapshot()) != 1 {
		t.Fatalf("expected ring to hold the event")
	}
	if buf.Len() == 0 {
		t.Fatalf("expected stream output")
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}
