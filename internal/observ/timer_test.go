package observ

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(2 * time.Millisecond)

	idx := timer.Begin("schema")
	timer.End(idx, "cached")
	err := timer.Measure("complete", func() error { return errors.New("boom") })
	if err == nil {
		t.Fatal("expected Measure to return the phase error")
	}
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].DurationMS != 2 || report.Phases[0].Note != "cached" {
		t.Fatalf("unexpected first phase %+v", report.Phases[0])
	}
	if report.Phases[1].Note != "error: boom" {
		t.Fatalf("unexpected second phase %+v", report.Phases[1])
	}
	if report.TotalMS != 4 {
		t.Fatalf("expected total 4ms, got %v", report.TotalMS)
	}

	summary := timer.Summary()
	if !strings.Contains(summary, "schema") || !strings.Contains(summary, "// cached") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}

func TestTimerWriteJSON(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(time.Millisecond)
	timer.End(timer.Begin("parse"), "")

	var buf bytes.Buffer
	if err := timer.Write(&buf, true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var report Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Phases) != 1 || report.Phases[0].Name != "parse" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("expected empty report, got %+v", r)
	}
}
