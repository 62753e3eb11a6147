package batch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"yamlassist/internal/assist"
	"yamlassist/internal/schema"
)

const appSchema = `
root: App
types:
  App:
    properties:
      name: {type: string, required: true}
      kind: {type: Kind, primary: true}
  Kind:
    values: [web, cli]
`

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func testEngine(t *testing.T) *assist.Engine {
	t.Helper()
	s, err := schema.Parse([]byte(appSchema), t.TempDir())
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return assist.NewEngine(s, assist.DefaultOptions())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseProbes(t *testing.T) {
	cases := []struct {
		in      string
		text    string
		offsets []int
	}{
		{"a: 1\n", "a: 1\n", nil},
		{"kind: <caret>", "kind: ", []int{6}},
		{"<caret>a: <caret>\nb<caret>", "a: \nb", []int{0, 3, 5}},
	}
	for _, tc := range cases {
		text, offsets := ParseProbes(tc.in)
		if text != tc.text || !reflect.DeepEqual(offsets, tc.offsets) {
			t.Fatalf("ParseProbes(%q) = %q, %v; want %q, %v", tc.in, text, offsets, tc.text, tc.offsets)
		}
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	values := writeFile(t, dir, "values.yaml", "kind: <caret>\n")
	keys := writeFile(t, dir, "keys.yaml", "kind: web\n<caret>")
	missing := filepath.Join(dir, "missing.yaml")

	sink := &recordingSink{}
	results, err := Run(context.Background(), Request{
		Files:  []string{values, keys, missing},
		Jobs:   2,
		Engine: testEngine(t),
	}, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	got := results[0]
	if got.Path != values || len(got.Probes) != 1 {
		t.Fatalf("unexpected first result %+v", got)
	}
	probe := got.Probes[0]
	if probe.Line != 0 || probe.Column != 6 {
		t.Fatalf("unexpected probe position %d:%d", probe.Line, probe.Column)
	}
	var labels []string
	for _, p := range probe.Proposals {
		labels = append(labels, p.Label)
	}
	if !reflect.DeepEqual(labels, []string{"cli", "web"}) && !reflect.DeepEqual(labels, []string{"web", "cli"}) {
		t.Fatalf("unexpected value labels %v", labels)
	}

	if len(results[1].Probes) != 1 || len(results[1].Probes[0].Proposals) == 0 {
		t.Fatalf("expected key proposals, got %+v", results[1].Probes)
	}
	if results[1].Text != "kind: web\n" {
		t.Fatalf("expected markers stripped, got %q", results[1].Text)
	}
	if !results[1].Timings.Has(StageComplete) {
		t.Fatal("expected complete timing")
	}

	if results[2].Err == nil {
		t.Fatal("expected read error for missing file")
	}

	var fileErrors, runDone int
	for _, ev := range sink.events {
		if ev.File == missing && ev.Status == StatusError {
			fileErrors++
		}
		if ev.File == "" && ev.Status == StatusDone {
			runDone++
		}
	}
	if fileErrors != 1 || runDone != 1 {
		t.Fatalf("unexpected events: fileErrors=%d runDone=%d", fileErrors, runDone)
	}
}

func TestRunLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", "kind: <caret>\n")
	results, err := Run(context.Background(), Request{Files: []string{path}, Engine: testEngine(t), Limit: 1}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(results[0].Probes[0].Proposals); n != 1 {
		t.Fatalf("expected 1 proposal, got %d", n)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", "kind: <caret>\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Request{Files: []string{path}, Engine: testEngine(t)}, nil); err == nil {
		t.Fatal("expected cancellation error")
	}
}
