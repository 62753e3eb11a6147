package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"yamlassist/internal/assist"
	"yamlassist/internal/batch"
)

func TestRenderProposalsPlain(t *testing.T) {
	ps := []assist.Proposal{
		{Label: "name", Kind: assist.KindProperty, BaseScore: 1, Detail: "string"},
		{Label: "kind", Kind: assist.KindProperty, BaseScore: 1, Deemphasis: 100, Detail: "Kind\nmore"},
	}
	out := RenderProposals(ps, TableOptions{Width: 80})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "#  label") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "name") || !strings.Contains(lines[1], "1.000") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "-99.000") || strings.Contains(lines[2], "more") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestRenderProposalsEmpty(t *testing.T) {
	if got := RenderProposals(nil, TableOptions{}); got != "no proposals\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestProgressModelTracksEvents(t *testing.T) {
	events := make(chan batch.Event)
	m := NewProgressModel("completing", []string{"a.yaml", "b.yaml"}, events).(*progressModel)

	m.Update(eventMsg(batch.Event{File: "a.yaml", Stage: batch.StageComplete, Status: batch.StatusWorking}))
	if m.items[0].status != "completing" {
		t.Fatalf("unexpected status %q", m.items[0].status)
	}
	m.Update(eventMsg(batch.Event{File: "a.yaml", Stage: batch.StageComplete, Status: batch.StatusDone}))
	m.Update(eventMsg(batch.Event{File: "b.yaml", Stage: batch.StageLoad, Status: batch.StatusError}))
	if got := m.percent(); got != 1.0 {
		t.Fatalf("expected full progress, got %v", got)
	}
	if !strings.Contains(m.View(), "[2/2]") {
		t.Fatalf("expected finished count in view:\n%s", m.View())
	}
	_, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Fatalf("expected quit message, got %#v", msg)
	}
}
