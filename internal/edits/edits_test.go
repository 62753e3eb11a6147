package edits

import (
	"errors"
	"testing"
)

func TestDeleteThenInsertMerges(t *testing.T) {
	text := "kind: we"
	var e Edits
	e.Delete(6, 8)
	e.Insert(8, "web")
	if len(e.Ops()) != 1 {
		t.Fatalf("expected merged operation, got %+v", e.Ops())
	}
	got, err := e.Apply(text)
	if err != nil || got != "kind: web" {
		t.Fatalf("expected %q, got %q (err %v)", "kind: web", got, err)
	}
	if e.FirstEditStart() != 6 {
		t.Fatalf("expected first edit at 6, got %d", e.FirstEditStart())
	}
}

func TestInsertBeforePrepends(t *testing.T) {
	var e Edits
	e.Insert(0, "name:")
	e.InsertBefore(0, "  ")
	got, _ := e.Apply("")
	if got != "  name:" {
		t.Fatalf("expected indented insertion, got %q", got)
	}
}

func TestTransformFirstNonWhitespaceEdit(t *testing.T) {
	var e Edits
	e.Insert(4, "  \nid: x")
	ok := e.TransformFirstNonWhitespaceEdit(func(ed *Edit, at int) {
		if at != 3 {
			t.Fatalf("expected first visible char at 3, got %d", at)
		}
		ed.Text = ed.Text[:at] + "- " + ed.Text[at:]
	})
	if !ok {
		t.Fatalf("expected an edit to transform")
	}
	got, _ := e.Apply("abcd")
	if got != "abcd  \n- id: x" {
		t.Fatalf("unexpected result %q", got)
	}
	var empty Edits
	if empty.TransformFirstNonWhitespaceEdit(func(*Edit, int) {}) {
		t.Fatalf("expected no edit on empty edits")
	}
}

func TestShiftIndent(t *testing.T) {
	var e Edits
	e.Insert(0, "deps:\n  - id:\n    x")
	e.ShiftIndent(2)
	got, _ := e.Apply("")
	if got != "deps:\n    - id:\n      x" {
		t.Fatalf("unexpected shift result %q", got)
	}
	e.ShiftIndent(-4)
	got, _ = e.Apply("")
	if got != "deps:\n- id:\n  x" {
		t.Fatalf("unexpected negative shift result %q", got)
	}
}

func TestApplyRejectsOverlap(t *testing.T) {
	e := Edits{ops: []Edit{{Start: 0, End: 3}, {Start: 2, End: 4}}}
	if _, err := e.Apply("abcdef"); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var e Edits
	e.Insert(0, "a")
	e.SetSnippet(true)
	c := e.Clone()
	c.Insert(0, "b")
	if got, _ := e.Apply(""); got != "a" {
		t.Fatalf("expected original untouched, got %q", got)
	}
	if !c.IsSnippet() {
		t.Fatalf("expected clone to keep the snippet flag")
	}
}

func TestStripPlaceholders(t *testing.T) {
	cases := map[string]string{
		"name: ${1:api}":        "name: api",
		"port: $1":              "port: ",
		"a: ${1:${2:nested}}$0": "a: nested",
		`price: \$5`:            "price: $5",
		"plain":                 "plain",
	}
	for in, want := range cases {
		if got := StripPlaceholders(in); got != want {
			t.Fatalf("StripPlaceholders(%q) = %q, want %q", in, got, want)
		}
	}
}
