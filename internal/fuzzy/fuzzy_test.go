package fuzzy

import "testing"

func TestScore(t *testing.T) {
	if Score("", "anything") != 1 {
		t.Fatalf("expected empty query to score 1")
	}
	if Score("xyz", "name") != 0 {
		t.Fatalf("expected no match to score 0")
	}
	if got := Score("name", "name"); got != 1 {
		t.Fatalf("expected exact match to score 1, got %v", got)
	}
	prefix := Score("na", "name")
	sub := Score("ne", "name")
	if prefix <= 0.5 || sub <= 0 || sub > 0.5 {
		t.Fatalf("expected prefix %v > 0.5 >= subsequence %v > 0", prefix, sub)
	}
	if Score("NA", "name") != prefix {
		t.Fatalf("expected case-insensitive scoring")
	}
	if Score("na", "name") <= Score("na", "namespace") {
		t.Fatalf("expected closer candidate to score higher")
	}
}

func TestScoreNormalizesUnicode(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if Score(decomposed, composed) != 1 {
		t.Fatalf("expected normalized forms to match exactly")
	}
}
