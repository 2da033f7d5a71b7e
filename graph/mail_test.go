package graph

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}

	// Multi-byte previews cut on character boundaries, not bytes.
	s := strings.Repeat("é", 10)
	got := truncate(s, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("é", 5) {
		t.Fatalf("expected five characters, got %q", got)
	}

	// Ten two-byte runes fit a 15-character budget untouched.
	if got := truncate(s, 15); got != s {
		t.Fatalf("expected input unchanged, got %q", got)
	}
}
