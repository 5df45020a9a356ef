package position

import (
	"strings"
	"testing"
)

func TestPositionString(t *testing.T) {
	tests := []struct {
		pos      Position
		expected string
	}{
		{Position{Filename: "/tmp/src/loops.kt", Line: 3, Column: 7, Offset: 40}, "loops.kt:3:7"},
		{Position{Line: 1, Column: 1}, "1:1"},
	}

	for _, tt := range tests {
		if got := tt.pos.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestSnippet(t *testing.T) {
	sf := NewSourceFile("f.kt", "fun main() {\n    for (i in 0..n) {}\n}\n")

	got := sf.Snippet(Position{Filename: "f.kt", Line: 2, Column: 15, Offset: 27})
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), got)
	}

	if !strings.HasSuffix(lines[0], "for (i in 0..n) {}") {
		t.Errorf("unexpected source line %q", lines[0])
	}

	if idx := strings.Index(lines[1], "^"); idx != len("     | ")+14 {
		t.Errorf("caret at %d, want %d", idx, len("     | ")+14)
	}

	if sf.Snippet(Position{Line: 99, Column: 1}) != "" {
		t.Error("out of range line should render nothing")
	}
}
