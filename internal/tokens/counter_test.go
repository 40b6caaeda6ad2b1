package tokens

import (
	"context"
	"testing"
)

func TestEstimate(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"abcdefghi", 3},
	}
	for _, c := range cases {
		if got := Estimate(c.text); got != c.want {
			t.Errorf("Estimate(%q): expected %d, got %d", c.text, c.want, got)
		}
	}
}

func TestEstimateCountsBytes(t *testing.T) {
	// Multi-byte runes count by encoded length, not rune count.
	text := "日本語" // 9 bytes
	if got := Estimate(text); got != 3 {
		t.Errorf("expected 3 tokens for 9 bytes, got %d", got)
	}
}

func TestHeuristicMatchesEstimate(t *testing.T) {
	h := Heuristic{}
	for _, text := range []string{"", "hello", "hello world, this is a longer string"} {
		if got, want := h.Count(context.Background(), text), Estimate(text); got != want {
			t.Errorf("Count(%q): expected %d, got %d", text, want, got)
		}
	}
}
