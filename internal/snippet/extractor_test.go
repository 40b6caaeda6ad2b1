package snippet

import (
	"strings"
	"testing"
)

func TestKeywords(t *testing.T) {
	got := Keywords("What is the PPE policy for confined-space entry?")
	want := []string{"what", "the", "ppe", "policy", "for", "confined", "space", "entry"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("keyword[%d]: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestKeywords_DedupAndShortTerms(t *testing.T) {
	got := Keywords("is it is it OK ok safety safety")
	if len(got) != 1 || got[0] != "safety" {
		t.Fatalf("expected [safety], got %v", got)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	if got := Extract("", "anything", 100, Options{}); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestExtract_NoKeywordsFallsBackToHead(t *testing.T) {
	text := strings.Repeat("z", 10_000)
	got := Extract(text, "is it", 100, Options{TopK: 3})
	if got != text[:400] {
		t.Errorf("expected exact 400-char head, got %d chars", len(got))
	}
}

func TestExtract_NoMatchFallsBackToHead(t *testing.T) {
	text := strings.Repeat("nothing relevant here. ", 500)
	got := Extract(text, "zirconium flanges", 100, Options{TopK: 3})
	if got != text[:400] {
		t.Errorf("expected head fallback when no window matches, got %d chars", len(got))
	}
}

func TestExtract_FindsKeywordDenseRegion(t *testing.T) {
	filler := strings.Repeat("routine operational narrative with no matches. ", 100)
	target := " The respirator cartridge replacement schedule is every 30 days. "
	text := filler + target + filler

	got := Extract(text, "respirator cartridge replacement schedule", 200, Options{TopK: 1, OverlapRatio: 0.5})
	if !strings.Contains(got, "respirator cartridge") {
		t.Errorf("expected extracted snippet to contain the matching passage")
	}
	if strings.Contains(got, divider) {
		t.Errorf("TopK=1 must not contain the divider")
	}
}

func TestExtract_JoinsTopKWithDivider(t *testing.T) {
	filler := strings.Repeat("padding text without matches whatsoever here. ", 60)
	text := "lockout procedures apply. " + filler + " lockout procedures apply again. " + filler + " lockout once more."

	got := Extract(text, "lockout procedures", 50, Options{TopK: 3, OverlapRatio: 0.5})
	if !strings.Contains(got, divider) {
		t.Errorf("expected divider between multiple windows")
	}
	if n := strings.Count(got, divider); n > 2 {
		t.Errorf("expected at most 2 dividers for TopK=3, got %d", n)
	}
}

func TestExtract_CapsSingleKeywordDominance(t *testing.T) {
	// One window stuffed with a single repeated term must not outrank a
	// window matching several distinct terms.
	stuffed := strings.Repeat("permit ", 60)                                        // ~420 chars
	diverse := "the permit system covers inspection training audits and exposure " // distinct terms
	diverse = strings.Repeat(diverse, 7)
	text := stuffed + strings.Repeat(". filler. ", 40) + diverse

	got := Extract(text, "permit inspection training audits exposure", 100, Options{TopK: 1, OverlapRatio: 0.5})
	if !strings.Contains(got, "inspection") {
		t.Errorf("expected diverse window to win over stuffed window, got %q", got)
	}
}

func TestExtract_WindowSizeFollowsTargetTokens(t *testing.T) {
	text := strings.Repeat("safety ", 5000)
	got := Extract(text, "safety", 250, Options{TopK: 1})
	if len(got) > 250*4 {
		t.Errorf("expected window of at most %d chars, got %d", 250*4, len(got))
	}
}
