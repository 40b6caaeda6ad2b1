package relevance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/tokens"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSelectRelevant_EmptyInput(t *testing.T) {
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())
	_, err := s.SelectRelevant(context.Background(), "   ", 1000)
	if !errors.Is(err, document.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSelectRelevant_NonPositiveBudget(t *testing.T) {
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())
	if _, err := s.SelectRelevant(context.Background(), "some text", 0); err == nil {
		t.Fatal("expected error for zero budget")
	}
	if _, err := s.SelectRelevant(context.Background(), "some text", -5); err == nil {
		t.Fatal("expected error for negative budget")
	}
}

func TestSelectRelevant_PrefersKeywordDenseSections(t *testing.T) {
	text := "# Cafeteria\n" + strings.Repeat("Lunch is served at noon. ", 10) + "\n" +
		"# Hazard Control\nLockout tagout procedure for hazard and safety compliance.\n"
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())

	// Budget fits only one section; the keyword-dense one must win.
	got, err := s.SelectRelevant(context.Background(), text, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Hazard Control") {
		t.Errorf("expected hazard section to be selected, got %q", got)
	}
	if strings.Contains(got, "Cafeteria") {
		t.Errorf("did not expect cafeteria section under a tight budget, got %q", got)
	}
}

func TestSelectRelevant_RespectsBudget(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("# Safety Topic\n")
		b.WriteString(strings.Repeat("hazard training compliance audit. ", 8))
		b.WriteString("\n")
	}
	budget := 300
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())

	got, err := s.SelectRelevant(context.Background(), b.String(), budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := tokens.Estimate(got); n > budget+budget/10 {
		// Rendered sections carry small framing overhead, hence the slack.
		t.Errorf("selected text estimates %d tokens, budget was %d", n, budget)
	}
}

func TestSelectRelevant_OverflowSectionSkippedNotStopping(t *testing.T) {
	// Highest-scoring section is far too large; a smaller section later in
	// the ranking must still be accepted.
	big := "# Hazard Safety Compliance Audit Training\n" + strings.Repeat("hazard safety lockout tagout osha ppe. ", 200)
	small := "# Risk Note\nA minor risk was logged.\n"
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())

	got, err := s.SelectRelevant(context.Background(), big+small, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Risk Note") {
		t.Errorf("expected smaller section to be selected, got %q", got)
	}
}

func TestSelectRelevant_FallbackPrefixOnUnsplittableText(t *testing.T) {
	// 50k characters with no headings: no section fits, so the selector
	// binary-searches a raw prefix. With the heuristic counter a budget of
	// 1800 tokens admits exactly 7200 characters.
	text := strings.Repeat("A", 50_000)
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())

	got, err := s.SelectRelevant(context.Background(), text, 1800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 7200 {
		t.Errorf("expected 7200-character prefix, got %d", len(got))
	}
	if tokens.Estimate(got) > 1800 {
		t.Errorf("prefix overruns budget: %d tokens", tokens.Estimate(got))
	}
}

func TestSelectRelevant_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSelector(tokens.Heuristic{}, 4, discardLogger())
	_, err := s.SelectRelevant(ctx, strings.Repeat("B", 10_000), 100)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
