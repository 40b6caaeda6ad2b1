package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/tokens"
)

// Selector picks the highest-value sections of a document that fit within a
// token budget, producing the "relevant text" handed to the model.
type Selector struct {
	counter       tokens.Counter
	maxConcurrent int
	log           *slog.Logger
}

func NewSelector(counter tokens.Counter, maxConcurrent int, log *slog.Logger) *Selector {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Selector{
		counter:       counter,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

type scoredSection struct {
	rendered     string
	keywordScore int
	tokenCount   int
	composite    float64
}

// SelectRelevant splits text into sections, ranks them by keyword relevance
// with a bounded length preference, and greedily accumulates the best ones
// under budget. Sections that would overflow the remaining budget are
// skipped, not treated as a stopping point, so smaller candidates later in
// the ranking still get a chance. When not a single section fits on its own
// the selector falls back to the longest prefix of the raw text that stays
// under budget.
//
// The returned text is in ranked order, not source order.
func (s *Selector) SelectRelevant(ctx context.Context, text string, budget int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("select relevant text: %w", document.ErrEmptyInput)
	}
	if budget <= 0 {
		return "", fmt.Errorf("select relevant text: budget must be positive, got %d", budget)
	}

	sections := Split(text)
	scored := make([]scoredSection, len(sections))

	// Token counts are independent per section; count them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, sec := range sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rendered := renderSection(sec)
			scored[i] = scoredSection{
				rendered:     rendered,
				keywordScore: Score(sec),
				tokenCount:   s.counter.Count(gctx, rendered),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("count section tokens: %w", err)
	}

	// Composite ranking: the keyword score moves in integer steps while the
	// length preference stays within [0,1], so shorter keyword-dense sections
	// win ties without length ever outranking relevance.
	for i := range scored {
		lengthPref := float64(max(0, 1000-scored[i].tokenCount)) / 1000
		scored[i].composite = float64(scored[i].keywordScore) + lengthPref
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].composite > scored[j].composite
	})

	var out strings.Builder
	total := 0
	accepted := 0
	for _, sec := range scored {
		if total+sec.tokenCount > budget {
			continue
		}
		out.WriteString(sec.rendered)
		total += sec.tokenCount
		accepted++
	}
	if accepted > 0 {
		return out.String(), nil
	}

	if s.log != nil {
		s.log.Warn("no section fits budget, truncating raw text",
			"sections", len(sections), "budget", budget)
	}
	prefix, err := s.prefixUnderBudget(ctx, text, budget)
	if err != nil {
		return "", fmt.Errorf("truncate to budget: %w", err)
	}
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("no text fits within %d tokens", budget)
	}
	return prefix, nil
}

func renderSection(sec document.Section) string {
	return fmt.Sprintf("\n\n=== %s ===\n%s", sec.Title, sec.Body)
}

// prefixUnderBudget binary-searches the longest character prefix of text
// whose token count stays within budget. Probes are sequential: each
// midpoint depends on the previous outcome. The search assumes the counter
// is monotonic in length; the clamped upper bound keeps it from diverging
// if a probe comes back slightly inconsistent.
func (s *Selector) prefixUnderBudget(ctx context.Context, text string, budget int) (string, error) {
	low, high := 0, len(text)
	if bound := budget * 8; bound < high {
		high = bound
	}
	for low < high {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		mid := (low + high + 1) / 2
		if s.counter.Count(ctx, text[:mid]) <= budget {
			low = mid
		} else {
			high = mid - 1
		}
	}
	for low > 0 && low < len(text) && !utf8.RuneStart(text[low]) {
		low--
	}
	return text[:low], nil
}
