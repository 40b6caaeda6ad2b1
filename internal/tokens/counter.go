package tokens

import "context"

// Counter maps text to a token count. Implementations never fail: adapters
// backed by fallible calls degrade to the character heuristic instead of
// returning an error, so callers can rely on always getting a usable count.
// Counts are assumed monotonic in text length (longer text never counts
// fewer tokens); the chunking binary searches depend on that.
type Counter interface {
	Count(ctx context.Context, text string) int
}

// charsPerToken is the rough English-text ratio used whenever no real
// tokenizer is available.
const charsPerToken = 4

// Estimate returns the character-based heuristic count: ceil(len/4).
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// Heuristic is the zero-cost Counter used in simulation mode and as the
// degraded path for network-backed counters.
type Heuristic struct{}

func (Heuristic) Count(_ context.Context, text string) int {
	return Estimate(text)
}
