package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/tokens"
)

// Config controls chunking behavior.
type Config struct {
	MaxTokens     int // Token ceiling per chunk.
	OverlapTokens int // Overlap between consecutive chunks in tokens.
}

// DefaultConfig returns sensible defaults for model-sized chunks.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     1500,
		OverlapTokens: 150,
	}
}

const (
	// heuristicCharsPerToken drives character-space estimates: overlap
	// width and the optimistic upper bound for the end-offset search.
	heuristicCharsPerToken = 4

	// sentenceWindow is how far back from a candidate chunk end we look
	// for a sentence or paragraph boundary to break on.
	sentenceWindow = 400

	// minBoundaryOffset rejects boundaries in the first part of the search
	// window; trimming there would produce degenerate micro-chunks.
	minBoundaryOffset = 40

	// advanceSlack is the largest backward step tolerated when the overlap
	// would otherwise rewind a chunk start to or before its predecessor.
	advanceSlack = 10
)

// Split cuts text into an ordered sequence of chunks, each within
// cfg.MaxTokens as measured by counter, preferring to end chunks on
// sentence or paragraph boundaries. Consecutive chunks overlap by roughly
// cfg.OverlapTokens; together they cover the whole input with no gaps.
// Whitespace-only input produces no chunks.
func Split(ctx context.Context, counter tokens.Counter, text string, cfg Config) ([]document.Chunk, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1500
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	overlapChars := cfg.OverlapTokens * heuristicCharsPerToken
	var chunks []document.Chunk
	start := 0

	for start < len(text) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("chunking interrupted: %w", err)
		}

		end := findChunkEnd(ctx, counter, text, start, cfg.MaxTokens)
		if end < len(text) {
			end = trimToSentence(text, start, end)
		}
		end = floorToRune(text, end, start)

		chunks = append(chunks, document.Chunk{
			Text:  text[start:end],
			Index: len(chunks),
			Start: start,
			End:   end,
		})
		if end >= len(text) {
			break
		}

		// The next chunk starts inside the previous one to preserve context
		// across the cut, but it must always move strictly forward or the
		// loop would never terminate.
		next := end - overlapChars
		if next <= start {
			next = end - advanceSlack
		}
		next = floorToRune(text, next, start)
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// findChunkEnd binary-searches the largest end offset whose span from start
// counts within maxTokens. The initial upper bound doubles the heuristic
// character estimate so tokenizers with generous chars-per-token ratios
// still reach a full chunk. Probes are sequential by nature: each midpoint
// depends on the previous probe's outcome.
func findChunkEnd(ctx context.Context, counter tokens.Counter, text string, start, maxTokens int) int {
	bound := start + maxTokens*heuristicCharsPerToken*2
	if bound > len(text) {
		bound = len(text)
	}

	lo, hi := start+1, bound
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if counter.Count(ctx, text[start:mid]) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	// lo can still exceed the ceiling when even one character does; a chunk
	// must always make progress, so that single char is emitted regardless.
	return lo
}

// trimToSentence pulls a chunk end back to the latest sentence or paragraph
// boundary within the tail window, so chunks end on natural breaks instead
// of mid-sentence. Boundaries too close to the window start are ignored.
func trimToSentence(text string, start, end int) int {
	wstart := end - sentenceWindow
	if wstart < start {
		wstart = start
	}
	window := text[wstart:end]

	best := -1
	for _, marker := range []string{". ", ".\n", "\n\n"} {
		if idx := strings.LastIndex(window, marker); idx >= 0 {
			if after := idx + len(marker); after > best {
				best = after
			}
		}
	}
	if best >= minBoundaryOffset {
		return wstart + best
	}
	return end
}

// floorToRune moves pos down to the nearest UTF-8 rune start, keeping it
// strictly above floor so progress is preserved.
func floorToRune(text string, pos, floor int) int {
	if pos >= len(text) {
		return len(text)
	}
	for pos > floor+1 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}
