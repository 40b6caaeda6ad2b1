// Package snippet assembles keyword-scored excerpts of a document to use
// as question-answering context. Unlike chunking, which must cover the
// whole text for summarization, snippet extraction slides overlapping
// windows across it and keeps only the highest-scoring ones: recall of any
// matching passage matters more than exhaustive coverage.
package snippet

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Options tune window selection.
type Options struct {
	TopK         int     // Number of windows to keep; minimum 1.
	OverlapRatio float64 // Fraction of each window shared with the next; clamped to [0.1, 0.9].
}

const (
	charsPerToken = 4

	// perKeywordCap bounds one keyword's contribution to a window score,
	// so a degenerate page repeating a single term cannot drown out
	// windows that match several different keywords.
	perKeywordCap = 10

	occurrenceWeight = 2
)

// divider visibly separates concatenated windows in the returned context.
const divider = "\n\n---\n\n"

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

type scoredWindow struct {
	text  string
	score int
}

// Extract returns up to opts.TopK keyword-dense excerpts of text, scored
// against the question's keywords and joined with a visible divider. When
// the question yields no usable keywords, or no window matches at all, it
// falls back to the head of the text sized to targetTokens.
func Extract(text, question string, targetTokens int, opts Options) string {
	if text == "" {
		return ""
	}
	windowChars := targetTokens * charsPerToken
	if windowChars < 1 {
		windowChars = 1
	}

	keywords := Keywords(question)
	if len(keywords) == 0 {
		return head(text, windowChars)
	}

	ratio := opts.OverlapRatio
	if ratio < 0.1 {
		ratio = 0.1
	}
	if ratio > 0.9 {
		ratio = 0.9
	}
	stride := int(float64(windowChars) * (1 - ratio))
	if stride < 1 {
		stride = 1
	}

	var windows []scoredWindow
	for start := 0; start < len(text); start += stride {
		end := start + windowChars
		if end > len(text) {
			end = len(text)
		}
		w := text[start:end]
		windows = append(windows, scoredWindow{text: w, score: scoreWindow(w, keywords)})
		if end == len(text) {
			break
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].score > windows[j].score
	})
	if len(windows) == 0 || windows[0].score == 0 {
		return head(text, windowChars)
	}

	topK := opts.TopK
	if topK < 1 {
		topK = 1
	}
	if topK > len(windows) {
		topK = len(windows)
	}

	parts := make([]string, 0, topK)
	for _, w := range windows[:topK] {
		parts = append(parts, w.text)
	}
	return strings.Join(parts, divider)
}

// Keywords tokenizes a question into deduplicated lowercase alphanumeric
// terms longer than two characters.
func Keywords(question string) []string {
	raw := wordRe.FindAllString(strings.ToLower(question), -1)
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, w := range raw {
		if len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func scoreWindow(window string, keywords []string) int {
	lw := strings.ToLower(window)
	score := 0
	for _, kw := range keywords {
		n := strings.Count(lw, kw)
		if n == 0 {
			continue
		}
		contribution := n * occurrenceWeight
		if contribution > perKeywordCap {
			contribution = perKeywordCap
		}
		score += contribution
	}
	return score
}

func head(text string, n int) string {
	if n >= len(text) {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
