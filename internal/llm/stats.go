package llm

import (
	"context"
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp    time.Time
	durationMs   int64
	inputTokens  int
	outputTokens int
}

// Snapshot is a point-in-time aggregate of completion calls within the
// rolling window: latency percentiles plus total token spend.
type Snapshot struct {
	Count        int     `json:"count"`
	MinMs        int64   `json:"min_ms"`
	MaxMs        int64   `json:"max_ms"`
	AvgMs        float64 `json:"avg_ms"`
	P50Ms        float64 `json:"p50_ms"`
	P95Ms        float64 `json:"p95_ms"`
	P99Ms        float64 `json:"p99_ms"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
}

// Stats tracks recent completion latency and token usage within a rolling
// window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(durationMs int64, inputTokens, outputTokens int) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:    now,
		durationMs:   durationMs,
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
	})
}

func (s *Stats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, 0, len(s.samples))
	var sum, in, out int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		in += int64(sm.inputTokens)
		out += int64(sm.outputTokens)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return Snapshot{
		Count:        len(values),
		MinMs:        values[0],
		MaxMs:        values[len(values)-1],
		AvgMs:        float64(sum) / float64(len(values)),
		P50Ms:        percentile(values, 50),
		P95Ms:        percentile(values, 95),
		P99Ms:        percentile(values, 99),
		InputTokens:  in,
		OutputTokens: out,
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile interpolates linearly between the two nearest sorted samples.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}

// WithStats wraps a Completer so every call, simulated or real, lands in
// the same rolling-window accounting.
func WithStats(inner Completer, stats *Stats) Completer {
	return &statsCompleter{inner: inner, stats: stats}
}

type statsCompleter struct {
	inner Completer
	stats *Stats
}

func (c *statsCompleter) Complete(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := c.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	c.stats.Record(time.Since(start).Milliseconds(), res.InputTokens, res.OutputTokens)
	return res, nil
}
