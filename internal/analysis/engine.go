package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmcateer/docsieve/internal/chunker"
	"github.com/dmcateer/docsieve/internal/config"
	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/llm"
	"github.com/dmcateer/docsieve/internal/relevance"
	"github.com/dmcateer/docsieve/internal/tokens"
)

// Usage accumulates token spend across the completion calls of one
// operation.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (u *Usage) add(res *llm.Result) {
	u.InputTokens += res.InputTokens
	u.OutputTokens += res.OutputTokens
}

// Engine runs the relevance-driven analysis operations: summarization,
// question answering with escalation, and document comparison. It holds no
// per-request state; one Engine serves concurrent requests.
type Engine struct {
	completer llm.Completer
	counter   tokens.Counter
	selector  *relevance.Selector
	budgets   config.Budgets
	log       *slog.Logger

	maxConcurrentCalls int
}

func NewEngine(completer llm.Completer, counter tokens.Counter, selector *relevance.Selector, budgets config.Budgets, maxConcurrentCalls int, log *slog.Logger) *Engine {
	if maxConcurrentCalls <= 0 {
		maxConcurrentCalls = 5
	}
	return &Engine{
		completer:          completer,
		counter:            counter,
		selector:           selector,
		budgets:            budgets,
		log:                log,
		maxConcurrentCalls: maxConcurrentCalls,
	}
}

// Summarize selects the most relevant text of a document under the
// document token budget, chunks it, summarizes every chunk, and
// synthesizes the partial summaries into one structured result.
func (e *Engine) Summarize(ctx context.Context, text string) (*Summary, Usage, error) {
	var usage Usage
	if strings.TrimSpace(text) == "" {
		return nil, usage, fmt.Errorf("summarize: %w", document.ErrEmptyInput)
	}

	relevant, err := e.selector.SelectRelevant(ctx, text, e.budgets.DocumentTokens)
	if err != nil {
		if errors.Is(err, document.ErrEmptyInput) {
			return nil, usage, err
		}
		return nil, usage, stageErr("selection", err)
	}

	chunks, err := chunker.Split(ctx, e.counter, relevant, chunker.Config{
		MaxTokens:     e.budgets.ChunkTokens,
		OverlapTokens: e.budgets.OverlapTokens,
	})
	if err != nil {
		return nil, usage, stageErr("chunking", err)
	}
	if len(chunks) == 0 {
		return nil, usage, stageErr("chunking", errors.New("no chunks produced"))
	}

	partials, err := e.summarizeChunks(ctx, chunks, &usage)
	if err != nil {
		return nil, usage, err
	}

	res, err := e.completer.Complete(ctx, llm.Request{
		System:      analystSystem,
		Prompt:      buildSynthesisPrompt(partials),
		MaxTokens:   e.budgets.MaxOutputTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, usage, stageErr("synthesis", err)
	}
	usage.add(res)

	summary := parseSummary(res.Text)
	if summary.Degraded && e.log != nil {
		e.log.Warn("synthesis reply was not structured, keeping raw text")
	}
	return summary, usage, nil
}

// summarizeChunks fans one completion call out per chunk with bounded
// concurrency. Chunk summaries are independent, so completion order does
// not matter; results are reassembled by chunk index before synthesis.
func (e *Engine) summarizeChunks(ctx context.Context, chunks []document.Chunk, usage *Usage) ([]string, error) {
	type chunkResult struct {
		idx int
		res *llm.Result
		err error
	}

	sem := make(chan struct{}, e.maxConcurrentCalls)
	results := make(chan chunkResult, len(chunks))

	for _, c := range chunks {
		sem <- struct{}{}
		go func(c document.Chunk) {
			defer func() { <-sem }()
			res, err := e.completer.Complete(ctx, llm.Request{
				System:      analystSystem,
				Prompt:      buildChunkSummaryPrompt(c.Text),
				MaxTokens:   e.budgets.MaxOutputTokens,
				Temperature: 0.2,
			})
			results <- chunkResult{idx: c.Index, res: res, err: err}
		}(c)
	}

	parts := make([]string, len(chunks))
	var firstErr error
	for range chunks {
		r := <-results
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		usage.add(r.res)
		parts[r.idx] = r.res.Text
	}
	if firstErr != nil {
		return nil, stageErr("summarization", firstErr)
	}
	return parts, nil
}
