package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dmcateer/docsieve/internal/config"
	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/llm"
	"github.com/dmcateer/docsieve/internal/relevance"
	"github.com/dmcateer/docsieve/internal/tokens"
)

// fakeCompleter answers prompts from a routing function and records every
// call. Safe for the engine's concurrent fan-out.
type fakeCompleter struct {
	mu      sync.Mutex
	calls   []llm.Request
	respond func(req llm.Request) (*llm.Result, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (*llm.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testBudgets() config.Budgets {
	return config.Budgets{
		DocumentTokens:   400,
		ChunkTokens:      100,
		OverlapTokens:    10,
		AnswerTokens:     100,
		EscalationTokens: 200,
		MaxOutputTokens:  256,
	}
}

func testEngine(fc *fakeCompleter) *Engine {
	log := slog.New(slog.DiscardHandler)
	sel := relevance.NewSelector(tokens.Heuristic{}, 4, log)
	return NewEngine(fc, tokens.Heuristic{}, sel, testBudgets(), 3, log)
}

func policyText() string {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("# Safety Procedure\n")
		b.WriteString(strings.Repeat("Workers must complete hazard training before operating the press. ", 6))
		b.WriteString("\n")
	}
	return b.String()
}

func TestSummarize_EmptyInput(t *testing.T) {
	e := testEngine(&fakeCompleter{})
	_, _, err := e.Summarize(context.Background(), "   ")
	if !errors.Is(err, document.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestSummarize_SynthesizesChunkSummaries(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			if strings.Contains(req.Prompt, `"summary"`) {
				return &llm.Result{
					Text:         `{"summary": "Hazard training is mandatory.", "key_points": ["training"], "findings": []}`,
					InputTokens:  50,
					OutputTokens: 20,
				}, nil
			}
			return &llm.Result{Text: "Partial: training required.", InputTokens: 30, OutputTokens: 10}, nil
		},
	}
	e := testEngine(fc)

	sum, usage, err := e.Summarize(context.Background(), policyText())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Degraded {
		t.Error("did not expect degraded summary")
	}
	if sum.Summary != "Hazard training is mandatory." {
		t.Errorf("unexpected summary: %q", sum.Summary)
	}

	calls := fc.callCount()
	if calls < 2 {
		t.Fatalf("expected at least one chunk call plus synthesis, got %d calls", calls)
	}
	chunkCalls := calls - 1
	wantIn := chunkCalls*30 + 50
	wantOut := chunkCalls*10 + 20
	if usage.InputTokens != wantIn || usage.OutputTokens != wantOut {
		t.Errorf("expected usage %d/%d, got %d/%d", wantIn, wantOut, usage.InputTokens, usage.OutputTokens)
	}
}

func TestSummarize_DegradedSynthesisKeepsRawText(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			if strings.Contains(req.Prompt, `"summary"`) {
				return &llm.Result{Text: "not json at all"}, nil
			}
			return &llm.Result{Text: "partial"}, nil
		},
	}
	e := testEngine(fc)

	sum, _, err := e.Summarize(context.Background(), policyText())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Degraded {
		t.Error("expected degraded summary")
	}
	if sum.Summary != "not json at all" {
		t.Errorf("expected raw text kept, got %q", sum.Summary)
	}
}

func TestSummarize_ChunkFailureIsStageError(t *testing.T) {
	boom := &llm.RetryableError{StatusCode: 529, Message: "overloaded"}
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			return nil, boom
		},
	}
	e := testEngine(fc)

	_, _, err := e.Summarize(context.Background(), policyText())
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if se.Stage != "summarization" {
		t.Errorf("expected summarization stage, got %q", se.Stage)
	}
	var re *llm.RetryableError
	if !errors.As(err, &re) {
		t.Error("expected the retryable cause to stay reachable through the wrap")
	}
}

func TestCompare_EmptyDocument(t *testing.T) {
	e := testEngine(&fakeCompleter{})
	a := document.Document{ID: "a", Text: policyText()}
	b := document.Document{ID: "b", Text: "  "}
	_, _, err := e.Compare(context.Background(), a, b)
	if !errors.Is(err, document.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestCompare_SingleCallWithBothDocuments(t *testing.T) {
	fc := &fakeCompleter{
		respond: func(req llm.Request) (*llm.Result, error) {
			return &llm.Result{
				Text:         `{"summary": "A requires annual training, B quarterly.", "differences": ["cadence"], "gaps": []}`,
				InputTokens:  80,
				OutputTokens: 25,
			}, nil
		},
	}
	e := testEngine(fc)

	a := document.Document{ID: "doc-a", Title: "Plant A Policy", Text: policyText()}
	b := document.Document{ID: "doc-b", Title: "Plant B Policy", Text: policyText()}
	cmp, usage, err := e.Compare(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.callCount() != 1 {
		t.Errorf("expected exactly one completion call, got %d", fc.callCount())
	}
	if cmp.Summary == "" || len(cmp.Differences) != 1 {
		t.Errorf("unexpected comparison: %+v", cmp)
	}
	if usage.InputTokens != 80 || usage.OutputTokens != 25 {
		t.Errorf("expected usage 80/25, got %d/%d", usage.InputTokens, usage.OutputTokens)
	}

	prompt := fc.calls[0].Prompt
	if !strings.Contains(prompt, "Plant A Policy") || !strings.Contains(prompt, "Plant B Policy") {
		t.Error("expected both document titles in the prompt")
	}
}
