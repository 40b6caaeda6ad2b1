package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/llm"
)

// Compare selects the relevant text of two documents, each under half the
// document budget so the combined prompt stays within it, and asks for a
// structured comparison in a single call.
func (e *Engine) Compare(ctx context.Context, a, b document.Document) (*Comparison, Usage, error) {
	var usage Usage
	if strings.TrimSpace(a.Text) == "" || strings.TrimSpace(b.Text) == "" {
		return nil, usage, fmt.Errorf("compare: %w", document.ErrEmptyInput)
	}

	perDoc := e.budgets.DocumentTokens / 2
	if perDoc < 1 {
		perDoc = 1
	}

	relA, err := e.selector.SelectRelevant(ctx, a.Text, perDoc)
	if err != nil {
		return nil, usage, stageErr("selection", fmt.Errorf("document %s: %w", a.ID, err))
	}
	relB, err := e.selector.SelectRelevant(ctx, b.Text, perDoc)
	if err != nil {
		return nil, usage, stageErr("selection", fmt.Errorf("document %s: %w", b.ID, err))
	}

	res, err := e.completer.Complete(ctx, llm.Request{
		System:      analystSystem,
		Prompt:      buildComparePrompt(titleOrID(a), relA, titleOrID(b), relB),
		MaxTokens:   e.budgets.MaxOutputTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, usage, stageErr("synthesis", err)
	}
	usage.add(res)

	cmp := parseComparison(res.Text)
	if cmp.Degraded && e.log != nil {
		e.log.Warn("comparison reply was not structured, keeping raw text")
	}
	if strings.TrimSpace(cmp.Summary) == "" {
		return nil, usage, stageErr("synthesis", errors.New("empty comparison"))
	}
	return cmp, usage, nil
}

func titleOrID(d document.Document) string {
	if strings.TrimSpace(d.Title) != "" {
		return d.Title
	}
	return d.ID
}
