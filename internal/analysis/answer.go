package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmcateer/docsieve/internal/document"
	"github.com/dmcateer/docsieve/internal/llm"
	"github.com/dmcateer/docsieve/internal/snippet"
)

// Answer is the result of question answering. Token counts cover every
// completion call made: when the answer escalated, they are the sum of
// both passes, never just the second one.
type Answer struct {
	Text         string `json:"answer"`
	Escalated    bool   `json:"escalated"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// lowConfidenceMarkers are the phrases that flag a first-pass answer as
// not grounded in the excerpt, triggering the single larger-context retry.
var lowConfidenceMarkers = []string{
	"can't find",
	"cannot find",
	"can not find",
	"insufficient context",
	"not provided",
	"unclear",
	"unspecified",
	"does not contain",
	"no information",
}

// AnswerQuestion extracts keyword-dense excerpts for the question, asks
// once, and escalates at most once — with a larger excerpt budget and a
// prompt that may point at a likely section — when the first answer admits
// it cannot find the information. Transport failures are not retried here.
func (e *Engine) AnswerQuestion(ctx context.Context, text, question string) (*Answer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("answer: document text: %w", document.ErrEmptyInput)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("answer: question: %w", document.ErrEmptyInput)
	}

	excerpts := snippet.Extract(text, question, e.budgets.AnswerTokens, snippet.Options{
		TopK:         3,
		OverlapRatio: 0.5,
	})
	if excerpts == "" {
		return nil, stageErr("extraction", errors.New("no excerpt produced"))
	}

	first, err := e.completer.Complete(ctx, llm.Request{
		System:    analystSystem,
		Prompt:    buildAnswerPrompt(question, excerpts),
		MaxTokens: e.budgets.MaxOutputTokens,
	})
	if err != nil {
		return nil, stageErr("answer", err)
	}

	answer := &Answer{
		Text:         first.Text,
		InputTokens:  first.InputTokens,
		OutputTokens: first.OutputTokens,
	}
	if !isLowConfidence(first.Text) {
		return answer, nil
	}

	if e.log != nil {
		e.log.Info("first answer low-confidence, escalating",
			"snippet_tokens", e.budgets.EscalationTokens)
	}
	larger := snippet.Extract(text, question, e.budgets.EscalationTokens, snippet.Options{
		TopK:         4,
		OverlapRatio: 0.6,
	})
	second, err := e.completer.Complete(ctx, llm.Request{
		System:    analystSystem,
		Prompt:    buildEscalatedAnswerPrompt(question, larger),
		MaxTokens: e.budgets.MaxOutputTokens,
	})
	if err != nil {
		return nil, stageErr("answer", err)
	}

	answer.Text = second.Text
	answer.Escalated = true
	answer.InputTokens += second.InputTokens
	answer.OutputTokens += second.OutputTokens
	return answer, nil
}

func isLowConfidence(answer string) bool {
	la := strings.ToLower(answer)
	for _, marker := range lowConfidenceMarkers {
		if strings.Contains(la, marker) {
			return true
		}
	}
	return false
}
