package llm

import (
	"context"
	"strings"

	"github.com/dmcateer/docsieve/internal/tokens"
)

// Simulator is a Completer that never leaves the process. It produces
// deterministic canned replies with heuristic usage accounting, so the
// whole pipeline can run end to end without an API key or network access.
type Simulator struct{}

func (Simulator) Complete(_ context.Context, req Request) (*Result, error) {
	text := simulatedReply(req.Prompt)
	return &Result{
		Text:         text,
		InputTokens:  tokens.Estimate(req.System) + tokens.Estimate(req.Prompt),
		OutputTokens: tokens.Estimate(text),
	}, nil
}

// simulatedReply answers JSON-demanding prompts with a minimal valid
// object and everything else with a short echo of the prompt tail, which
// is enough for callers to exercise their parsing and accounting paths.
func simulatedReply(prompt string) string {
	if strings.Contains(prompt, `"summary"`) {
		return `{"summary": "Simulated summary of the supplied material.", "key_points": ["simulated"], "findings": []}`
	}
	tail := prompt
	if len(tail) > 160 {
		tail = tail[len(tail)-160:]
	}
	tail = strings.TrimSpace(tail)
	return "Simulated reply based on: " + tail
}
