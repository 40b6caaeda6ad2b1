package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"
)

// maxCountChars bounds the size of a single remote count request. Longer
// inputs are truncated before the call: at that length the heuristic error
// is negligible relative to the cost of shipping megabytes per probe.
const maxCountChars = 200_000

// Remote counts tokens via the Anthropic count_tokens endpoint. Failures
// are logged and absorbed by falling back to the character heuristic, so
// Count never surfaces an error to the pipeline.
type Remote struct {
	apiKey     string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

func NewRemote(apiKey, model string, log *slog.Logger) *Remote {
	return &Remote{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type countRequest struct {
	Model    string         `json:"model"`
	Messages []countMessage `json:"messages"`
}

type countMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type countResponse struct {
	InputTokens int `json:"input_tokens"`
}

func (r *Remote) Count(ctx context.Context, text string) int {
	if text == "" {
		return 0
	}
	if len(text) > maxCountChars {
		text = truncateRunes(text, maxCountChars)
	}

	n, err := r.countRemote(ctx, text)
	if err != nil {
		r.log.Warn("token count degraded to heuristic", "error", err)
		return Estimate(text)
	}
	return n
}

func (r *Remote) countRemote(ctx context.Context, text string) (int, error) {
	body, err := json.Marshal(countRequest{
		Model:    r.model,
		Messages: []countMessage{{Role: "user", Content: text}},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.anthropic.com/v1/messages/count_tokens", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count_tokens call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count_tokens status %d", resp.StatusCode)
	}

	var out countResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.InputTokens < 0 {
		return 0, fmt.Errorf("negative token count %d", out.InputTokens)
	}
	return out.InputTokens, nil
}

// truncateRunes cuts s to at most max bytes without splitting a UTF-8 rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
