package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Summary is the structured result of document summarization. Degraded is
// set when the model reply could not be parsed as JSON and the raw text was
// kept as the summary with empty auxiliary fields — a softer outcome than a
// failed call, and deliberately not an error.
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Findings  []string `json:"findings"`
	Degraded  bool     `json:"degraded,omitempty"`
}

// Comparison is the structured result of comparing two documents.
type Comparison struct {
	Summary     string   `json:"summary"`
	Differences []string `json:"differences"`
	Gaps        []string `json:"gaps"`
	Degraded    bool     `json:"degraded,omitempty"`
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// parseSummary attempts the structured parse and degrades to the raw text
// on any shape mismatch.
func parseSummary(raw string) *Summary {
	text := stripCodeBlock(raw)
	var s Summary
	if err := json.Unmarshal([]byte(text), &s); err == nil && strings.TrimSpace(s.Summary) != "" {
		if s.KeyPoints == nil {
			s.KeyPoints = []string{}
		}
		if s.Findings == nil {
			s.Findings = []string{}
		}
		return &s
	}
	return &Summary{
		Summary:   strings.TrimSpace(raw),
		KeyPoints: []string{},
		Findings:  []string{},
		Degraded:  true,
	}
}

func parseComparison(raw string) *Comparison {
	text := stripCodeBlock(raw)
	var c Comparison
	if err := json.Unmarshal([]byte(text), &c); err == nil && strings.TrimSpace(c.Summary) != "" {
		if c.Differences == nil {
			c.Differences = []string{}
		}
		if c.Gaps == nil {
			c.Gaps = []string{}
		}
		return &c
	}
	return &Comparison{
		Summary:     strings.TrimSpace(raw),
		Differences: []string{},
		Gaps:        []string{},
		Degraded:    true,
	}
}
