package relevance

import (
	"strings"

	"github.com/dmcateer/docsieve/internal/document"
)

// complianceKeywords is the fixed vocabulary used to rank sections. Matching
// is presence-based: a term that appears once scores the same as one that
// appears fifty times. This is a coarse ranking signal, not a precision
// metric.
var complianceKeywords = []string{
	"ppe",
	"hazard",
	"policy",
	"procedure",
	"risk",
	"training",
	"inspection",
	"permit",
	"lockout",
	"tagout",
	"compliance",
	"incident",
	"audit",
	"emergency",
	"safety",
	"violation",
	"regulation",
	"osha",
	"exposure",
	"certification",
}

const keywordWeight = 2

// Score returns the keyword-relevance score of a section: keywordWeight per
// vocabulary term present anywhere in the lowercased title plus body.
func Score(sec document.Section) int {
	text := strings.ToLower(sec.Title + " " + sec.Body)
	score := 0
	for _, kw := range complianceKeywords {
		if strings.Contains(text, kw) {
			score += keywordWeight
		}
	}
	return score
}
