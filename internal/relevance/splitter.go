package relevance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmcateer/docsieve/internal/document"
)

// defaultTitle collects any text that appears before the first detected
// heading.
const defaultTitle = "Introduction"

// maxTitleLen bounds section titles; heading lines longer than this are
// truncated, not rejected.
const maxTitleLen = 120

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*[.)]\s+\S`)
	capsRunRe         = regexp.MustCompile(`[A-Z]{3,}`)
	lowerRe           = regexp.MustCompile(`[a-z]`)
)

// headingVocab lists words that open a heading line in typical compliance
// documents even without numbering or capitalization.
var headingVocab = map[string]bool{
	"section":          true,
	"policy":           true,
	"procedure":        true,
	"scope":            true,
	"purpose":          true,
	"hazard":           true,
	"hazards":          true,
	"safety":           true,
	"responsibilities": true,
	"training":         true,
	"definitions":      true,
	"appendix":         true,
	"requirements":     true,
}

// Split breaks raw document text into titled sections using heading
// heuristics: numbered lines ("1.", "2)"), ALL-CAPS lines, markdown "#"
// prefixes, and a fixed vocabulary of heading words. It is a single
// forward scan with no nesting; lines before the first heading land under
// "Introduction", and sections with a blank body are dropped.
func Split(text string) []document.Section {
	var sections []document.Section
	title := defaultTitle
	var body []string

	flush := func() {
		joined := strings.TrimSpace(strings.Join(body, "\n"))
		if joined != "" {
			sections = append(sections, document.Section{Title: title, Body: joined})
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if isHeading(line) {
			flush()
			title = headingTitle(line)
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

func isHeading(line string) bool {
	l := strings.TrimSpace(line)
	if l == "" {
		return false
	}
	if strings.HasPrefix(l, "#") {
		return true
	}
	if numberedHeadingRe.MatchString(l) {
		return true
	}
	if isAllCapsHeading(l) {
		return true
	}
	first := strings.ToLower(strings.TrimRight(strings.Fields(l)[0], ".:"))
	return headingVocab[first]
}

// isAllCapsHeading accepts lines made of upper-case words with at least one
// run of three capital letters, e.g. "LOCKOUT TAGOUT PROCEDURE".
func isAllCapsHeading(l string) bool {
	if lowerRe.MatchString(l) {
		return false
	}
	return capsRunRe.MatchString(l)
}

func headingTitle(line string) string {
	t := strings.TrimSpace(line)
	t = strings.TrimLeft(t, "#")
	t = strings.TrimSpace(t)
	if t == "" {
		t = defaultTitle
	}
	if len(t) > maxTitleLen {
		cut := maxTitleLen
		for cut > 0 && !utf8.RuneStart(t[cut]) {
			cut--
		}
		t = strings.TrimSpace(t[:cut])
	}
	return t
}
