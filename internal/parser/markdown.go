package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. The AST is
// flattened back to plain text with "#" heading lines, which normalizes
// away markdown syntax that is not a heading (emphasis, links, fences)
// while keeping the structure the section splitter relies on.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Parsed, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	title := titleFromFilename(filename)
	var out strings.Builder
	firstHeadingSeen := false

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			headingText := strings.TrimSpace(string(node.Text(src)))
			if headingText == "" {
				continue
			}
			if !firstHeadingSeen && node.Level == 1 {
				title = headingText
			}
			firstHeadingSeen = true
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			out.WriteString(strings.Repeat("#", node.Level))
			out.WriteString(" ")
			out.WriteString(headingText)
		default:
			t := blockText(n, src)
			if t == "" {
				continue
			}
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			out.WriteString(t)
		}
	}

	return &Parsed{
		Title: title,
		Text:  strings.TrimSpace(out.String()),
	}, nil
}

// blockText extracts the plain text of a goldmark block node, including
// nested inlines.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines.Len() > 0 {
			// Blocks with source lines (paragraphs, code fences) carry the
			// same text as their inline children; use the lines and stop.
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return strings.TrimSpace(buf.String())
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else if sub := blockText(c, src); sub != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(sub)
		}
	}
	return strings.TrimSpace(buf.String())
}
