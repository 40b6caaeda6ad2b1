package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. The text is passed through mostly
// as-is: plain documents already carry their structure in the lines the
// section splitter inspects.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Parsed, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Parsed{
		Title: titleFromFilename(filename),
		Text:  strings.TrimSpace(strings.Join(lines, "\n")),
	}, nil
}
