package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
)

// TextParser handles plain text files. Paragraphs are packed into
// synthetic pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]document.RawPage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b pageBuilder
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			b.addBlock(current.String())
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.result(), nil
}
