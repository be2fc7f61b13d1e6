package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
)

// Parser converts raw document bytes into a flat list of pages. PDFs keep
// their real page numbers; other formats get synthetic pages so the rest of
// the pipeline never has to care where the bytes came from.
type Parser interface {
	Parse(r io.Reader, filename string) ([]document.RawPage, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options carries per-format knobs into the parser registry.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go library
	// cannot extract text.
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// pageCharBudget caps synthetic pages from non-paginated formats. The value
// approximates a dense prospectus page so downstream section detection sees
// comparable header windows for every format.
const pageCharBudget = 3000

// pageBuilder accumulates text blocks into synthetic pages. A heading always
// starts a fresh page so it lands inside the next page's header window.
type pageBuilder struct {
	pages   []document.RawPage
	current strings.Builder
}

func (b *pageBuilder) addBlock(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.current.Len() > 0 && b.current.Len()+len(text) > pageCharBudget {
		b.flush()
	}
	if b.current.Len() > 0 {
		b.current.WriteString("\n\n")
	}
	b.current.WriteString(text)
}

func (b *pageBuilder) addHeading(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	b.flush()
	b.current.WriteString(title)
}

func (b *pageBuilder) flush() {
	if b.current.Len() == 0 {
		return
	}
	b.pages = append(b.pages, document.RawPage{
		Text:   b.current.String(),
		Number: len(b.pages) + 1,
	})
	b.current.Reset()
}

func (b *pageBuilder) result() []document.RawPage {
	b.flush()
	return b.pages
}
