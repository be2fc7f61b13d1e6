package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/finlens/ipoagent/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Maximum chunk size in characters.
	ChunkOverlap int // Trailing characters carried into the next chunk.
}

// DefaultConfig returns sensible defaults for prospectus text.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 100,
	}
}

// separators is the split preference, coarsest first. The empty string means
// raw character positions as the last resort.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// ChunkPages splits segmented pages into citation-stable chunks. Pages are
// grouped into maximal runs sharing a section so no chunk ever crosses a
// section boundary, and each page is chunked independently so every chunk
// carries an exact page number.
func ChunkPages(pages []document.Page, cfg Config) []document.Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 2
	}

	var chunks []document.Chunk
	for _, group := range groupBySection(pages) {
		for _, page := range group {
			chunks = append(chunks, chunkPage(page, cfg)...)
		}
	}
	return chunks
}

// groupBySection returns maximal runs of consecutive pages with the same
// section tag, preserving page order.
func groupBySection(pages []document.Page) [][]document.Page {
	var groups [][]document.Page
	var current []document.Page
	for _, p := range pages {
		if len(current) > 0 && current[len(current)-1].Section != p.Section {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// chunkPage splits one page's normalized text. An empty page yields no chunks.
func chunkPage(page document.Page, cfg Config) []document.Chunk {
	text := Normalize(page.Text)
	if text == "" {
		return nil
	}

	segments := split(text, cfg.ChunkSize, separators)

	chunks := make([]document.Chunk, 0, len(segments))
	prevTail := ""
	for i, seg := range segments {
		chunkText := seg
		if i > 0 && cfg.ChunkOverlap > 0 {
			chunkText = prevTail + seg
		}
		chunks = append(chunks, document.Chunk{
			ID:      fmt.Sprintf("p%d-c%d", page.Number, i),
			Text:    chunkText,
			Section: page.Section,
			Page:    page.Number,
			Source:  page.Source,
		})
		prevTail = tail(seg, cfg.ChunkOverlap)
	}
	return chunks
}

// Normalize collapses horizontal whitespace runs to single spaces, trims
// lines, and collapses blank-line runs to a single paragraph break. Line and
// paragraph structure survives so the separator hierarchy has something to
// work with.
func Normalize(text string) string {
	var paragraphs []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if len(current) > 0 {
				paragraphs = append(paragraphs, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, strings.Join(fields, " "))
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, "\n"))
	}
	return strings.Join(paragraphs, "\n\n")
}

// split recursively cuts text into segments no longer than size, preferring
// the coarsest separator that works. Separators stay attached to the piece
// they terminate, so concatenating the segments reproduces the input exactly.
func split(text string, size int, seps []string) []string {
	if len(text) <= size {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return hardSplit(text, size)
	}

	parts := strings.SplitAfter(text, seps[0])

	var segments []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}
	for _, part := range parts {
		if len(part) > size {
			// This piece alone is oversized; recurse with finer separators.
			flush()
			segments = append(segments, split(part, size, seps[1:])...)
			continue
		}
		if current.Len()+len(part) > size {
			flush()
		}
		current.WriteString(part)
	}
	flush()
	return segments
}

// hardSplit cuts at raw character positions, backing up to rune boundaries.
func hardSplit(text string, size int) []string {
	var out []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		out = append(out, text)
	}
	return out
}

// tail returns the last n bytes of s, extended back to a rune boundary.
func tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	start := len(s) - n
	for start > 0 && !utf8.RuneStart(s[start]) {
		start--
	}
	return s[start:]
}
