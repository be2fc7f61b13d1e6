package parser

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphsPackedIntoOnePage(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 1 {
		t.Fatalf("expected short input to fit one page, got %d", len(pages))
	}
	if pages[0].Number != 1 {
		t.Errorf("expected page 1, got %d", pages[0].Number)
	}

	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if pages[0].Text != want {
		t.Errorf("expected %q, got %q", want, pages[0].Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(pages))
	}
}

func TestTextParser_LongInputSplitsPages(t *testing.T) {
	para := strings.Repeat("word ", 200) // ~1000 chars
	input := strings.Join([]string{para, para, para, para, para}, "\n\n")

	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(input), "long.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) < 2 {
		t.Fatalf("expected multiple pages for ~5000 chars, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Number != i+1 {
			t.Errorf("page %d numbered %d", i, page.Number)
		}
		if len(page.Text) > pageCharBudget+1100 {
			t.Errorf("page %d far exceeds budget: %d chars", page.Number, len(page.Text))
		}
	}
}

func TestTextParser_WhitespaceOnlyLinesSplitParagraphs(t *testing.T) {
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Text != "Para one.\n\nPara two." {
		t.Errorf("unexpected page text: %q", pages[0].Text)
	}
}
