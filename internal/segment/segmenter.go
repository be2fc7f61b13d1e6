package segment

import (
	"github.com/finlens/ipoagent/internal/document"
)

// DefaultHeaderWindow is how many leading characters of a page are checked
// for a section header. Headers appear early on a page but not always on the
// first line.
const DefaultHeaderWindow = 1000

// Segmenter walks a page sequence and stamps each page with a section tag,
// carrying the last detected tag forward across pages that have no header of
// their own. One Segmenter tracks one ingestion pass; it is not shared.
type Segmenter struct {
	classifier   *Classifier
	headerWindow int
	current      document.Section
}

func NewSegmenter(classifier *Classifier, headerWindow int) *Segmenter {
	if headerWindow <= 0 {
		headerWindow = DefaultHeaderWindow
	}
	return &Segmenter{
		classifier:   classifier,
		headerWindow: headerWindow,
		current:      document.SectionIntroduction,
	}
}

// Segment emits one Page per raw page, in order. The section of page n is
// either a freshly detected tag or the tag of page n-1; it is never empty.
func (s *Segmenter) Segment(pages []document.RawPage, source string) []document.Page {
	out := make([]document.Page, 0, len(pages))
	for _, p := range pages {
		snippet := p.Text
		if len(snippet) > s.headerWindow {
			snippet = snippet[:s.headerWindow]
		}
		if sec, ok := s.classifier.Detect(snippet); ok {
			s.current = sec
		}
		out = append(out, document.Page{
			Text:    p.Text,
			Number:  p.Number,
			Section: s.current,
			Source:  source,
		})
	}
	return out
}
