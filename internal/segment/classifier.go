package segment

import (
	"regexp"

	"github.com/finlens/ipoagent/internal/document"
)

// rule pairs a section tag with the header pattern that introduces it.
// Precedence is the slice order: the first matching rule wins.
type rule struct {
	section document.Section
	pattern *regexp.Regexp
}

// Classifier detects section headers in a page's leading text. Patterns
// follow the standard RHP table of contents; `\s+` between words tolerates
// headers broken across line wraps.
type Classifier struct {
	rules []rule
}

func NewClassifier() *Classifier {
	return &Classifier{
		rules: []rule{
			{document.SectionRiskFactors, regexp.MustCompile(`(?i)RISK\s+FACTORS`)},
			{document.SectionFinancials, regexp.MustCompile(`(?i)(?:FINANCIAL\s+STATEMENTS|CONSOLIDATED\s+FINANCIAL\s+INFORMATION|SUMMARY\s+OF\s+RESTATED\s+FINANCIAL\s+INFORMATION|RESTATED\s+FINANCIAL\s+INFORMATION)`)},
			{document.SectionBusinessOverview, regexp.MustCompile(`(?i)(?:BUSINESS\s+OVERVIEW|OUR\s+BUSINESS)`)},
			{document.SectionManagementDisc, regexp.MustCompile(`(?i)MANAGEMENT['’]S\s+DISCUSSION\s+AND\s+ANALYSIS`)},
			{document.SectionUseOfProceeds, regexp.MustCompile(`(?i)USE\s+OF\s+PROCEEDS`)},
			{document.SectionLegalInfo, regexp.MustCompile(`(?i)LEGAL\s+AND\s+OTHER\s+INFORMATION`)},
			{document.SectionSummaryFinancials, regexp.MustCompile(`(?i)SUMMARY\s+FINANCIAL\s+DATA`)},
		},
	}
}

// Detect returns the section of the first rule matching the snippet, or
// false when no header is present.
func (c *Classifier) Detect(snippet string) (document.Section, bool) {
	for _, r := range c.rules {
		if r.pattern.MatchString(snippet) {
			return r.section, true
		}
	}
	return "", false
}
