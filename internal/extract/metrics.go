package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
)

// metricRule is an ordered list of candidate patterns for one metric, most
// specific first. Each pattern captures the first numeric group within a
// bounded lookahead window after the label.
type metricRule struct {
	key      document.MetricKey
	patterns []*regexp.Regexp
}

// Extractor scans financial-statement text for headline metrics using
// heuristic label patterns. Restated RHP financials print the latest period
// first, so the first captured number per label is the one reported.
type Extractor struct {
	rules []metricRule
}

func NewExtractor() *Extractor {
	return &Extractor{
		rules: []metricRule{
			{document.MetricRevenue, compileAll(
				`Revenue\s+from\s+operations.{0,100}?([\d,]+\.?\d*)`,
				`Total\s+Income.{0,100}?([\d,]+\.?\d*)`,
			)},
			{document.MetricProfitAfterTax, compileAll(
				`Profit\s+for\s+the\s+(?:period|year).{0,100}?([\d,]+\.?\d*)`,
				`Profit\s+After\s+Tax.{0,100}?([\d,]+\.?\d*)`,
				`Net\s+Profit.{0,100}?([\d,]+\.?\d*)`,
			)},
			// EPS values carry decimals; requiring one avoids matching the
			// face value of the share printed nearby.
			{document.MetricEPS, compileAll(
				`Basic\s+earnings\s+per\s+equity\s+share.{0,150}?([\d,]+\.\d+)`,
				`Diluted\s+earnings\s+per\s+equity\s+share.{0,150}?([\d,]+\.\d+)`,
				`EPS.{0,150}?([\d,]+\.\d+)`,
			)},
			{document.MetricNetWorth, compileAll(
				`Net\s+Worth.{0,100}?([\d,]+\.?\d*)`,
			)},
			{document.MetricTotalBorrowings, compileAll(
				`Total\s+Borrowings.{0,50}?(-|[\d,]+\.?\d*)`,
				`(?:Total Debt|Non-current borrowings).{0,50}?(-|[\d,]+\.?\d*)`,
			)},
		},
	}
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?is)` + e)
	}
	return out
}

// Extract returns the metrics found in the chunk set. Keys with no matching
// pattern are absent from the map, never zero. Chunks tagged
// FINANCIAL_STATEMENTS are searched first; when section detection failed and
// no such chunks exist, the whole chunk set is searched instead.
func (e *Extractor) Extract(chunks []document.Chunk) map[document.MetricKey]float64 {
	var filtered []document.Chunk
	for _, c := range chunks {
		if c.Section == document.SectionFinancials {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		filtered = chunks
	}

	var buf strings.Builder
	for i, c := range filtered {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(c.Text)
	}
	text := sanitize(buf.String())

	found := make(map[document.MetricKey]float64)
	for _, rule := range e.rules {
		for _, pattern := range rule.patterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value, err := parseAmount(m[1])
			if err != nil {
				// Matched label but unusable number: try the next pattern.
				continue
			}
			found[rule.key] = value
			break
		}
	}
	return found
}

// sanitize strips currency artifacts that would otherwise sit between a
// label and its number.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "₹", "")
	text = strings.ReplaceAll(text, "Rs.", "")
	return text
}

// parseAmount cleans thousands separators and parses the captured group.
// A lone "-" in a financials table means nil, reported as zero.
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
