package document

// Section labels the part of a prospectus a page or chunk belongs to.
type Section string

const (
	// SectionIntroduction is the default before any header is detected.
	SectionIntroduction Section = "INTRODUCTION"

	SectionRiskFactors       Section = "RISK_FACTORS"
	SectionFinancials        Section = "FINANCIAL_STATEMENTS"
	SectionBusinessOverview  Section = "BUSINESS_OVERVIEW"
	SectionManagementDisc    Section = "MANAGEMENT_DISCUSSION"
	SectionUseOfProceeds     Section = "USE_OF_PROCEEDS"
	SectionLegalInfo         Section = "LEGAL_INFO"
	SectionSummaryFinancials Section = "SUMMARY_FINANCIALS"
)

// RawPage is a page of plain text as produced by a parser, before any
// section labeling.
type RawPage struct {
	Text   string
	Number int // 1-based
}

// Page is a parsed document page stamped with its section. Immutable after
// segmentation.
type Page struct {
	Text    string
	Number  int // 1-based, strictly increasing
	Section Section
	Source  string
}

// Chunk is a bounded-size slice of one page's text. A chunk never spans two
// pages and never spans two sections.
type Chunk struct {
	ID      string
	Text    string
	Section Section
	Page    int
	Source  string
}

// SearchResult is one relevance-ranked hit from the similarity index.
type SearchResult struct {
	Text    string
	Page    int
	Section Section
	Score   float64
}

// MetricKey names one of the headline financial metrics pulled out of the
// financial statements.
type MetricKey string

const (
	MetricRevenue         MetricKey = "revenue"
	MetricProfitAfterTax  MetricKey = "pat"
	MetricEPS             MetricKey = "eps"
	MetricNetWorth        MetricKey = "net_worth"
	MetricTotalBorrowings MetricKey = "total_borrowings"
)

// MetricKeys lists all extractable metrics in a stable order.
var MetricKeys = []MetricKey{
	MetricRevenue,
	MetricProfitAfterTax,
	MetricEPS,
	MetricNetWorth,
	MetricTotalBorrowings,
}

// Metric is one stored metric row. At most one value per key per document;
// re-ingestion overwrites.
type Metric struct {
	Name   MetricKey
	Value  float64
	Unit   string
	Period string
}

// Intent is the classified purpose of a user query.
type Intent string

const (
	IntentFinancial  Intent = "FINANCIAL"
	IntentRisk       Intent = "RISK"
	IntentBusiness   Intent = "BUSINESS"
	IntentSummary    Intent = "SUMMARY"
	IntentOutOfScope Intent = "OUT_OF_SCOPE"
)

// Intents lists the valid intents in classification precedence order.
var Intents = []Intent{
	IntentFinancial,
	IntentRisk,
	IntentBusiness,
	IntentSummary,
	IntentOutOfScope,
}
