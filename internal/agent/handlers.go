package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/llm"
)

// NoRisksMessage is returned by the risk handler when neither the filtered
// query nor its unfiltered fallback found any context. It is fixed text; the
// LLM is not consulted.
const NoRisksMessage = "No specific risks found in the 'Risk Factors' section for this query. Please check the document manually."

// FinancialHandler merges stored metrics with financial-statement context.
type FinancialHandler struct {
	llm       ChatClient
	metrics   MetricReader
	retriever Retriever
	log       *slog.Logger
}

func NewFinancialHandler(client ChatClient, metrics MetricReader, retriever Retriever, log *slog.Logger) *FinancialHandler {
	return &FinancialHandler{llm: client, metrics: metrics, retriever: retriever, log: log}
}

func (h *FinancialHandler) Handle(ctx context.Context, docID, query string) string {
	metrics, err := h.metrics.GetAll(ctx, docID)
	if err != nil {
		h.log.Warn("metric read failed", "doc_id", docID, "error", err)
	}

	results := h.retriever.Retrieve(ctx, docID, query, 3, document.SectionFinancials)
	var contextText strings.Builder
	for _, res := range results {
		fmt.Fprintf(&contextText, "-- Text (Page %d): %s\n", res.Page, res.Text)
	}

	fullContext := fmt.Sprintf("Structured Data found in DB:\n%s\nUnstructured Text Context:\n%s",
		formatMetrics(metrics), contextText.String())

	return chatAnswer(ctx, h.llm, []llm.Message{
		{Role: "system", Content: financialPrompt(fullContext, query)},
	}, 0.1)
}

// RiskHandler answers strictly from the RISK_FACTORS section.
type RiskHandler struct {
	llm       ChatClient
	retriever Retriever
}

func NewRiskHandler(client ChatClient, retriever Retriever) *RiskHandler {
	return &RiskHandler{llm: client, retriever: retriever}
}

func (h *RiskHandler) Handle(ctx context.Context, docID, query string) string {
	results := h.retriever.Retrieve(ctx, docID, query, 5, document.SectionRiskFactors)
	if len(results) == 0 {
		return NoRisksMessage
	}

	var contextText strings.Builder
	for _, res := range results {
		fmt.Fprintf(&contextText, "-- Risk Source (Page %d): %s\n", res.Page, res.Text)
	}

	return chatAnswer(ctx, h.llm, []llm.Message{
		{Role: "system", Content: riskPrompt(contextText.String(), query)},
	}, 0.2)
}

// BusinessHandler answers from BUSINESS_OVERVIEW, falling through to an
// unfiltered search when section detection failed (the gateway handles the
// fallback).
type BusinessHandler struct {
	llm       ChatClient
	retriever Retriever
}

func NewBusinessHandler(client ChatClient, retriever Retriever) *BusinessHandler {
	return &BusinessHandler{llm: client, retriever: retriever}
}

func (h *BusinessHandler) Handle(ctx context.Context, docID, query string) string {
	results := h.retriever.Retrieve(ctx, docID, query, 5, document.SectionBusinessOverview)

	var contextText strings.Builder
	for _, res := range results {
		fmt.Fprintf(&contextText, "-- Source (Page %d - %s): %s\n", res.Page, res.Section, res.Text)
	}

	return chatAnswer(ctx, h.llm, []llm.Message{
		{Role: "system", Content: businessPrompt(contextText.String(), query)},
	}, 0.1)
}

// SummaryHandler aggregates metrics plus top risk and business excerpts.
// The query text plays no part; the same aggregation runs every time.
type SummaryHandler struct {
	llm       ChatClient
	metrics   MetricReader
	retriever Retriever
	log       *slog.Logger
}

func NewSummaryHandler(client ChatClient, metrics MetricReader, retriever Retriever, log *slog.Logger) *SummaryHandler {
	return &SummaryHandler{llm: client, metrics: metrics, retriever: retriever, log: log}
}

func (h *SummaryHandler) Handle(ctx context.Context, docID, _ string) string {
	metrics, err := h.metrics.GetAll(ctx, docID)
	if err != nil {
		h.log.Warn("metric read failed", "doc_id", docID, "error", err)
	}

	riskResults := h.retriever.Retrieve(ctx, docID, "major risks", 3, document.SectionRiskFactors)
	bizResults := h.retriever.Retrieve(ctx, docID, "business model company overview", 3, document.SectionBusinessOverview)

	var riskText, bizText strings.Builder
	for _, r := range riskResults {
		riskText.WriteString(r.Text)
		riskText.WriteString("\n")
	}
	for _, r := range bizResults {
		bizText.WriteString(r.Text)
		bizText.WriteString("\n")
	}

	fullContext := fmt.Sprintf("FINANCIAL METRICS:\n%s\nBUSINESS OVERVIEW EXCERPTS:\n%s\nRISK FACTOR EXCERPTS:\n%s",
		formatMetrics(metrics), bizText.String(), riskText.String())

	return chatAnswer(ctx, h.llm, []llm.Message{
		{Role: "system", Content: summaryPrompt(fullContext)},
	}, 0.2)
}
