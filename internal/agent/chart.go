package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/llm"
)

// TrendData is the chart-ready series extracted from financial statements.
type TrendData struct {
	Years []string             `json:"years"`
	Data  map[string][]float64 `json:"data"`
}

var codeFenceRE = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// ChartHandler extracts multi-year metric series as structured JSON.
type ChartHandler struct {
	llm       ChatClient
	retriever Retriever
	log       *slog.Logger
}

func NewChartHandler(client ChatClient, retriever Retriever, log *slog.Logger) *ChartHandler {
	return &ChartHandler{llm: client, retriever: retriever, log: log}
}

// Trend asks the LLM to emit strict JSON over financial-statement context.
// A reply that does not parse, even after stripping a markdown code fence,
// yields nil rather than an error; the raw reply is logged for diagnosis.
func (h *ChartHandler) Trend(ctx context.Context, docID string) *TrendData {
	results := h.retriever.Retrieve(ctx, docID, "revenue profit net worth yearly financial performance", 5, document.SectionFinancials)
	if len(results) == 0 {
		return nil
	}

	var contextText strings.Builder
	for _, res := range results {
		fmt.Fprintf(&contextText, "%s\n", res.Text)
	}

	raw, err := h.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: chartPrompt},
		{Role: "user", Content: contextText.String()},
	}, 0.0)
	if err != nil {
		h.log.Warn("trend extraction failed", "doc_id", docID, "error", err)
		return nil
	}

	cleaned := strings.TrimSpace(raw)
	if m := codeFenceRE.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	var trend TrendData
	if err := json.Unmarshal([]byte(cleaned), &trend); err != nil {
		h.log.Warn("trend reply is not valid JSON", "doc_id", docID, "reply", truncateReply(raw))
		return nil
	}
	return &trend
}

func truncateReply(s string) string {
	if len(s) > 400 {
		return s[:400] + "..."
	}
	return s
}
