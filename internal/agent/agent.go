package agent

import (
	"context"
	"errors"
	"strconv"

	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/llm"
)

// ChatClient is the language-model collaborator shared by the router and the
// answer handlers.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

// Retriever is the section-aware retrieval gateway. An empty result means
// "no context found"; failures never propagate past the gateway.
type Retriever interface {
	Retrieve(ctx context.Context, docID, text string, k int, section document.Section) []document.SearchResult
}

// MetricReader reads stored financial metrics for a document.
type MetricReader interface {
	GetAll(ctx context.Context, docID string) (map[document.MetricKey]float64, error)
}

// chatAnswer calls the LLM and turns failures into best-effort answer text.
// A missing credential or an unreachable endpoint must never crash a query;
// the error-flavored string flows through the pipeline as an opaque answer.
func chatAnswer(ctx context.Context, client ChatClient, messages []llm.Message, temperature float64) string {
	answer, err := client.Chat(ctx, messages, temperature)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return "Error: Missing API Key"
		}
		return "Error communicating with LLM: " + err.Error()
	}
	return answer
}

// formatMetrics renders stored metrics one per line in stable key order.
func formatMetrics(metrics map[document.MetricKey]float64) string {
	out := ""
	for _, key := range document.MetricKeys {
		if v, ok := metrics[key]; ok {
			out += string(key) + ": " + strconv.FormatFloat(v, 'f', -1, 64) + "\n"
		}
	}
	if out == "" {
		return "(no metrics extracted)\n"
	}
	return out
}
