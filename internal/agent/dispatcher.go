package agent

import (
	"context"
	"log/slog"

	"github.com/finlens/ipoagent/internal/document"
)

const outOfScopeMessage = "I apologize, but this query seems outside the scope of this IPO document. Please ask about the specific IPO's financials, risks, or business."

// Dispatcher routes a query to the matching handler and enforces the
// citation check on the way out.
type Dispatcher struct {
	router    *Router
	financial *FinancialHandler
	risk      *RiskHandler
	business  *BusinessHandler
	summary   *SummaryHandler
	log       *slog.Logger
}

func NewDispatcher(client ChatClient, metrics MetricReader, retriever Retriever, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		router:    NewRouter(client),
		financial: NewFinancialHandler(client, metrics, retriever, log),
		risk:      NewRiskHandler(client, retriever),
		business:  NewBusinessHandler(client, retriever),
		summary:   NewSummaryHandler(client, metrics, retriever, log),
		log:       log,
	}
}

// Process classifies the query, runs the matching handler, and returns the
// answer. OUT_OF_SCOPE short-circuits with a fixed refusal that skips the
// citation check; every other answer passes through EnsureCitation.
func (d *Dispatcher) Process(ctx context.Context, docID, query string) string {
	intent := d.router.Route(ctx, query)
	d.log.Info("query routed", "doc_id", docID, "intent", intent)

	if intent == document.IntentOutOfScope {
		return outOfScopeMessage
	}

	var answer string
	switch intent {
	case document.IntentFinancial:
		answer = d.financial.Handle(ctx, docID, query)
	case document.IntentRisk:
		answer = d.risk.Handle(ctx, docID, query)
	case document.IntentSummary:
		answer = d.summary.Handle(ctx, docID, query)
	default:
		answer = d.business.Handle(ctx, docID, query)
	}
	return EnsureCitation(answer)
}
