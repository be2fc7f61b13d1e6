package agent

import (
	"context"
	"strings"

	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/llm"
)

// Router classifies a free-text query into one intent via the LLM.
type Router struct {
	llm ChatClient
}

func NewRouter(client ChatClient) *Router {
	return &Router{llm: client}
}

var quoteStripper = strings.NewReplacer(`"`, "", "'", "", "`", "")

// Route always resolves to a valid intent. The raw model reply is
// normalized and scanned for the first valid label it contains, so a model
// that echoes extra words ("I think this is RISK related") still routes;
// anything unrecognizable defaults to OUT_OF_SCOPE.
func (r *Router) Route(ctx context.Context, query string) document.Intent {
	raw, err := r.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: routerPrompt},
		{Role: "user", Content: query},
	}, 0.0)
	if err != nil {
		return document.IntentOutOfScope
	}

	cleaned := quoteStripper.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	for _, intent := range document.Intents {
		if strings.Contains(cleaned, string(intent)) {
			return intent
		}
	}
	return document.IntentOutOfScope
}
