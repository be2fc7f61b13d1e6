package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/finlens/ipoagent/internal/document"
	"github.com/finlens/ipoagent/internal/llm"
)

type fakeChat struct {
	reply string
	err   error
	calls int
	seen  [][]llm.Message
}

func (f *fakeChat) Chat(_ context.Context, messages []llm.Message, _ float64) (string, error) {
	f.calls++
	f.seen = append(f.seen, messages)
	return f.reply, f.err
}

func TestRouter_Route(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  document.Intent
	}{
		{"exact label", "FINANCIAL", document.IntentFinancial},
		{"lowercase", "risk", document.IntentRisk},
		{"whitespace and quotes", `  "SUMMARY"  `, document.IntentSummary},
		{"chatty reply", "I think this is RISK related", document.IntentRisk},
		{"business", "BUSINESS", document.IntentBusiness},
		{"garbage", "bananas", document.IntentOutOfScope},
		{"empty", "", document.IntentOutOfScope},
		{"explicit out of scope", "OUT_OF_SCOPE", document.IntentOutOfScope},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRouter(&fakeChat{reply: tc.reply})
			if got := r.Route(context.Background(), "q"); got != tc.want {
				t.Errorf("Route(%q) = %v, want %v", tc.reply, got, tc.want)
			}
		})
	}
}

func TestRouter_ErrorDefaultsToOutOfScope(t *testing.T) {
	r := NewRouter(&fakeChat{err: errors.New("upstream down")})
	if got := r.Route(context.Background(), "q"); got != document.IntentOutOfScope {
		t.Errorf("expected OUT_OF_SCOPE on error, got %v", got)
	}
}

func TestRouter_FinancialWinsOverLaterLabels(t *testing.T) {
	// When a confused reply names several labels, precedence order decides.
	r := NewRouter(&fakeChat{reply: "Could be FINANCIAL or maybe RISK"})
	if got := r.Route(context.Background(), "q"); got != document.IntentFinancial {
		t.Errorf("expected FINANCIAL by precedence, got %v", got)
	}
}
