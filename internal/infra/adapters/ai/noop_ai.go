package ai

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
)

var (
	_ adapter.ChannelFactory = (*NoopAIAdapter)(nil)
	_ adapter.ModelChannel   = (*noopChannel)(nil)
)

var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// NoopAIAdapter answers locally for dev runs and demos. Utterances that
// mention a ticker get a canned report for it.
type NoopAIAdapter struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewNoopAIAdapter(delay time.Duration, logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{delay: delay, log: logger}
}

func (a *NoopAIAdapter) Provider() string { return "noop" }

func (a *NoopAIAdapter) Open(_ context.Context, sessionID string, history []model.ChatMessage) (adapter.ModelChannel, error) {
	return &noopChannel{delay: a.delay, log: a.log, sessionID: sessionID}, nil
}

type noopChannel struct {
	delay     time.Duration
	log       *zerolog.Logger
	sessionID string
}

func (c *noopChannel) Send(ctx context.Context, utterance string) (adapter.Reply, error) {
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return adapter.Reply{}, ctx.Err()
	}
	c.log.Debug().Str("session_id", c.sessionID).Str("utterance", utterance).Msg("[noop-ai] message")

	symbol := tickerPattern.FindString(utterance)
	if symbol == "" {
		return adapter.Reply{Text: "This is a noop AI response. Name a ticker such as AAPL to get a sample report."}, nil
	}
	return adapter.Reply{
		Text: fmt.Sprintf("Here is a sample analysis of %s.\n\n```json_report\n%s\n```", symbol, sampleReport(symbol)),
		Citations: []model.GroundingCitation{
			{Title: symbol + " investor relations", URI: "https://example.com/" + symbol},
		},
	}, nil
}

func sampleReport(symbol string) string {
	return fmt.Sprintf(`{
  "symbol": %q,
  "companyName": "%s Corp.",
  "currentPrice": "$100.00",
  "recommendation": "Hold",
  "valuationStatus": "Fairly Valued",
  "confidenceScore": 50,
  "summary": "Sample data generated without a model provider.",
  "metrics": [
    {"label": "P/E Ratio", "value": "20.0x", "benchmark": "22.0x", "signal": "undervalued", "explanation": "Slight discount to peers."},
    {"label": "Debt/Equity", "value": "1.4", "benchmark": "0.9", "signal": "overvalued", "explanation": "More leverage than the sector."}
  ],
  "riskFactors": ["Sample risk"]
}`, symbol, symbol)
}
