package ai

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
)

var (
	_ adapter.ChannelFactory = (*OpenAIAdapter)(nil)
	_ adapter.ModelChannel   = (*openAIChannel)(nil)
)

type completeFunc func(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)

// OpenAIAdapter talks to any Chat Completions compatible endpoint. The API is
// stateless, so each channel keeps its own transcript and trims it to the
// token budget before every call.
type OpenAIAdapter struct {
	client    openai.Client
	complete  completeFunc
	model     string
	maxTokens int
	count     TokenCounter
	log       *zerolog.Logger
}

func NewOpenAIAdapter(apiKey, baseURL, modelName string, maxHistoryTokens int, logger *zerolog.Logger) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	a := &OpenAIAdapter{
		client:    openai.NewClient(opts...),
		model:     modelName,
		maxTokens: maxHistoryTokens,
		count:     NewTokenCounter(modelName),
		log:       logger,
	}
	a.complete = a.client.Chat.Completions.New
	return a, nil
}

func (o *OpenAIAdapter) Provider() string { return "openai" }

func (o *OpenAIAdapter) Open(_ context.Context, sessionID string, history []model.ChatMessage) (adapter.ModelChannel, error) {
	o.log.Debug().Str("session_id", sessionID).Int("history", len(history)).Msg("openai channel opened")
	return &openAIChannel{
		complete:  o.complete,
		model:     o.model,
		maxTokens: o.maxTokens,
		count:     o.count,
		history:   historyTurns(history),
	}, nil
}

type openAIChannel struct {
	complete  completeFunc
	model     string
	maxTokens int
	count     TokenCounter

	mu      sync.Mutex
	history []turn
}

func (c *openAIChannel) Send(ctx context.Context, utterance string) (adapter.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTokens > 0 {
		budget := c.maxTokens - c.count(SystemInstruction) - c.count(utterance)
		c.history = trimHistory(c.history, budget, c.count)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(c.history)+2)
	msgs = append(msgs, openai.SystemMessage(SystemInstruction))
	for _, t := range c.history {
		if t.user {
			msgs = append(msgs, openai.UserMessage(t.text))
		} else {
			msgs = append(msgs, openai.AssistantMessage(t.text))
		}
	}
	msgs = append(msgs, openai.UserMessage(utterance))

	resp, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	})
	if err != nil {
		return adapter.Reply{}, err
	}
	text := ""
	for _, ch := range resp.Choices {
		if ch.Message.Content != "" {
			text = ch.Message.Content
			break
		}
	}
	if text != "" {
		c.history = append(c.history, turn{user: true, text: utterance}, turn{user: false, text: text})
	}
	return adapter.Reply{Text: text}, nil
}

// trimHistory drops the oldest turns until the rest fit in budget tokens.
// The result never starts with a model turn.
func trimHistory(history []turn, budget int, count TokenCounter) []turn {
	total := 0
	for _, t := range history {
		total += count(t.text)
	}
	start := 0
	for start < len(history) && (total > budget || !history[start].user) {
		total -= count(history[start].text)
		start++
	}
	if start == 0 {
		return history
	}
	return append([]turn(nil), history[start:]...)
}
