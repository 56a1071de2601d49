// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
)

var (
	_ adapter.ChannelFactory = (*GeminiAdapter)(nil)
	_ adapter.ModelChannel   = (*geminiChannel)(nil)
)

// GeminiAdapter opens one genai chat per session, optionally grounded with
// Google Search.
type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	search       bool
	log          *zerolog.Logger
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, search bool, logger *zerolog.Logger) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, search: search, log: logger}, nil
}

func (g *GeminiAdapter) Provider() string { return "gemini" }

func (g *GeminiAdapter) Open(ctx context.Context, sessionID string, history []model.ChatMessage) (adapter.ModelChannel, error) {
	chat, err := g.client.Chats.Create(ctx, g.defaultModel, g.chatConfig(), toGenAIHistory(history))
	if err != nil {
		return nil, err
	}
	g.log.Debug().Str("session_id", sessionID).Int("history", len(history)).Msg("gemini chat opened")
	return &geminiChannel{chat: chat}, nil
}

func (g *GeminiAdapter) chatConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SystemInstruction}}},
	}
	if g.search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

type geminiChannel struct {
	chat *genai.Chat
}

func (c *geminiChannel) Send(ctx context.Context, utterance string) (adapter.Reply, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: utterance})
	if err != nil {
		return adapter.Reply{}, err
	}
	return adapter.Reply{Text: responseText(resp), Citations: groundingCitations(resp)}, nil
}

// responseText joins the text parts of the first candidate, skipping thoughts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// groundingCitations lists the web sources of the first candidate, deduped by URI.
func groundingCitations(resp *genai.GenerateContentResponse) []model.GroundingCitation {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return nil
	}
	var out []model.GroundingCitation
	seen := map[string]bool{}
	for _, chunk := range gm.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		out = append(out, model.GroundingCitation{Title: title, URI: chunk.Web.URI})
	}
	return out
}

func toGenAIHistory(history []model.ChatMessage) []*genai.Content {
	turns := historyTurns(history)
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleModel
		if t.user {
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  string(role),
			Parts: []*genai.Part{{Text: t.text}},
		})
	}
	return out
}
