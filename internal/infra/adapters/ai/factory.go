package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/config"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
)

// ResolveProvider returns the configured provider, or infers it from the
// model name when none is set.
func ResolveProvider(cfg *config.AIConfig) string {
	if p := strings.ToLower(strings.TrimSpace(cfg.Provider)); p != "" {
		return p
	}
	l := strings.ToLower(cfg.DefaultModel)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"), strings.HasPrefix(l, "o4"):
		return "openai"
	default:
		return "noop"
	}
}

// NewChannelFactory builds the provider adapter and applies the concurrency cap.
func NewChannelFactory(ctx context.Context, cfg *config.AIConfig, logger *zerolog.Logger) (adapter.ChannelFactory, error) {
	var (
		f   adapter.ChannelFactory
		err error
	)
	switch p := ResolveProvider(cfg); p {
	case "gemini":
		f, err = NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.DefaultModel, cfg.EnableSearch, logger)
	case "openai":
		f, err = NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.DefaultModel, cfg.MaxHistoryTokens, logger)
	case "noop":
		f = NewNoopAIAdapter(300*time.Millisecond, logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", p)
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("provider", f.Provider()).Str("model", cfg.DefaultModel).Int("concurrent_limit", cfg.ConcurrentLimit).Msg("ai channel factory ready")
	return NewLimitedFactory(f, cfg.ConcurrentLimit), nil
}
