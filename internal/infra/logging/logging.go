// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/config"
)

// New builds the process logger. Output goes to stderr so the console keeps
// stdout for the conversation.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	return NewWithWriter(cfg, dev, os.Stderr)
}

// NewWithWriter is New with an explicit sink. Unknown levels fall back to info;
// dev mode forces the console format and disables sampling.
func NewWithWriter(cfg config.LogConfig, dev bool, w io.Writer) *zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	if dev || strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(w).With().Timestamp().Str("app", "overunder").Logger()
	if cfg.Sampling && !dev {
		logger = logger.Sample(&zerolog.BurstSampler{
			Burst:       50,
			Period:      time.Second,
			NextSampler: &zerolog.BasicSampler{N: 20},
		})
	}
	return &logger
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Fields are the correlation ids carried through a context.
type Fields struct {
	TraceID   string
	UserID    string
	SessionID string
}

type fieldsKey struct{}

// FromContext returns the fields stored in ctx, if any.
func FromContext(ctx context.Context) Fields {
	f, _ := ctx.Value(fieldsKey{}).(Fields)
	return f
}

// WithFields merges f into the fields already on ctx; empty values keep the
// existing ones.
func WithFields(ctx context.Context, f Fields) context.Context {
	cur := FromContext(ctx)
	if f.TraceID != "" {
		cur.TraceID = f.TraceID
	}
	if f.UserID != "" {
		cur.UserID = f.UserID
	}
	if f.SessionID != "" {
		cur.SessionID = f.SessionID
	}
	return context.WithValue(ctx, fieldsKey{}, cur)
}

// With returns base enriched with the context's correlation fields.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	f := FromContext(ctx)
	lc := base.With()
	if f.TraceID != "" {
		lc = lc.Str("trace_id", f.TraceID)
	}
	if f.UserID != "" {
		lc = lc.Str("user_id", f.UserID)
	}
	if f.SessionID != "" {
		lc = lc.Str("session_id", f.SessionID)
	}
	l := lc.Logger()
	return &l
}

// TraceDuration logs entry and exit of name at trace level:
//
//	defer logging.TraceDuration(log, "ConversationUC.Send")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}

// Redact masks an e-mail address (or any other identifier) outside dev mode:
// "trader@example.com" becomes "t***@example.com".
func Redact(s string, dev bool) string {
	if dev {
		return s
	}
	if at := strings.LastIndexByte(s, '@'); at > 0 {
		return s[:1] + "***" + s[at:]
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***"
}
