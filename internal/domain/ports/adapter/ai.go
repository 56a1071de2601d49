package adapter

import (
	"context"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
)

// Reply is what a model channel returns for one utterance.
type Reply struct {
	Text      string
	Citations []model.GroundingCitation
}

// ModelChannel is a stateful conversation with the AI provider. It keeps its
// own multi-turn context, so callers only send the newest utterance.
type ModelChannel interface {
	Send(ctx context.Context, utterance string) (Reply, error)
}

// ChannelFactory opens a channel for one chat session. history is the
// persisted transcript used to seed the provider-side context when a session
// is resumed; it never contains loading placeholders.
type ChannelFactory interface {
	Open(ctx context.Context, sessionID string, history []model.ChatMessage) (ModelChannel, error)
	Provider() string
}
