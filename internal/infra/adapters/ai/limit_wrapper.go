package ai

import (
	"context"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
)

// Compile-time check
var (
	_ adapter.ChannelFactory = (*limitedFactory)(nil)
	_ adapter.ModelChannel   = (*limitedChannel)(nil)
)

// limitedFactory caps concurrent Send calls across every channel it opens.
type limitedFactory struct {
	inner adapter.ChannelFactory
	sem   chan struct{}
}

func NewLimitedFactory(inner adapter.ChannelFactory, maxConcurrent int) adapter.ChannelFactory {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedFactory{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedFactory) Provider() string { return l.inner.Provider() }

func (l *limitedFactory) Open(ctx context.Context, sessionID string, history []model.ChatMessage) (adapter.ModelChannel, error) {
	ch, err := l.inner.Open(ctx, sessionID, history)
	if err != nil {
		return nil, err
	}
	return &limitedChannel{inner: ch, sem: l.sem}, nil
}

type limitedChannel struct {
	inner adapter.ModelChannel
	sem   chan struct{}
}

func (l *limitedChannel) Send(ctx context.Context, utterance string) (adapter.Reply, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.Reply{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Send(ctx, utterance)
}
