// File: internal/usecase/conversation_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
	"github.com/Aliiiqbp/OverUnder/internal/infra/logging"
	"github.com/Aliiiqbp/OverUnder/internal/infra/metrics"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

type ExchangeStatus string

const (
	// ExchangeIgnored: empty input, no user/session, or the session is busy.
	ExchangeIgnored ExchangeStatus = "ignored"
	// ExchangeFulfilled: the model answered; Reply may carry a report.
	ExchangeFulfilled ExchangeStatus = "fulfilled"
	// ExchangeFailed: the channel failed; Reply is the apology message.
	ExchangeFailed ExchangeStatus = "failed"
	// ExchangeDropped: the session was deleted while the model was answering.
	ExchangeDropped ExchangeStatus = "dropped"
)

// IgnoreReason says why an exchange was ExchangeIgnored.
type IgnoreReason string

const (
	IgnoredEmptyInput      IgnoreReason = "empty_input"
	IgnoredNotLoggedIn     IgnoreReason = "not_logged_in"
	IgnoredNoActiveSession IgnoreReason = "no_active_session"
	IgnoredBusy            IgnoreReason = "busy"
)

// Outcome describes how one Send call ended.
type Outcome struct {
	Status    ExchangeStatus
	SessionID string
	// Reason is set only for ExchangeIgnored.
	Reason IgnoreReason
	Reply  *model.ChatMessage
	// Err is the channel error behind ExchangeFailed, for logging only.
	Err error
}

// ConversationUseCase runs one request/response cycle against the active session.
type ConversationUseCase interface {
	Send(ctx context.Context, st *State, text string) Outcome
	// Forget drops the cached model channel of a session (deleted or logged out).
	Forget(sessionID string)
	ForgetAll()
}

type conversationUC struct {
	commit    *Committer
	extractor *ReportExtractor
	channels  adapter.ChannelFactory
	log       *zerolog.Logger
	timeout   time.Duration
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]adapter.ModelChannel
}

// NewConversationUseCase wires the controller. timeout bounds each model
// call; zero leaves the call unbounded.
func NewConversationUseCase(commit *Committer, extractor *ReportExtractor, channels adapter.ChannelFactory, timeout time.Duration, logger *zerolog.Logger) *conversationUC {
	return &conversationUC{
		commit:    commit,
		extractor: extractor,
		channels:  channels,
		log:       logger,
		timeout:   timeout,
		now:       time.Now,
		cache:     map[string]adapter.ModelChannel{},
	}
}

func (c *conversationUC) Send(ctx context.Context, st *State, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.IncExchange(string(ExchangeIgnored))
		return Outcome{Status: ExchangeIgnored, Reason: IgnoredEmptyInput}
	}
	sessionID, userID, reason := st.beginExchange()
	if reason != "" {
		metrics.IncExchange(string(ExchangeIgnored))
		return Outcome{Status: ExchangeIgnored, Reason: reason}
	}
	defer st.endExchange(sessionID)

	ctx = logging.WithFields(ctx, logging.Fields{TraceID: uuid.NewString(), UserID: userID, SessionID: sessionID})
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "ConversationUC.Send")()

	// Sending
	var history []model.ChatMessage
	sess, ok := st.update(sessionID, func(s *model.ChatSession) {
		history = s.Durable().Messages
		s.AppendUserMessage(text, c.now())
	})
	if !ok {
		metrics.IncExchange(string(ExchangeDropped))
		return Outcome{Status: ExchangeDropped, SessionID: sessionID}
	}
	c.commit.Commit(ctx, st, sess)

	// AwaitingResponse
	st.update(sessionID, func(s *model.ChatSession) { s.AppendLoading() })

	reply, err := c.ask(ctx, sessionID, history, text)

	var msg model.ChatMessage
	status := ExchangeFulfilled
	if err != nil {
		status = ExchangeFailed
		log.Error().Err(err).Msg("model channel failed; replying with apology")
		msg = model.NewModelMessage(model.ApologyText, nil, nil)
	} else {
		ex := c.extractor.Extract(reply.Text)
		msg = model.NewModelMessage(ex.CleanText, ex.Report, reply.Citations)
		log.Info().Bool("report", ex.Report != nil).Bool("malformed_report", ex.Malformed).
			Int("citations", len(reply.Citations)).Msg("model replied")
	}

	sess, ok = st.update(sessionID, func(s *model.ChatSession) { s.ResolveLoading(msg, c.now()) })
	if !ok {
		metrics.IncExchange(string(ExchangeDropped))
		log.Warn().Msg("session removed while awaiting the model; reply discarded")
		c.Forget(sessionID)
		return Outcome{Status: ExchangeDropped, SessionID: sessionID, Err: err}
	}
	st.moveToFront(sessionID)
	c.commit.Commit(ctx, st, sess)

	metrics.IncExchange(string(status))
	return Outcome{Status: status, SessionID: sessionID, Reply: &msg, Err: err}
}

// ask sends the utterance on the session's channel. Panics inside the
// channel are converted to errors so they take the failure path.
func (c *conversationUC) ask(ctx context.Context, sessionID string, history []model.ChatMessage, text string) (reply adapter.Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model channel panic: %v", r)
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ch, err := c.channel(ctx, sessionID, history)
	if err != nil {
		return adapter.Reply{}, fmt.Errorf("open channel: %w", err)
	}

	defer metrics.TrackInFlight()()
	start := time.Now()
	reply, err = ch.Send(ctx, text)
	if err == nil && strings.TrimSpace(reply.Text) == "" {
		err = domain.ErrChannelNoResponse
	}
	metrics.ObserveModelCall(c.channels.Provider(), time.Since(start), err == nil)
	return reply, err
}

// channel returns the cached channel of a session, opening it with the
// persisted history on first use.
func (c *conversationUC) channel(ctx context.Context, sessionID string, history []model.ChatMessage) (adapter.ModelChannel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.cache[sessionID]; ok {
		return ch, nil
	}
	ch, err := c.channels.Open(ctx, sessionID, history)
	if err != nil {
		return nil, err
	}
	c.cache[sessionID] = ch
	return ch, nil
}

func (c *conversationUC) Forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, sessionID)
}

func (c *conversationUC) ForgetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string]adapter.ModelChannel{}
}
