// File: internal/usecase/commit.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/infra/metrics"
)

// Queue runs tasks in submission order. worker.Pool with one worker
// satisfies it.
type Queue interface {
	Submit(task func(ctx context.Context) error) error
}

// Committer confirms projection changes against the store. The projection
// is always updated first; the write happens now (no queue) or later on the
// queue. A failed write triggers a reconcile from the store.
type Committer struct {
	sessions SessionUseCase
	queue    Queue
	log      *zerolog.Logger
}

// NewCommitter builds a committer. A nil queue means synchronous writes.
func NewCommitter(sessions SessionUseCase, queue Queue, logger *zerolog.Logger) *Committer {
	return &Committer{sessions: sessions, queue: queue, log: logger}
}

// Commit persists session and reconciles st on failure.
func (c *Committer) Commit(ctx context.Context, st *State, session *model.ChatSession) {
	c.run(ctx, func(ctx context.Context) error {
		if err := c.sessions.Save(ctx, session); err != nil {
			metrics.IncStoreOp("set", "error")
			c.log.Error().Err(err).Str("session_id", session.ID).Msg("session write failed; reconciling from store")
			c.Reconcile(ctx, st, session.UserID)
			return err
		}
		return nil
	})
}

// Delete removes a session that was already dropped from the projection.
// It goes through the same queue as saves so an earlier queued save cannot
// bring the session back.
func (c *Committer) Delete(ctx context.Context, st *State, userID, sessionID string) {
	c.run(ctx, func(ctx context.Context) error {
		if err := c.sessions.Delete(ctx, sessionID); err != nil {
			metrics.IncStoreOp("remove", "error")
			c.log.Error().Err(err).Str("session_id", sessionID).Msg("session delete failed; reconciling from store")
			c.Reconcile(ctx, st, userID)
			return err
		}
		return nil
	})
}

func (c *Committer) run(ctx context.Context, task func(ctx context.Context) error) {
	if c.queue == nil {
		_ = task(ctx)
		return
	}
	if err := c.queue.Submit(task); err != nil {
		c.log.Warn().Err(err).Msg("commit queue unavailable; writing synchronously")
		_ = task(ctx)
	}
}

// Reconcile re-reads the user's sessions and replaces the projection. When
// the store cannot be read the projection is kept as it is. Either way the
// user ends up with an active session: the most recent one, or a new seeded
// session when none remain.
func (c *Committer) Reconcile(ctx context.Context, st *State, userID string) {
	stored, err := c.sessions.Load(ctx, userID)
	if err != nil {
		metrics.IncSessionEvent("reconcile_skipped")
		c.log.Warn().Err(err).Str("user_id", userID).Msg("store unreadable; keeping the projection")
	} else {
		metrics.IncSessionEvent("reconciled")
		st.reconcile(userID, stored)
	}
	c.ensureActive(ctx, st, userID)
}

func (c *Committer) ensureActive(ctx context.Context, st *State, userID string) {
	if u := st.User(); u == nil || u.ID != userID || st.ActiveID() != "" {
		return
	}
	fresh := c.sessions.NewSeeded(userID)
	st.Prepend(fresh)
	// written directly: a failure here must not reconcile again
	if err := c.sessions.Save(ctx, fresh); err != nil {
		metrics.IncStoreOp("set", "error")
		c.log.Error().Err(err).Str("session_id", fresh.ID).Msg("replacement session not persisted")
	}
}
