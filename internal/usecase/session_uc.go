// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
	"github.com/Aliiiqbp/OverUnder/internal/infra/logging"
	"github.com/Aliiiqbp/OverUnder/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase creates, orders, persists and deletes chat sessions.
type SessionUseCase interface {
	// Create returns a fresh, unsaved session titled "New Analysis".
	Create(userID string) *model.ChatSession
	// NewSeeded is Create plus the welcome message. Still unsaved.
	NewSeeded(userID string) *model.ChatSession
	// List returns the user's sessions, most recently modified first.
	// Unreadable or corrupt stores yield an empty slice.
	List(ctx context.Context, userID string) []*model.ChatSession
	// Load is List without the soft failure: store errors are returned.
	// A corrupt document still reads as empty.
	Load(ctx context.Context, userID string) ([]*model.ChatSession, error)
	// Save upserts by id into the shared collection.
	Save(ctx context.Context, session *model.ChatSession) error
	// Delete removes by id; missing ids are a no-op.
	Delete(ctx context.Context, id string) error
	// LoadOrCreate applies the selection policy on login: the most recent
	// session when one exists, otherwise a new seeded and persisted session.
	LoadOrCreate(ctx context.Context, userID string) (sessions []*model.ChatSession, active *model.ChatSession, err error)
}

type sessionUC struct {
	store repository.KVStore
	log   *zerolog.Logger
	now   func() time.Time

	// serialises the read-modify-write of the whole collection
	mu sync.Mutex
}

func NewSessionUseCase(store repository.KVStore, logger *zerolog.Logger) *sessionUC {
	return &sessionUC{store: store, log: logger, now: time.Now}
}

func (s *sessionUC) Create(userID string) *model.ChatSession {
	metrics.IncSessionEvent("created")
	return model.NewChatSession(userID, s.now())
}

func (s *sessionUC) NewSeeded(userID string) *model.ChatSession {
	sess := s.Create(userID)
	sess.SeedWelcome(s.now())
	return sess
}

func (s *sessionUC) List(ctx context.Context, userID string) []*model.ChatSession {
	out, err := s.Load(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Msg("session store unreadable; treating as empty")
		return []*model.ChatSession{}
	}
	return out
}

func (s *sessionUC) Load(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	out := make([]*model.ChatSession, 0, len(all))
	for _, sess := range all {
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	SortByRecent(out)
	return out, nil
}

func (s *sessionUC) Save(ctx context.Context, session *model.ChatSession) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidArgument
	}
	durable := session.Durable()

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	replaced := false
	for i := range all {
		if all[i].ID == durable.ID {
			all[i] = durable
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, durable)
	}
	if err := s.storeAll(ctx, all); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logging.With(logging.WithFields(ctx, logging.Fields{SessionID: durable.ID}), s.log).Debug().
		Bool("inserted", !replaced).Int("messages", len(durable.Messages)).Msg("session saved")
	return nil
}

func (s *sessionUC) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	kept := all[:0]
	for _, sess := range all {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	if len(kept) == len(all) {
		return nil
	}
	if err := s.storeAll(ctx, kept); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	metrics.IncSessionEvent("deleted")
	return nil
}

func (s *sessionUC) LoadOrCreate(ctx context.Context, userID string) ([]*model.ChatSession, *model.ChatSession, error) {
	sessions := s.List(ctx, userID)
	if len(sessions) > 0 {
		return sessions, sessions[0], nil
	}
	fresh := s.NewSeeded(userID)
	if err := s.Save(ctx, fresh); err != nil {
		return nil, nil, err
	}
	return []*model.ChatSession{fresh}, fresh, nil
}

// loadAll reads the cross-user collection. A missing key or an undecodable
// document is an empty collection; only store failures are returned.
func (s *sessionUC) loadAll(ctx context.Context) ([]*model.ChatSession, error) {
	raw, err := s.store.Get(ctx, repository.KeyChatSessions)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var decoded []*model.ChatSession
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		metrics.IncStoreOp("decode", "error")
		s.log.Warn().Err(err).Int("bytes", len(raw)).Msg("stored sessions are corrupt; starting from an empty collection")
		return nil, nil
	}
	out := decoded[:0]
	for _, sess := range decoded {
		if sess != nil && sess.ID != "" {
			out = append(out, sess.Durable())
		}
	}
	return out, nil
}

func (s *sessionUC) storeAll(ctx context.Context, all []*model.ChatSession) error {
	if all == nil {
		all = []*model.ChatSession{}
	}
	b, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, repository.KeyChatSessions, string(b))
}

// SortByRecent orders sessions by LastModified, newest first. Ties keep
// their relative order.
func SortByRecent(sessions []*model.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastModified > sessions[j].LastModified
	})
}
