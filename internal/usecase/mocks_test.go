package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- KV store ----

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	setErr  error
	getErr  error
	setHits int
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) failWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

func (m *memStore) failReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// ---- model channel ----

// fakeChannel answers with reply/err. When gate is set it blocks on it after
// signalling entered, so tests can observe the in-flight state.
type fakeChannel struct {
	mu         sync.Mutex
	reply      adapter.Reply
	err        error
	panicWith  any
	gate       chan struct{}
	entered    chan struct{}
	utterances []string
}

func (f *fakeChannel) Send(ctx context.Context, utterance string) (adapter.Reply, error) {
	f.mu.Lock()
	f.utterances = append(f.utterances, utterance)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return adapter.Reply{}, ctx.Err()
		}
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.reply, f.err
}

type fakeFactory struct {
	mu        sync.Mutex
	ch        *fakeChannel
	openErr   error
	histories map[string][]model.ChatMessage
}

func newFakeFactory(ch *fakeChannel) *fakeFactory {
	return &fakeFactory{ch: ch, histories: map[string][]model.ChatMessage{}}
}

func (f *fakeFactory) Provider() string { return "fake" }

func (f *fakeFactory) Open(_ context.Context, sessionID string, history []model.ChatMessage) (adapter.ModelChannel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.histories[sessionID] = history
	return f.ch, nil
}

var errBoom = errors.New("boom")

// ---- harness ----

type harness struct {
	store    *memStore
	sessions *sessionUC
	commit   *Committer
	chat     *conversationUC
	factory  *fakeFactory
	st       *State
	user     *model.User
}

func newHarness(ch *fakeChannel) *harness {
	log := newTestLogger()
	store := newMemStore()
	sessions := NewSessionUseCase(store, log)
	commit := NewCommitter(sessions, nil, log)
	factory := newFakeFactory(ch)
	chat := NewConversationUseCase(commit, NewReportExtractor(log), factory, 0, log)
	u, _ := model.NewUser("Ada", "ada@example.com")
	return &harness{store: store, sessions: sessions, commit: commit, chat: chat, factory: factory, st: NewState(), user: u}
}

// login mirrors App.Login without the user store.
func (h *harness) login(ctx context.Context) *model.ChatSession {
	h.st.SetUser(h.user)
	all, active, err := h.sessions.LoadOrCreate(ctx, h.user.ID)
	if err != nil {
		panic(err)
	}
	h.st.Load(all, active.ID)
	return active
}
