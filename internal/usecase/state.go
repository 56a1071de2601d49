// File: internal/usecase/state.go
package usecase

import (
	"sync"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
)

// State is the in-memory projection the front end renders: the logged-in
// user, their sessions in display order and the active session id. It is
// owned by the application controller and handed explicitly to use cases.
type State struct {
	mu       sync.Mutex
	user     *model.User
	sessions []*model.ChatSession
	activeID string
	inFlight map[string]bool
}

// Snapshot is a detached copy of State that is safe to render.
type Snapshot struct {
	User     *model.User
	Sessions []*model.ChatSession
	ActiveID string
	// Busy lists sessions with an outstanding exchange.
	Busy map[string]bool
}

// Active returns the active session of the snapshot, or nil.
func (s Snapshot) Active() *model.ChatSession {
	for _, sess := range s.Sessions {
		if sess.ID == s.ActiveID {
			return sess
		}
	}
	return nil
}

func NewState() *State {
	return &State{inFlight: map[string]bool{}}
}

func (st *State) User() *model.User {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.user
}

// SetUser installs a logged-in user and clears any previous projection.
func (st *State) SetUser(u *model.User) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.user = u
	st.sessions = nil
	st.activeID = ""
}

// Clear drops the user and the projection (logout).
func (st *State) Clear() {
	st.SetUser(nil)
}

func (st *State) ActiveID() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.activeID
}

// Load replaces the projection with sessions in the given order.
func (st *State) Load(sessions []*model.ChatSession, activeID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = cloneAll(sessions)
	st.activeID = activeID
}

// Prepend puts a session at the front and makes it active.
func (st *State) Prepend(s *model.ChatSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.removeLocked(s.ID)
	st.sessions = append([]*model.ChatSession{s.Clone()}, st.sessions...)
	st.activeID = s.ID
}

// Select makes id active. It reports false when id is unknown.
func (st *State) Select(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.indexLocked(id) < 0 {
		return false
	}
	st.activeID = id
	return true
}

// Remove drops id from the projection. When it was active the next session
// in display order becomes active (or none). wasActive reports that case.
func (st *State) Remove(id string) (wasActive bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.removeLocked(id) {
		return false
	}
	delete(st.inFlight, id)
	if st.activeID != id {
		return false
	}
	st.activeID = ""
	if len(st.sessions) > 0 {
		st.activeID = st.sessions[0].ID
	}
	return true
}

func (st *State) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	busy := make(map[string]bool, len(st.inFlight))
	for id := range st.inFlight {
		busy[id] = true
	}
	return Snapshot{
		User:     st.user,
		Sessions: cloneAll(st.sessions),
		ActiveID: st.activeID,
		Busy:     busy,
	}
}

// Session returns a copy of the session with id.
func (st *State) Session(id string) (*model.ChatSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if i := st.indexLocked(id); i >= 0 {
		return st.sessions[i].Clone(), true
	}
	return nil, false
}

// beginExchange claims the active session for one exchange. A non-empty
// reason says why it could not.
func (st *State) beginExchange() (sessionID, userID string, reason IgnoreReason) {
	st.mu.Lock()
	defer st.mu.Unlock()
	switch {
	case st.user == nil:
		return "", "", IgnoredNotLoggedIn
	case st.activeID == "" || st.indexLocked(st.activeID) < 0:
		return "", "", IgnoredNoActiveSession
	case st.inFlight[st.activeID]:
		return "", "", IgnoredBusy
	}
	st.inFlight[st.activeID] = true
	return st.activeID, st.user.ID, ""
}

func (st *State) endExchange(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.inFlight, id)
}

// update applies fn to the session with id and returns a copy of the result.
func (st *State) update(id string, fn func(*model.ChatSession)) (*model.ChatSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	fn(st.sessions[i])
	return st.sessions[i].Clone(), true
}

func (st *State) moveToFront(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	i := st.indexLocked(id)
	if i <= 0 {
		return
	}
	s := st.sessions[i]
	copy(st.sessions[1:i+1], st.sessions[:i])
	st.sessions[0] = s
}

// reconcile replaces the projection with what the store holds for userID.
// Sessions with an exchange in flight keep their projected copy so the
// pending reply still has a placeholder to resolve.
func (st *State) reconcile(userID string, stored []*model.ChatSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.user == nil || st.user.ID != userID {
		return
	}
	next := cloneAll(stored)
	for id := range st.inFlight {
		if i := st.indexLocked(id); i >= 0 {
			pending := st.sessions[i].Clone()
			replaced := false
			for j := range next {
				if next[j].ID == id {
					next[j] = pending
					replaced = true
				}
			}
			if !replaced {
				next = append([]*model.ChatSession{pending}, next...)
			}
		}
	}
	st.sessions = next
	if st.indexLocked(st.activeID) < 0 {
		st.activeID = ""
		if len(st.sessions) > 0 {
			st.activeID = st.sessions[0].ID
		}
	}
}

func (st *State) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range st.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (st *State) removeLocked(id string) bool {
	i := st.indexLocked(id)
	if i < 0 {
		return false
	}
	st.sessions = append(st.sessions[:i], st.sessions[i+1:]...)
	return true
}

func cloneAll(in []*model.ChatSession) []*model.ChatSession {
	out := make([]*model.ChatSession, 0, len(in))
	for _, s := range in {
		out = append(out, s.Clone())
	}
	return out
}
