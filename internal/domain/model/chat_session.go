package model

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

const (
	DefaultSessionTitle = "New Analysis"
	TitleMaxRunes       = 30

	WelcomeText = "Hello! I'm your AI valuation analyst. Name a stock or ask a question " +
		"(for example \"Is MSFT overvalued?\") and I'll research it and prepare a valuation report."
	ApologyText = "I'm sorry, I encountered an error while analyzing that request. Please try again."
)

// GroundingCitation is a web source the model used to ground its answer.
type GroundingCitation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ChatMessage is one entry of a session. Apart from the loading placeholder,
// messages are never modified after creation.
type ChatMessage struct {
	ID            string              `json:"id"`
	Role          Role                `json:"role"`
	Text          string              `json:"text"`
	IsReport      bool                `json:"isReport,omitempty"`
	ReportData    *StockReportData    `json:"reportData,omitempty"`
	IsLoading     bool                `json:"isLoading,omitempty"`
	GroundingURLs []GroundingCitation `json:"groundingUrls,omitempty"`
}

func NewUserMessage(text string) ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Role: RoleUser, Text: text}
}

func NewLoadingMessage() ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Role: RoleModel, IsLoading: true}
}

// NewModelMessage builds a terminal model reply. IsReport is set only when a
// report is attached, so IsReport always implies ReportData != nil.
func NewModelMessage(text string, report *StockReportData, citations []GroundingCitation) ChatMessage {
	return ChatMessage{
		ID:            uuid.NewString(),
		Role:          RoleModel,
		Text:          text,
		IsReport:      report != nil,
		ReportData:    report,
		GroundingURLs: citations,
	}
}

// ChatSession is one persisted conversation thread owned by a single user.
// Timestamps are unix milliseconds.
type ChatSession struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Title        string        `json:"title"`
	Messages     []ChatMessage `json:"messages"`
	CreatedAt    int64         `json:"createdAt"`
	LastModified int64         `json:"lastModified"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewSessionID returns a lexicographically time-ordered unique id.
func NewSessionID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

func NewChatSession(userID string, now time.Time) *ChatSession {
	ms := now.UnixMilli()
	return &ChatSession{
		ID:           NewSessionID(now),
		UserID:       userID,
		Title:        DefaultSessionTitle,
		Messages:     make([]ChatMessage, 0, 8),
		CreatedAt:    ms,
		LastModified: ms,
	}
}

// SeedWelcome appends the fixed greeting shown at the top of every new session.
func (s *ChatSession) SeedWelcome(now time.Time) {
	s.Messages = append(s.Messages, ChatMessage{ID: uuid.NewString(), Role: RoleModel, Text: WelcomeText})
	s.touch(now)
}

// AppendUserMessage adds the user's utterance and derives the title when this
// is the first thing the user says (only the welcome message precedes it).
func (s *ChatSession) AppendUserMessage(text string, now time.Time) ChatMessage {
	if len(s.Messages) <= 1 {
		s.Title = DeriveTitle(text)
	}
	msg := NewUserMessage(text)
	s.Messages = append(s.Messages, msg)
	s.touch(now)
	return msg
}

// AppendLoading adds the transient placeholder unless one is already present.
func (s *ChatSession) AppendLoading() ChatMessage {
	for _, m := range s.Messages {
		if m.IsLoading {
			return m
		}
	}
	msg := NewLoadingMessage()
	s.Messages = append(s.Messages, msg)
	return msg
}

// ResolveLoading swaps the loading placeholder for the terminal reply. When the
// placeholder is gone the reply is appended instead, so a reply is never lost.
func (s *ChatSession) ResolveLoading(reply ChatMessage, now time.Time) {
	out := s.Messages[:0]
	for _, m := range s.Messages {
		if !m.IsLoading {
			out = append(out, m)
		}
	}
	s.Messages = append(out, reply)
	s.touch(now)
}

// Durable returns a deep-enough copy without loading placeholders; this is the
// form written to the store.
func (s *ChatSession) Durable() *ChatSession {
	cp := *s
	cp.Messages = make([]ChatMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		if !m.IsLoading {
			cp.Messages = append(cp.Messages, m)
		}
	}
	return &cp
}

// Clone copies the session and its message slice. Messages themselves are
// immutable, so sharing their report pointers is safe.
func (s *ChatSession) Clone() *ChatSession {
	cp := *s
	cp.Messages = append([]ChatMessage(nil), s.Messages...)
	return &cp
}

func (s *ChatSession) HasLoading() bool {
	for _, m := range s.Messages {
		if m.IsLoading {
			return true
		}
	}
	return false
}

func (s *ChatSession) touch(now time.Time) {
	ms := now.UnixMilli()
	if ms <= s.LastModified {
		ms = s.LastModified + 1
	}
	s.LastModified = ms
}

// DeriveTitle truncates to TitleMaxRunes runes and appends "..." when cut.
func DeriveTitle(text string) string {
	r := []rune(text)
	if len(r) <= TitleMaxRunes {
		return text
	}
	return string(r[:TitleMaxRunes]) + "..."
}
