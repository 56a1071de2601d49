package repository

import "context"

// KVStore is the port for the local durable key-value store. Values are
// opaque strings (JSON documents in practice).
//
// Get returns domain.ErrNotFound when the key has never been set or was removed.
// Remove on a missing key is a no-op.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Persistence keys. Sessions of every user share one collection and are
// partitioned at read time by user id.
const (
	KeyCurrentUser  = "current_user"
	KeyChatSessions = "chat_sessions"
)
