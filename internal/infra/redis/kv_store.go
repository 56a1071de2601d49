package redis

import (
	"context"
	"fmt"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

// KVStore keeps each key as a plain redis string without expiry.
type KVStore struct {
	client RedisClient
}

func NewKVStore(client RedisClient) *KVStore {
	return &KVStore{client: client}
}

// Ping checks the connection; the admin health check calls it.
func (s *KVStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	v, found, err := s.client.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	if !found {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Put(ctx, key, value); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, key); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
