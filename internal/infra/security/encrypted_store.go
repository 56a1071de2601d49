// File: internal/infra/security/encrypted_store.go
package security

import (
	"context"

	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
)

var _ repository.KVStore = (*EncryptedStore)(nil)

// EncryptedStore seals values, labelled with their key, before they reach
// inner. Legacy plaintext values are returned as-is and get sealed on their
// next write.
type EncryptedStore struct {
	inner repository.KVStore
	enc   *EncryptionService
}

func NewEncryptedStore(inner repository.KVStore, enc *EncryptionService) *EncryptedStore {
	return &EncryptedStore{inner: inner, enc: enc}
}

func (s *EncryptedStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !IsSealed(v) {
		return v, nil
	}
	return s.enc.Open(key, v)
}

func (s *EncryptedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.enc.Seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *EncryptedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}
