// File: internal/infra/store/prefix.go
package store

import (
	"context"

	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
)

// WithPrefix namespaces every key of inner. An empty prefix returns inner.
func WithPrefix(inner repository.KVStore, prefix string) repository.KVStore {
	if prefix == "" {
		return inner
	}
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  repository.KVStore
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}
