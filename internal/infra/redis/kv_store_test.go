package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/Aliiiqbp/OverUnder/internal/config"
	"github.com/Aliiiqbp/OverUnder/internal/domain"
)

type fakeRedis struct {
	data    map[string]string
	getErr  error
	pingErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Ping(context.Context) error { return f.pingErr }

func (f *fakeRedis) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeRedis) Put(_ context.Context, key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeRedis) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestKVStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should map a missing key to ErrNotFound", func(t *testing.T) {
		s := NewKVStore(newFakeRedis())
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should set, get and remove", func(t *testing.T) {
		s := NewKVStore(newFakeRedis())
		if err := s.Set(ctx, "chat_sessions", "[]"); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, "chat_sessions")
		if err != nil || got != "[]" {
			t.Fatalf("got %q (%v)", got, err)
		}
		if err := s.Remove(ctx, "chat_sessions"); err != nil {
			t.Fatal(err)
		}
		if err := s.Remove(ctx, "chat_sessions"); err != nil {
			t.Fatalf("second remove should be a no-op: %v", err)
		}
	})

	t.Run("should ping through the client", func(t *testing.T) {
		fr := newFakeRedis()
		if err := NewKVStore(fr).Ping(ctx); err != nil {
			t.Fatal(err)
		}
		fr.pingErr = errors.New("connection refused")
		if err := NewKVStore(fr).Ping(ctx); err == nil {
			t.Fatal("expected the ping error")
		}
	})

	t.Run("should wrap transport errors", func(t *testing.T) {
		fr := newFakeRedis()
		fr.getErr = errors.New("connection refused")
		_, err := NewKVStore(fr).Get(ctx, "k")
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected a transport error, got %v", err)
		}
	})
}

func TestOptions(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.RedisConfig
		addr     string
		password string
		db       int
	}{
		{"bare address", config.RedisConfig{URL: "localhost:6379", DB: 2}, "localhost:6379", "", 2},
		{"url", config.RedisConfig{URL: "redis://:secret@cache:6380/3"}, "cache:6380", "secret", 3},
		{"explicit settings win", config.RedisConfig{URL: "redis://:secret@cache:6380/3", Password: "other", DB: 1}, "cache:6380", "other", 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts, err := options(&c.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if opts.Addr != c.addr || opts.Password != c.password || opts.DB != c.db {
				t.Fatalf("got addr=%s password=%s db=%d", opts.Addr, opts.Password, opts.DB)
			}
		})
	}

	t.Run("should reject a bad url", func(t *testing.T) {
		if _, err := options(&config.RedisConfig{URL: "redis://cache:6379/notadb"}); err == nil {
			t.Fatal("expected an error")
		}
	})
}
