package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/ports/repository"
)

func exerciseKV(t *testing.T, kv repository.KVStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil || got != "v2" {
		t.Fatalf("expected v2, got %q (%v)", got, err)
	}
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := kv.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove of a missing key should be a no-op, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	t.Run("should satisfy the KV contract", func(t *testing.T) {
		fs, err := NewFileStore(filepath.Join(t.TempDir(), "data.json"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		exerciseKV(t, fs)
	})

	t.Run("should survive a reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data.json")
		fs, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := fs.Set(context.Background(), repository.KeyCurrentUser, `{"id":"u1"}`); err != nil {
			t.Fatalf("set: %v", err)
		}

		reopened, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		got, err := reopened.Get(context.Background(), repository.KeyCurrentUser)
		if err != nil || got != `{"id":"u1"}` {
			t.Fatalf("unexpected value after reopen: %q (%v)", got, err)
		}
	})

	t.Run("should reject a corrupt document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileStore(path); err == nil {
			t.Fatal("expected an error for a corrupt file")
		}
	})

	t.Run("should leave no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		fs, err := NewFileStore(filepath.Join(dir, "data.json"))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 3; i++ {
			if err := fs.Set(context.Background(), "k", "v"); err != nil {
				t.Fatal(err)
			}
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Fatalf("expected only data.json, found %d entries", len(entries))
		}
	})
}

func TestWithPrefix(t *testing.T) {
	inner := NewMemoryStore()
	kv := WithPrefix(inner, "alice:")
	exerciseKV(t, kv)

	_ = kv.Set(context.Background(), "k", "v")
	if _, err := inner.Get(context.Background(), "alice:k"); err != nil {
		t.Fatalf("expected namespaced key in inner store: %v", err)
	}
	if WithPrefix(inner, "") != repository.KVStore(inner) {
		t.Fatal("empty prefix should return the inner store")
	}
}
