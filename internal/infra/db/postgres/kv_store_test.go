//go:build !integration

package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
)

// fakeRow returns a canned value or error from Scan.
type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

// fakeDB interprets the three statements KVStore issues against a map.
type fakeDB struct {
	rows    map[string]string
	execs   []string
	execErr error
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...interface{}) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return nil, f.execErr
	}
	switch {
	case strings.Contains(sql, "INSERT INTO kv_store"):
		f.rows[args[0].(string)] = args[1].(string)
		return pgconn.CommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM kv_store"):
		delete(f.rows, args[0].(string))
		return pgconn.CommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag("CREATE TABLE"), nil
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()

	t.Run("should map ErrNoRows to ErrNotFound", func(t *testing.T) {
		s := NewKVStore(&fakeDB{rows: map[string]string{}})
		if _, err := s.Get(ctx, "current_user"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should upsert and remove", func(t *testing.T) {
		db := &fakeDB{rows: map[string]string{}}
		s := NewKVStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, "k", "a"); err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, "k", "b"); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.Get(ctx, "k"); got != "b" {
			t.Fatalf("expected b, got %q", got)
		}
		if !strings.Contains(db.execs[1], "ON CONFLICT (key)") {
			t.Fatalf("set should upsert, sql was %q", db.execs[1])
		}
		if err := s.Remove(ctx, "k"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after remove, got %v", err)
		}
	})

	t.Run("should wrap exec errors", func(t *testing.T) {
		boom := errors.New("conn reset")
		s := NewKVStore(&fakeDB{rows: map[string]string{}, execErr: boom})
		if err := s.Set(ctx, "k", "v"); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
	})
}

func TestKVStorePing(t *testing.T) {
	t.Run("should fall back to a trivial query without a pool", func(t *testing.T) {
		db := &fakeDB{rows: map[string]string{}}
		if err := NewKVStore(db).Ping(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(db.execs) != 1 || !strings.Contains(db.execs[0], "SELECT 1") {
			t.Fatalf("unexpected statements: %v", db.execs)
		}
		db.execErr = errors.New("connection reset")
		if err := NewKVStore(db).Ping(context.Background()); err == nil {
			t.Fatal("expected the exec error")
		}
	})
}
