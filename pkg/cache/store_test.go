package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

var testEpoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newMockClock() *clock.Mock {
	clk := clock.NewMock()
	clk.Set(testEpoch)
	return clk
}

// testStoreContract exercises the Store behaviour every backend must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T, clk clock.Clock) Store) {
	ctx := context.Background()
	ttl := 3600 * time.Second

	t.Run("miss on empty store", func(t *testing.T) {
		store := newStore(t, newMockClock())

		if store.IsFresh(ctx, "vaultre", "deadbeef", ttl) {
			t.Error("IsFresh() = true for missing entry")
		}
		if _, err := store.Read(ctx, "vaultre", "deadbeef"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Read() error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("write then read", func(t *testing.T) {
		store := newStore(t, newMockClock())
		payload := []byte(`{"items":[{"id":1}]}`)

		if err := store.Write(ctx, "vaultre", "0a0b0c0d", payload); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !store.IsFresh(ctx, "vaultre", "0a0b0c0d", ttl) {
			t.Fatal("IsFresh() = false right after write")
		}
		got, err := store.Read(ctx, "vaultre", "0a0b0c0d")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if string(got) != string(payload) {
			t.Errorf("Read() = %s, want %s", got, payload)
		}
	})

	t.Run("freshness boundary", func(t *testing.T) {
		clk := newMockClock()
		store := newStore(t, clk)

		if err := store.Write(ctx, "vaultre", "boundary", []byte("v1")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		clk.Add(3600 * time.Second)
		if !store.IsFresh(ctx, "vaultre", "boundary", ttl) {
			t.Error("IsFresh() = false at T+3600s, want true")
		}

		clk.Add(1 * time.Second)
		if store.IsFresh(ctx, "vaultre", "boundary", ttl) {
			t.Error("IsFresh() = true at T+3601s, want false")
		}

		// Stale entries are still readable; the caller decides.
		if _, err := store.Read(ctx, "vaultre", "boundary"); err != nil {
			t.Errorf("Read() of stale entry error = %v", err)
		}
	})

	t.Run("overwrite refreshes timestamp", func(t *testing.T) {
		clk := newMockClock()
		store := newStore(t, clk)

		if err := store.Write(ctx, "vaultre", "rewrite", []byte("old")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		clk.Add(2 * time.Hour)
		if err := store.Write(ctx, "vaultre", "rewrite", []byte("new")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		if !store.IsFresh(ctx, "vaultre", "rewrite", ttl) {
			t.Error("IsFresh() = false after overwrite")
		}
		got, _ := store.Read(ctx, "vaultre", "rewrite")
		if string(got) != "new" {
			t.Errorf("Read() = %s, want new", got)
		}
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		store := newStore(t, newMockClock())

		if err := store.Write(ctx, "vaultre", "shared", []byte("a")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if store.IsFresh(ctx, "other", "shared", ttl) {
			t.Error("IsFresh() = true in a different namespace")
		}
		if _, err := store.Read(ctx, "other", "shared"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("Read() in other namespace error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("invalid names rejected", func(t *testing.T) {
		store := newStore(t, newMockClock())

		if err := store.Write(ctx, "../escape", "k", []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Write() error = %v, want ErrInvalidName", err)
		}
		if store.IsFresh(ctx, "vaultre", "", ttl) {
			t.Error("IsFresh() = true for empty key")
		}
	})
}

func TestFileStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T, clk clock.Clock) Store {
		return NewFileStore(t.TempDir(), clk, zerolog.Nop())
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T, clk clock.Clock) Store {
		store, err := NewMemoryStore(DefaultMemoryConfig(), clk, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewMemoryStore() error = %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}
