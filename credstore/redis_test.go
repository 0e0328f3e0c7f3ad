package credstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test"), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	want := testRecord()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestRedisStoreClear(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if mr.Exists("test:profile") || mr.Exists("test:refresh") {
		t.Fatal("expected both keys removed")
	}
}

func TestRedisStoreHalfRecordFailsSoft(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	mr.Del("test:refresh")

	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("half a record must load as absent, got ok=%v err=%v", ok, err)
	}
	if mr.Exists("test:profile") {
		t.Fatal("expected orphaned profile cleared")
	}
}

func TestRedisStoreCorruptProfileFailsSoft(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	mr.Set("test:profile", "{not json")
	mr.Set("test:refresh", "R1")

	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("corrupt record must load as absent, got ok=%v err=%v", ok, err)
	}
	if mr.Exists("test:profile") || mr.Exists("test:refresh") {
		t.Fatal("expected corrupt record cleared")
	}
}

func TestRedisStoreUpdateRefreshToken(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if err := store.UpdateRefreshToken(ctx, "R-orphan"); err != nil {
		t.Fatalf("UpdateRefreshToken failed: %v", err)
	}
	if _, ok, _ := store.Load(ctx); ok {
		t.Fatal("update without a record must not create one")
	}

	if err := store.Save(ctx, testRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.UpdateRefreshToken(ctx, "R2"); err != nil {
		t.Fatalf("UpdateRefreshToken failed: %v", err)
	}
	rec, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if rec.RefreshToken != "R2" || rec.UserID != "u1" {
		t.Fatalf("expected rotated credential with intact profile, got %+v", rec)
	}
}

func TestRedisStoreBackendError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "")

	mr.SetError("backend down")
	if _, _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected a backend error")
	}
}
