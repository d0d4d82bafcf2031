package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "tgs")

	return store, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func testMarker(kind uint8, ttl time.Duration) *Marker {
	now := time.Now()
	return &Marker{
		SessionID: "sess-1",
		UserID:    "user-1",
		Username:  "alice",
		Role:      "admin",
		Kind:      kind,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	marker := testMarker(KindVerified, time.Hour)
	if err := store.Save(ctx, marker, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Get(ctx, KindVerified, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.UserID != "user-1" || loaded.Username != "alice" || loaded.Role != "admin" || loaded.Kind != KindVerified {
		t.Fatalf("unexpected marker: %+v", loaded)
	}

	// The two kinds live under separate keys.
	if _, err := store.Get(ctx, KindIdentity, "sess-1"); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound for other kind, got %v", err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	if _, err := store.Get(context.Background(), KindIdentity, "nope"); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound, got %v", err)
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	store, mr, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	marker := testMarker(KindIdentity, time.Minute)
	if err := store.Save(ctx, marker, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, KindIdentity, "sess-1"); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound after TTL, got %v", err)
	}
}

func TestStoreStaleMarkerTreatedAsAbsent(t *testing.T) {
	store, mr, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	// Present in Redis but past its own expiry stamp.
	marker := testMarker(KindVerified, -time.Minute)
	if err := store.Save(ctx, marker, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Get(ctx, KindVerified, "sess-1"); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected ErrMarkerNotFound for stale marker, got %v", err)
	}
	if mr.Exists("tgs:vs:sess-1") {
		t.Fatal("expected stale marker key to be deleted")
	}
}

func TestStoreDeleteRemovesBothKinds(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testMarker(KindIdentity, time.Hour), time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, testMarker(KindVerified, time.Hour), time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, KindIdentity, "sess-1"); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected identity marker gone, got %v", err)
	}
	if _, err := store.Get(ctx, KindVerified, "sess-1"); !errors.Is(err, ErrMarkerNotFound) {
		t.Fatalf("expected verified marker gone, got %v", err)
	}

	// Deleting an absent session is not an error.
	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
}

func TestMarkerEncodingRoundTrip(t *testing.T) {
	marker := testMarker(KindVerified, time.Hour)

	encoded, err := encodeMarker(marker)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeMarker(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *decoded != *marker {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, marker)
	}

	if _, err := decodeMarker([]byte{0xff, 0x01}); err == nil {
		t.Fatal("expected version error")
	}
}
