package trustgate

import (
	"context"
	"testing"
	"time"
)

func newClockedTrustStore(t *testing.T) (*trustedDeviceStore, *time.Time) {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newTrustedDeviceStore(newCountingTrustKV(), "tdv", 30*24*time.Hour)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestTrustRegisterAndLookup(t *testing.T) {
	store, _ := newClockedTrustStore(t)
	ctx := context.Background()

	trusted, err := store.IsTrusted(ctx, "alice", "fp-1")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if trusted {
		t.Fatal("expected unknown fingerprint to be untrusted")
	}

	if err := store.RegisterTrust(ctx, "alice", "fp-1", "laptop", "office"); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}

	trusted, err = store.IsTrusted(ctx, "alice", "fp-1")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if !trusted {
		t.Fatal("expected registered fingerprint to be trusted")
	}

	// Trust is partitioned per user.
	trusted, err = store.IsTrusted(ctx, "bob", "fp-1")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if trusted {
		t.Fatal("expected no cross-user trust")
	}
}

func TestTrustExpiresAfterWindow(t *testing.T) {
	store, now := newClockedTrustStore(t)
	ctx := context.Background()

	if err := store.RegisterTrust(ctx, "alice", "fp-1", "", ""); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}

	*now = now.Add(30*24*time.Hour - time.Minute)
	trusted, err := store.IsTrusted(ctx, "alice", "fp-1")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if !trusted {
		t.Fatal("expected trust inside the window")
	}

	*now = now.Add(2 * time.Minute)
	trusted, err = store.IsTrusted(ctx, "alice", "fp-1")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if trusted {
		t.Fatal("expected trust to lapse after the window")
	}

	// The expired record was pruned, not just hidden.
	records, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected pruned record list, got %d", len(records))
	}
}

func TestTrustReRegistrationReplacesRecord(t *testing.T) {
	store, now := newClockedTrustStore(t)
	ctx := context.Background()

	if err := store.RegisterTrust(ctx, "alice", "fp-1", "laptop", "office"); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}

	*now = now.Add(10 * 24 * time.Hour)
	if err := store.RegisterTrust(ctx, "alice", "fp-1", "laptop", "home"); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}

	records, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record per fingerprint, got %d", len(records))
	}
	if records[0].LocationLabel != "home" {
		t.Fatalf("expected refreshed record, got %+v", records[0])
	}
	if !records[0].TrustedAt.Equal(*now) {
		t.Fatal("expected refreshed trust timestamp")
	}
}

func TestTrustListNewestFirst(t *testing.T) {
	store, now := newClockedTrustStore(t)
	ctx := context.Background()

	if err := store.RegisterTrust(ctx, "alice", "fp-old", "desktop", ""); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}
	*now = now.Add(time.Hour)
	if err := store.RegisterTrust(ctx, "alice", "fp-new", "phone", ""); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}

	records, err := store.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Fingerprint != "fp-new" || records[1].Fingerprint != "fp-old" {
		t.Fatalf("expected newest-first order, got %+v", records)
	}
}

func TestTrustRevoke(t *testing.T) {
	store, _ := newClockedTrustStore(t)
	ctx := context.Background()

	if err := store.RegisterTrust(ctx, "alice", "fp-1", "", ""); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}
	if err := store.RegisterTrust(ctx, "alice", "fp-2", "", ""); err != nil {
		t.Fatalf("RegisterTrust failed: %v", err)
	}

	if err := store.Revoke(ctx, "alice", "fp-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	trusted, err := store.IsTrusted(ctx, "alice", "fp-1")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if trusted {
		t.Fatal("expected revoked fingerprint to be untrusted")
	}
	trusted, err = store.IsTrusted(ctx, "alice", "fp-2")
	if err != nil {
		t.Fatalf("IsTrusted failed: %v", err)
	}
	if !trusted {
		t.Fatal("expected other fingerprint to stay trusted")
	}

	// Revoking an absent fingerprint is a no-op.
	if err := store.Revoke(ctx, "alice", "fp-missing"); err != nil {
		t.Fatalf("Revoke of absent fingerprint failed: %v", err)
	}
}

func TestTrustRecordCodecRoundTrip(t *testing.T) {
	now := time.Unix(time.Now().Unix(), 0)
	records := []TrustedDeviceRecord{
		{Fingerprint: "fp-1", DeviceLabel: "laptop", LocationLabel: "office", TrustedAt: now, ExpiresAt: now.Add(time.Hour)},
		{Fingerprint: "fp-2", TrustedAt: now.Add(-time.Hour), ExpiresAt: now.Add(2 * time.Hour)},
	}

	encoded, err := encodeTrustedDeviceRecords(records)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := decodeTrustedDeviceRecords(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(decoded))
	}
	for i := range records {
		if decoded[i].Fingerprint != records[i].Fingerprint ||
			decoded[i].DeviceLabel != records[i].DeviceLabel ||
			decoded[i].LocationLabel != records[i].LocationLabel ||
			!decoded[i].TrustedAt.Equal(records[i].TrustedAt) ||
			!decoded[i].ExpiresAt.Equal(records[i].ExpiresAt) {
			t.Fatalf("record %d mismatch: %+v vs %+v", i, decoded[i], records[i])
		}
	}

	if _, err := decodeTrustedDeviceRecords([]byte{0xff}); err == nil {
		t.Fatal("expected version error for unknown record version")
	}
}
