package token

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager([]byte("0123456789abcdef0123456789abcdef"), "trustgate", 5*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestManagerRejectsShortKey(t *testing.T) {
	if _, err := NewManager([]byte("short"), "trustgate", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestIssueAndParseVerified(t *testing.T) {
	m := newTestManager(t)

	raw, err := m.IssueVerified("user-1", "alice", "admin", "sess-1")
	if err != nil {
		t.Fatalf("IssueVerified failed: %v", err)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Kind != KindVerified {
		t.Fatalf("expected verified kind, got %q", claims.Kind)
	}
	if claims.Subject != "user-1" || claims.Username != "alice" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.SessionID() != "sess-1" {
		t.Fatalf("expected session id sess-1, got %q", claims.SessionID())
	}
	if claims.ID == "" {
		t.Fatal("expected a jti claim")
	}
}

func TestIdentityAndVerifiedKindsDiffer(t *testing.T) {
	m := newTestManager(t)

	raw, err := m.IssueIdentity("user-1", "alice", "", "sess-1")
	if err != nil {
		t.Fatalf("IssueIdentity failed: %v", err)
	}
	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Kind != KindIdentity {
		t.Fatalf("expected identity kind, got %q", claims.Kind)
	}
}

func TestParseRejectsForeignKey(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager([]byte("ffffffffffffffffffffffffffffffff"), "trustgate", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	raw, err := m.IssueVerified("user-1", "alice", "", "sess-1")
	if err != nil {
		t.Fatalf("IssueVerified failed: %v", err)
	}
	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid across keys, got %v", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager([]byte("0123456789abcdef0123456789abcdef"), "someone-else", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	raw, err := other.IssueVerified("user-1", "alice", "", "sess-1")
	if err != nil {
		t.Fatalf("IssueVerified failed: %v", err)
	}
	if _, err := m.Parse(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong issuer, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Parse(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%q: expected ErrInvalid, got %v", raw, err)
		}
	}
}
