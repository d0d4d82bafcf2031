package trustgate

import (
	"context"
	"testing"
	"time"
)

func receiveEvent(t *testing.T, sink *ChannelSink) AuditEvent {
	t.Helper()
	select {
	case event := <-sink.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestAuditDispatcherDeliversEvents(t *testing.T) {
	sink := NewChannelSink(8)
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)
	defer dispatcher.Close()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "credential_verified", Username: "alice", Success: true})

	event := receiveEvent(t, sink)
	if event.EventType != "credential_verified" || event.Username != "alice" || !event.Success {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestAuditDispatcherDisabled(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if dispatcher != nil {
		t.Fatal("expected nil dispatcher when auditing is disabled")
	}
	// Emit and Close on the nil dispatcher are safe.
	dispatcher.Emit(context.Background(), AuditEvent{})
	dispatcher.Close()
	if dispatcher.Dropped() != 0 {
		t.Fatal("expected zero drops on nil dispatcher")
	}
}

func TestAuditDispatcherDropsUnderBackpressure(t *testing.T) {
	// A channel sink that is not drained backs up the dispatcher buffer.
	sink := NewChannelSink(1)
	dispatcher := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 64; i++ {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "flow_cancelled"})
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}

	// Unblock the sink so Close can drain and join the dispatch goroutine.
	go func() {
		for range sink.Events() {
		}
	}()
	dispatcher.Close()
}

func TestEngineEmitsAuditEvents(t *testing.T) {
	fx, done := newLoginFixture(t, func(cfg *Config) {
		cfg.Audit.Enabled = true
		cfg.Audit.BufferSize = 64
	})
	defer done()

	sink := NewChannelSink(64)
	fx.engine.audit.Close()
	fx.engine.audit = newAuditDispatcher(fx.engine.config.Audit, sink)

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	if _, err := fx.engine.StartLogin(ctx, "alice", ""); err == nil {
		t.Fatal("expected missing credential error")
	}

	event := receiveEvent(t, sink)
	if event.EventType != auditEventCredentialRejected {
		t.Fatalf("expected credential_rejected, got %q", event.EventType)
	}
	if event.IP != "203.0.113.7" {
		t.Fatalf("expected client ip carried from context, got %q", event.IP)
	}
	if event.Success {
		t.Fatal("expected failure event")
	}
	if event.Metadata["reason"] != "missing_credential" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
}
