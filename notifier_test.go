package trustgate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestHTTPNotifierPostsForm(t *testing.T) {
	var mu sync.Mutex
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		mu.Lock()
		got = map[string]string{
			"to":          r.PostFormValue("to"),
			"body":        r.PostFormValue("body"),
			"dispatch_id": r.PostFormValue("dispatch_id"),
		}
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewHTTPNotifier(srv.URL, nil, nil)
	notifier.Send(context.Background(), "15550100", "Your one-time login code is 123456.")

	mu.Lock()
	defer mu.Unlock()
	if got["to"] != "15550100" {
		t.Fatalf("expected recipient in form, got %+v", got)
	}
	if got["body"] != "Your one-time login code is 123456." {
		t.Fatalf("expected message body in form, got %+v", got)
	}
	if got["dispatch_id"] == "" {
		t.Fatal("expected a dispatch id")
	}
}

func TestHTTPNotifierSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	notifier := NewHTTPNotifier(srv.URL, nil, nil)
	// Gateway failure, connection failure, and empty endpoint are all silent.
	notifier.Send(context.Background(), "15550100", "code")
	srv.Close()
	notifier.Send(context.Background(), "15550100", "code")
	NewHTTPNotifier("", nil, nil).Send(context.Background(), "15550100", "code")
	NoopNotifier{}.Send(context.Background(), "15550100", "code")
}
