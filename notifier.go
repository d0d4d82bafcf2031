package trustgate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoopNotifier discards every dispatch. Useful for tests and for hosts whose
// gateway integration lives elsewhere.
type NoopNotifier struct{}

// Send implements [Notifier].
func (NoopNotifier) Send(context.Context, string, string) {}

// HTTPNotifier posts the OTP message to an SMS gateway endpoint. It honors
// the best-effort contract of [Notifier]: the gateway's response is read and
// discarded, and every failure — connection refused, timeout, non-2xx — is
// swallowed, observable only through a debug log line.
type HTTPNotifier struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPNotifier creates a gateway notifier posting to endpoint. A nil
// client gets a short default timeout so a stalled gateway cannot pin the
// dispatch goroutine.
func NewHTTPNotifier(endpoint string, client *http.Client, logger *zap.Logger) *HTTPNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPNotifier{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Send implements [Notifier].
func (n *HTTPNotifier) Send(ctx context.Context, mobileNo, message string) {
	if n == nil || n.endpoint == "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dispatchID := uuid.NewString()
	form := url.Values{
		"to":          {mobileNo},
		"body":        {message},
		"dispatch_id": {dispatchID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.logger.Debug("notification dispatch dropped", zap.String("dispatch_id", dispatchID), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Debug("notification dispatch dropped", zap.String("dispatch_id", dispatchID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Debug("notification gateway status ignored",
			zap.String("dispatch_id", dispatchID),
			zap.Int("status", resp.StatusCode),
		)
	}
}
