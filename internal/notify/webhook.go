package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// WebhookConfig holds the settings for webhook delivery.
type WebhookConfig struct {
	URL        string
	TimeoutMs  int
	MaxRetries int

	// Client credentials are optional. When ClientID and TokenURL are set,
	// deliveries carry a bearer token obtained from TokenURL.
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// DefaultWebhookConfig returns a WebhookConfig with sensible defaults.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		TimeoutMs:  5000,
		MaxRetries: 2,
	}
}

// WebhookNotifier POSTs each event as JSON to a fixed URL.
type WebhookNotifier struct {
	cfg      WebhookConfig
	http     *http.Client
	observer Observer
}

// NewWebhookNotifier creates a Notifier that delivers events over HTTP.
func NewWebhookNotifier(cfg WebhookConfig, observer Observer) *WebhookNotifier {
	if observer == nil {
		observer = NoopObserver{}
	}
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
	}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		// The token source and the authenticated client reuse the dialer above.
		client = cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, client))
	}
	return &WebhookNotifier{cfg: cfg, http: client, observer: observer}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event domain.Event) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(n.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	var lastErr error
	attempts := 1 + n.cfg.MaxRetries
	tried := 0

	for i := 0; i < attempts; i++ {
		tried++
		err := n.post(ctx, data)
		if err == nil {
			n.observer.OnDelivery(DeliveryEvent{
				Type:      event.Type,
				Attempts:  tried,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	var result error
	switch {
	case ctx.Err() != nil:
		result = ErrTimeout
	case isConnectionError(lastErr):
		result = ErrUnavailable
	default:
		result = fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
	}
	n.observer.OnDelivery(DeliveryEvent{
		Type:      event.Type,
		Attempts:  tried,
		LatencyMs: time.Since(start).Milliseconds(),
		ErrorCode: errorCode(result),
	})
	return result
}

func (n *WebhookNotifier) post(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
