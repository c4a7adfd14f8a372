// Package notify delivers domain events to the external notification
// dispatcher over a webhook. Delivery is best-effort: it runs on the async
// side of the event dispatcher, and a failed post is logged and dropped,
// never surfaced to the workflow that emitted the event.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/event"
)

// Config holds webhook notifier configuration
type Config struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

// WebhookNotifier posts events as JSON to a configured endpoint with a small
// bounded retry.
type WebhookNotifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(cfg Config, logger *zap.Logger) *WebhookNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &WebhookNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Notify implements port.Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, evt *event.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		lastErr = n.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		n.logger.Warn("Webhook delivery attempt failed",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(evt.Type)),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", n.cfg.MaxRetries+1, lastErr)
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Handler adapts the notifier into an event dispatcher subscriber.
func Handler(n port.Notifier) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		return n.Notify(ctx, evt)
	}
}

// SubscribeAll registers the notifier for every event type the workflow
// emits.
func SubscribeAll(d dispatcher.Dispatcher, n port.Notifier) {
	for _, t := range []event.Type{
		event.TypeSubmitted,
		event.TypeManagerApproved,
		event.TypeApproved,
		event.TypePaid,
		event.TypeRevisionRequired,
		event.TypeDenied,
		event.TypeDrawRequested,
		event.TypeDrawDecided,
		event.TypeOverrideEarned,
	} {
		d.SubscribeNamed(t, "webhook", Handler(n))
	}
}

// Verify interface compliance
var _ port.Notifier = (*WebhookNotifier)(nil)
