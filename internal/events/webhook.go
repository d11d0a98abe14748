package events

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"sales_api/internal/sales"
)

// Envelope is the JSON body posted to webhook consumers.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    sales.Event `json:"payload"`
}

// WebhookPublisher posts every event to a fixed URL.
type WebhookPublisher struct {
	client *resty.Client
	url    string
}

// NewWebhookPublisher creates a publisher that POSTs to url, giving up on a
// delivery after timeout.
func NewWebhookPublisher(url string, timeout time.Duration) *WebhookPublisher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "sales-api-webhook")
	return &WebhookPublisher{client: client, url: url}
}

func (p *WebhookPublisher) Publish(ctx context.Context, event sales.Event) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", event.EventType()).
		SetBody(Envelope{
			Type:       event.EventType(),
			OccurredAt: event.OccurredAt(),
			Payload:    event,
		}).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("error posting %s webhook: %w", event.EventType(), err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned unexpected status: %d", resp.StatusCode())
	}
	return nil
}

// Close releases the underlying HTTP client.
func (p *WebhookPublisher) Close() error {
	return p.client.Close()
}
