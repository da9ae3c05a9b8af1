package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type webhookPayload struct {
	Recipient  string    `json:"recipient,omitempty"`
	Subject    string    `json:"subject"`
	HTML       string    `json:"html"`
	Text       string    `json:"text"`
	DigestID   string    `json:"digest_id"`
	TotalItems int       `json:"total_items"`
	CreatedAt  time.Time `json:"created_at"`
}

// WebhookSink posts the rendered digest to a mail gateway
type WebhookSink struct {
	client *resty.Client
	url    string
	token  string
}

func NewWebhookSink(url, token string, timeout time.Duration) *WebhookSink {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &WebhookSink{client: client, url: url, token: token}
}

func (w *WebhookSink) Name() string { return "webhook" }

func (w *WebhookSink) Deliver(ctx context.Context, d Delivery) error {
	req := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			Recipient:  d.Recipient,
			Subject:    d.Subject,
			HTML:       d.HTML,
			Text:       d.Text,
			DigestID:   d.Digest.ID,
			TotalItems: d.Digest.TotalItemCount,
			CreatedAt:  d.Digest.CreatedAt,
		})
	if w.token != "" {
		req.SetAuthToken(w.token)
	}

	resp, err := req.Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}
	return nil
}
