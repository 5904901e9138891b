package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

var ErrDelivery = errors.New("notification delivery failed")

// WebhookNotifier POSTs each event as JSON.
type WebhookNotifier struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

func NewWebhookNotifier(url, token string, client *http.Client, logger *slog.Logger) *WebhookNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookNotifier{
		url:    url,
		token:  token,
		client: client,
		logger: logger.With("system", "notify", "notifier", "webhook"),
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.JobID.String())
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrDelivery, resp.Status)
	}

	n.logger.InfoContext(ctx, "notification delivered", "job_id", ev.JobID, "status", ev.Status)
	return nil
}
