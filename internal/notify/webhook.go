package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var webhookTracer = otel.Tracer("onetriage.internal.notify.webhook")

// maxResponseBody caps how much of the receiver's reply ends up in logs.
const maxResponseBody = 8192

// WebhookConfig routes each form type to its workflow-automation webhook.
type WebhookConfig struct {
	URLs   map[string]string
	Client *http.Client
}

// WebhookNotifier posts JSON payloads to per-route webhook URLs.
type WebhookNotifier struct {
	urls   map[string]string
	client *http.Client
}

// NewWebhookNotifier builds a notifier. Routes with empty URLs are dropped.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	urls := make(map[string]string, len(cfg.URLs))
	for route, u := range cfg.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls[route] = u
		}
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookNotifier{urls: urls, client: client}
}

// Notify posts payload. A response of any status counts as delivered; the status
// and body are reported for logging only.
func (n *WebhookNotifier) Notify(ctx context.Context, route string, payload any) Result {
	res := Result{Channel: "webhook", Route: route}
	url, ok := n.urls[route]
	if !ok {
		res.Err = fmt.Errorf("%w: webhook %q", ErrNotConfigured, route)
		return res
	}

	ctx, span := webhookTracer.Start(ctx, "notify.webhook.post")
	defer span.End()
	span.SetAttributes(attribute.String("onetriage.route", route))

	body, err := json.Marshal(payload)
	if err != nil {
		res.Err = fmt.Errorf("notify: marshal webhook payload: %w", err)
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "marshal")
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		res.Err = fmt.Errorf("notify: build webhook request: %w", err)
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("notify: webhook post: %w", err)
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "transport")
		return res
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	res.StatusCode = resp.StatusCode
	res.Body = string(respBody)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return res
}
