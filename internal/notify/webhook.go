package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// WebhookSink posts alert events as JSON to a configured URL.
//
// When a key is configured the request carries a HashSHA256 header so the
// receiver can verify the payload.
type WebhookSink struct {
	url    string
	key    string
	client *http.Client
}

// NewWebhookSink creates a webhook sink. An empty key disables signing.
func NewWebhookSink(url, key string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		key:    key,
		client: &http.Client{},
	}
}

// Name identifies the sink in logs.
func (ws *WebhookSink) Name() string {
	return "webhook"
}

func countHashString(body []byte, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Send posts the event. 5xx responses are treated as delivery failures so the
// manager can log them; there is no retry here, at-most-once per episode is
// the engine's contract.
func (ws *WebhookSink) Send(ctx context.Context, event models.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error creating json: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request for %s: %w", ws.url, err)
	}
	request.Header.Set("Content-Type", "application/json")
	if ws.key != "" {
		request.Header.Set("HashSHA256", countHashString(body, ws.key))
	}

	response, err := ws.client.Do(request)
	if err != nil {
		return fmt.Errorf("error sending request for %s: %w", ws.url, err)
	}
	defer response.Body.Close()
	io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", response.StatusCode)
	}
	return nil
}
