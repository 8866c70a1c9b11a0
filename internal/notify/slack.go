package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// SlackSink posts alert events to a Slack incoming webhook.
type SlackSink struct {
	webhookURL string
	client     *http.Client
}

// NewSlackSink creates a sink for a Slack incoming webhook URL.
func NewSlackSink(webhookURL string) *SlackSink {
	return &SlackSink{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

// Name identifies the sink in logs.
func (ss *SlackSink) Name() string {
	return "slack"
}

func formatSlackMessage(event models.AlertEvent) string {
	switch event.Kind {
	case models.EventRecovery:
		return fmt.Sprintf(":white_check_mark: recovered: %s is %.2f (threshold %.2f)",
			event.MetricName, event.Value, event.Threshold)
	default:
		return fmt.Sprintf(":rotating_light: [%s] %s breached: value %.2f, threshold %.2f, since %s",
			event.Severity, event.MetricName, event.Value, event.Threshold,
			event.FirstBreach.Format("15:04:05"))
	}
}

// Send posts the formatted message.
func (ss *SlackSink) Send(ctx context.Context, event models.AlertEvent) error {
	payload, err := json.Marshal(map[string]string{"text": formatSlackMessage(event)})
	if err != nil {
		return fmt.Errorf("error creating json: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, ss.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating request for slack: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := ss.client.Do(request)
	if err != nil {
		return fmt.Errorf("error sending slack message: %w", err)
	}
	defer response.Body.Close()
	io.Copy(io.Discard, response.Body)

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", response.StatusCode)
	}
	return nil
}
