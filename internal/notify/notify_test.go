package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// MockedSink records delivered events.
type MockedSink struct {
	mu     sync.Mutex
	events []models.AlertEvent
	err    error
}

func (m *MockedSink) Name() string {
	return "mocked"
}

func (m *MockedSink) Send(ctx context.Context, event models.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *MockedSink) delivered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func testEvent() models.AlertEvent {
	return models.AlertEvent{
		ID:         "event-1",
		RuleID:     "rule-1",
		MetricName: "cpu_percent",
		Kind:       models.EventBreach,
		Value:      95,
		Threshold:  80,
		Severity:   models.SeverityCritical,
		Timestamp:  time.Now(),
	}
}

func TestManager_DeliversToAllSinks(t *testing.T) {
	first := &MockedSink{}
	second := &MockedSink{}
	manager := NewManager(zap.NewNop().Sugar(), first, second)

	manager.Start()
	manager.Publish(testEvent())
	manager.Publish(testEvent())
	manager.Stop()

	assert.Equal(t, 2, first.delivered())
	assert.Equal(t, 2, second.delivered())
}

func TestManager_FailingSinkDoesNotStopOthers(t *testing.T) {
	failing := &MockedSink{err: errors.New("connection refused")}
	healthy := &MockedSink{}
	manager := NewManager(zap.NewNop().Sugar(), failing, healthy)

	manager.Start()
	manager.Publish(testEvent())
	manager.Stop()

	assert.Equal(t, 1, healthy.delivered())
}

func TestManager_PublishNeverBlocks(t *testing.T) {
	sink := &MockedSink{}
	manager := NewManager(zap.NewNop().Sugar(), sink)

	// Without a running dispatcher the buffer fills up; publishing past the
	// capacity must drop instead of blocking.
	for i := 0; i < 100; i++ {
		manager.Publish(testEvent())
	}

	manager.Start()
	manager.Stop()
	assert.Equal(t, 64, sink.delivered())
}

func TestManager_PublishAfterStopIsIgnored(t *testing.T) {
	sink := &MockedSink{}
	manager := NewManager(zap.NewNop().Sugar(), sink)

	manager.Start()
	manager.Stop()
	manager.Publish(testEvent())

	assert.Equal(t, 0, sink.delivered())
}

func TestWebhookSink_Send(t *testing.T) {
	var received models.AlertEvent
	var hashHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		hashHeader = r.Header.Get("HashSHA256")
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, "secret")
	event := testEvent()
	require.NoError(t, sink.Send(context.Background(), event))

	assert.Equal(t, event.ID, received.ID)
	assert.Equal(t, event.MetricName, received.MetricName)
	assert.NotEmpty(t, hashHeader)
}

func TestWebhookSink_UnsignedWithoutKey(t *testing.T) {
	var hashHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hashHeader = r.Header.Get("HashSHA256")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, "")
	require.NoError(t, sink.Send(context.Background(), testEvent()))
	assert.Empty(t, hashHeader)
}

func TestWebhookSink_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := NewWebhookSink(server.URL, "")
	err := sink.Send(context.Background(), testEvent())
	assert.Error(t, err)
}

func TestSlackSink_Send(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewSlackSink(server.URL)
	require.NoError(t, sink.Send(context.Background(), testEvent()))

	assert.Contains(t, payload["text"], "cpu_percent")
	assert.Contains(t, payload["text"], "breached")
}

func TestSlackSink_RecoveryMessage(t *testing.T) {
	event := testEvent()
	event.Kind = models.EventRecovery

	message := formatSlackMessage(event)
	assert.Contains(t, message, "recovered")
	assert.Contains(t, message, "cpu_percent")
}
