// Package notify delivers alert events to external channels.
//
// It implements a publish-subscribe pattern: the rule engine publishes events
// into a buffered channel and a dispatcher goroutine fans them out to the
// registered sinks. Publishing never blocks; when the channel is full the
// event is dropped, so a slow or failing channel can never stall metric
// ingestion or rule evaluation.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// sendTimeout bounds a single delivery attempt to one sink.
const sendTimeout = 5 * time.Second

// Sink delivers one alert event to an external channel.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// Send delivers the event. Delivery is best-effort; retries are the
	// sink's own concern.
	Send(ctx context.Context, event models.AlertEvent) error
}

// Manager fans alert events out to the registered sinks.
type Manager struct {
	sinks     []Sink
	eventChan chan models.AlertEvent
	logger    *zap.SugaredLogger
	wg        sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewManager creates a manager delivering to the given sinks.
func NewManager(logger *zap.SugaredLogger, sinks ...Sink) *Manager {
	return &Manager{
		sinks:     sinks,
		eventChan: make(chan models.AlertEvent, 64),
		logger:    logger,
	}
}

// Start launches the dispatcher goroutine.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.wg.Add(1)
	go m.dispatch()
}

// Publish hands an event to the dispatcher without blocking.
func (m *Manager) Publish(event models.AlertEvent) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	select {
	case m.eventChan <- event:
		// Event queued
	default:
		m.logger.Info("notification channel is full, dropping event")
	}
}

// Stop drains queued events and waits for the dispatcher to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started || m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	close(m.eventChan)
	m.wg.Wait()
}

func (m *Manager) dispatch() {
	defer m.wg.Done()
	for event := range m.eventChan {
		for _, sink := range m.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := sink.Send(ctx, event); err != nil {
				m.logger.Errorf("sink %s: delivery failed: %v", sink.Name(), err)
			}
			cancel()
		}
	}
}
