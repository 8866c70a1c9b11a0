// Package monitor wires the telemetry components into one explicitly
// constructed engine with a start/stop lifecycle.
//
// A single scheduler goroutine drives alert evaluation and retention pruning;
// the system probe runs its own sampling loop. Producers calling the Record
// methods only touch the collector and the agent index, so they are never
// blocked by evaluation or probing.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Schera-ole/agentmon/internal/alert"
	"github.com/Schera-ole/agentmon/internal/collector"
	"github.com/Schera-ole/agentmon/internal/config"
	"github.com/Schera-ole/agentmon/internal/dashboard"
	"github.com/Schera-ole/agentmon/internal/journal"
	models "github.com/Schera-ole/agentmon/internal/model"
	"github.com/Schera-ole/agentmon/internal/notify"
	"github.com/Schera-ole/agentmon/internal/probe"
)

// Monitor is the telemetry and alerting engine.
type Monitor struct {
	cfg       *config.MonitorConfig
	logger    *zap.SugaredLogger
	collector *collector.Collector
	agents    *collector.AgentIndex
	engine    *alert.Engine
	probe     *probe.SystemProbe
	journal   journal.Journal
	notifier  *notify.Manager
	dashboard *dashboard.Aggregator

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New constructs a monitor over the given journal and notification sinks.
func New(cfg *config.MonitorConfig, logger *zap.SugaredLogger, jrnl journal.Journal, sinks ...notify.Sink) *Monitor {
	m := &Monitor{
		cfg:     cfg,
		logger:  logger,
		journal: jrnl,
	}
	m.collector = collector.New(logger)
	m.agents = collector.NewAgentIndex()
	m.notifier = notify.NewManager(logger, sinks...)
	m.engine = alert.NewEngine(m.collector, logger, m.handleAlertEvent)
	m.probe = probe.New(m.collector, logger)
	m.dashboard = dashboard.New(
		m.collector, m.agents, jrnl, logger,
		time.Duration(cfg.StatsWindow)*time.Second, cfg.RecentAlerts,
	)
	return m
}

// handleAlertEvent journals the event and hands it to the async dispatcher.
//
// The journal write is isolated: a failure is logged, the notification still
// goes out, and evaluation of the remaining rules proceeds.
func (m *Monitor) handleAlertEvent(event models.AlertEvent) {
	if err := m.journal.Append(context.Background(), event); err != nil {
		m.logger.Errorf("error journaling alert event: %v", err)
	}
	m.notifier.Publish(event)
}

// RecordTaskDuration records one finished task execution for an agent.
func (m *Monitor) RecordTaskDuration(agentID, task string, durationMS float64) {
	m.agents.ObserveTask(agentID, task)
	m.collector.Record(config.TaskMetric(agentID, task), durationMS,
		map[string]string{"agent_id": agentID, "task": task})
}

// RecordError records one error for an agent.
func (m *Monitor) RecordError(agentID, errorType string) {
	m.agents.ObserveError(agentID)
	m.collector.Record(config.ErrorMetric(agentID), 1,
		map[string]string{"agent_id": agentID, "type": errorType})
}

// RecordCustomMetric records an arbitrary metric sample.
func (m *Monitor) RecordCustomMetric(name string, value float64, tags map[string]string) {
	m.collector.Record(name, value, tags)
}

// AddRule registers an alert rule, see alert.Engine.AddRule.
func (m *Monitor) AddRule(metricName string, threshold float64, condition string, sustained time.Duration, severity string) (string, error) {
	return m.engine.AddRule(metricName, threshold, condition, sustained, severity)
}

// AddRuleSpec registers one rule from the startup configuration.
func (m *Monitor) AddRuleSpec(spec models.AlertSpec) (string, error) {
	sustained := time.Duration(spec.DurationMinutes * float64(time.Minute))
	return m.engine.AddRule(spec.Metric, spec.Threshold, spec.Condition, sustained, spec.Severity)
}

// Collector exposes the metric store for read surfaces.
func (m *Monitor) Collector() *collector.Collector {
	return m.collector
}

// Engine exposes the rule engine for read surfaces.
func (m *Monitor) Engine() *alert.Engine {
	return m.engine
}

// Journal exposes the alert journal.
func (m *Monitor) Journal() journal.Journal {
	return m.journal
}

// Dashboard exposes the read-only aggregator.
func (m *Monitor) Dashboard() *dashboard.Aggregator {
	return m.dashboard
}

// Start launches the probe, the notification dispatcher and the scheduler.
// Starting a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})

	m.notifier.Start()
	m.probe.Start(time.Duration(m.cfg.ProbeInterval) * time.Second)

	m.wg.Add(1)
	go m.schedule(ctx, m.stopChan)

	m.logger.Infow("monitor started",
		"eval_interval_s", m.cfg.EvalInterval,
		"probe_interval_s", m.cfg.ProbeInterval,
		"retention_min", m.cfg.Retention,
	)
}

// schedule is the single periodic driver for evaluation and pruning.
func (m *Monitor) schedule(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	evalTicker := time.NewTicker(time.Duration(m.cfg.EvalInterval) * time.Second)
	defer evalTicker.Stop()
	pruneTicker := time.NewTicker(time.Duration(m.cfg.PruneInterval) * time.Second)
	defer pruneTicker.Stop()

	for {
		select {
		case <-evalTicker.C:
			m.engine.EvaluateOnce(ctx)
		case <-pruneTicker.C:
			removed := m.collector.Prune(time.Duration(m.cfg.Retention) * time.Minute)
			if removed > 0 {
				m.logger.Infof("pruned %d samples", removed)
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the scheduler, the probe and the dispatcher, letting any
// in-flight tick finish first. Stopping a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()
	m.probe.Stop()
	m.notifier.Stop()
	m.logger.Info("monitor stopped")
}
