// Package dashboard computes read-only per-agent and system-wide summaries
// from the metric store, the agent index and the alert journal.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Schera-ole/agentmon/internal/collector"
	"github.com/Schera-ole/agentmon/internal/config"
	"github.com/Schera-ole/agentmon/internal/journal"
	models "github.com/Schera-ole/agentmon/internal/model"
)

// Aggregator serves dashboard queries. It never mutates the components it
// reads from.
type Aggregator struct {
	collector *collector.Collector
	agents    *collector.AgentIndex
	journal   journal.Journal
	logger    *zap.SugaredLogger

	// window bounds the history aggregated per query
	window  time.Duration
	recentN int
}

// New creates an aggregator reading the given components.
func New(
	c *collector.Collector,
	agents *collector.AgentIndex,
	jrnl journal.Journal,
	logger *zap.SugaredLogger,
	window time.Duration,
	recentN int,
) *Aggregator {
	return &Aggregator{
		collector: c,
		agents:    agents,
		journal:   jrnl,
		logger:    logger,
		window:    window,
		recentN:   recentN,
	}
}

// AgentDashboard returns the aggregated view for one agent.
//
// An agent with no recorded activity yields a zeroed dashboard, never an
// error, and the success rate never divides by zero.
func (a *Aggregator) AgentDashboard(ctx context.Context, agentID string) models.AgentDashboard {
	result := models.AgentDashboard{
		AgentID: agentID,
		Tasks:   make(map[string]models.MetricStats),
	}

	snapshot, exists := a.agents.Snapshot(agentID)
	if !exists {
		return result
	}

	result.TaskCount = snapshot.TaskCount
	result.ErrorCount = snapshot.ErrorCount
	result.LastSeen = snapshot.LastSeen
	if snapshot.TaskCount > 0 {
		result.SuccessRate = float64(snapshot.TaskCount-snapshot.ErrorCount) / float64(snapshot.TaskCount)
	}

	for _, task := range snapshot.Tasks {
		result.Tasks[task] = a.collector.Stats(config.TaskMetric(agentID, task), a.window)
	}

	return result
}

// SystemHealth returns the system-wide aggregated view.
//
// A journal failure degrades to an empty alert list; stats queries never fail.
func (a *Aggregator) SystemHealth(ctx context.Context) models.SystemHealth {
	health := models.SystemHealth{
		ActiveAgents: a.agents.Count(),
		System:       make(map[string]models.MetricStats),
		RecentAlerts: []models.AlertEvent{},
	}

	for _, name := range config.SystemMetricNames {
		health.System[name] = a.collector.Stats(name, a.window)
	}

	events, err := a.journal.Recent(ctx, a.recentN)
	if err != nil {
		a.logger.Errorf("error reading alert journal: %v", err)
		return health
	}
	if events != nil {
		health.RecentAlerts = events
	}

	return health
}
