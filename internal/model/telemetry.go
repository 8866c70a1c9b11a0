// Package models defines the data structures used throughout the monitoring engine.
package models

import "time"

// Alert rule conditions.
const (
	GreaterThan = "greater_than"
	LessThan    = "less_than"
	Equal       = "equal"
)

// Alert severities attached to notification events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert event kinds.
const (
	EventBreach   = "breach"
	EventRecovery = "recovery"
)

// MetricSample represents a single timestamped metric observation.
//
// Samples are immutable once recorded and are only removed by retention pruning.
type MetricSample struct {
	// Name is the unique identifier for the metric
	Name string `json:"name"`

	// Value is the observed value
	Value float64 `json:"value"`

	// Timestamp is the moment the sample was recorded
	Timestamp time.Time `json:"timestamp"`

	// Tags holds optional key/value labels attached by the producer
	Tags map[string]string `json:"tags,omitempty"`
}

// MetricStats holds windowed statistics over one metric series.
type MetricStats struct {
	// Min is the smallest value observed in the window
	Min float64 `json:"min"`

	// Max is the largest value observed in the window
	Max float64 `json:"max"`

	// Avg is the arithmetic mean over the window
	Avg float64 `json:"avg"`

	// Count is the number of samples in the window
	Count int `json:"count"`

	// P95 is the 95th percentile value over the window
	P95 float64 `json:"p95"`
}

// AlertRule defines a threshold rule evaluated against one metric series.
type AlertRule struct {
	// ID is the unique identifier assigned at registration
	ID string `json:"id"`

	// MetricName is the metric series the rule watches
	MetricName string `json:"metric_name"`

	// Threshold is the boundary value compared against samples
	Threshold float64 `json:"threshold"`

	// Condition is one of GreaterThan, LessThan, Equal
	Condition string `json:"condition"`

	// Sustained is how long every sample must hold the condition before firing
	Sustained time.Duration `json:"sustained"`

	// Severity is attached to events fired by this rule
	Severity string `json:"severity"`
}

// AlertState tracks the breach episode of a single rule across evaluations.
//
// It is written only by the evaluation driver.
type AlertState struct {
	// Active reports whether the rule is currently in a breach episode
	Active bool `json:"active"`

	// FirstBreach is the onset of the current (or last) episode
	FirstBreach time.Time `json:"first_breach,omitempty"`

	// LastFired is when the breach notification for the episode was emitted
	LastFired time.Time `json:"last_fired,omitempty"`
}

// AlertEvent is the payload delivered to notification sinks and the journal.
type AlertEvent struct {
	// ID is the unique identifier of the event
	ID string `json:"id"`

	// RuleID identifies the rule that produced the event
	RuleID string `json:"rule_id"`

	// MetricName is the metric the rule watches
	MetricName string `json:"metric_name"`

	// Kind is EventBreach or EventRecovery
	Kind string `json:"kind"`

	// Value is the most recent sample value observed at emission time
	Value float64 `json:"value"`

	// Threshold is the rule boundary
	Threshold float64 `json:"threshold"`

	// Severity is copied from the rule
	Severity string `json:"severity"`

	// Timestamp is when the event was emitted
	Timestamp time.Time `json:"timestamp"`

	// FirstBreach is the onset of the episode the event belongs to
	FirstBreach time.Time `json:"first_breach,omitempty"`
}

// AlertSpec is one alert definition from the startup configuration file.
type AlertSpec struct {
	// Metric is the metric series the rule watches
	Metric string `json:"metric"`

	// Threshold is the boundary value
	Threshold float64 `json:"threshold"`

	// Condition is one of GreaterThan, LessThan, Equal
	Condition string `json:"condition"`

	// DurationMinutes is the sustained window length in minutes
	DurationMinutes float64 `json:"duration_minutes"`

	// Severity is optional and defaults to warning
	Severity string `json:"severity,omitempty"`
}

// AgentDashboard is the per-agent aggregated view served to the CLI/UI.
type AgentDashboard struct {
	// AgentID is the agent the dashboard describes
	AgentID string `json:"agent_id"`

	// TaskCount is the number of task executions recorded
	TaskCount int64 `json:"task_count"`

	// ErrorCount is the number of errors recorded
	ErrorCount int64 `json:"error_count"`

	// SuccessRate is (tasks-errors)/tasks, 0 when no tasks were recorded
	SuccessRate float64 `json:"success_rate"`

	// LastSeen is the last time any activity was recorded for the agent
	LastSeen time.Time `json:"last_seen,omitempty"`

	// Tasks maps task name to duration statistics in milliseconds
	Tasks map[string]MetricStats `json:"tasks"`
}

// SystemHealth is the system-wide aggregated view served to the CLI/UI.
type SystemHealth struct {
	// ActiveAgents is the number of agents seen this session
	ActiveAgents int `json:"active_agents"`

	// System maps well-known system metric names to windowed statistics
	System map[string]MetricStats `json:"system"`

	// RecentAlerts lists the most recent alert events, newest first
	RecentAlerts []AlertEvent `json:"recent_alerts"`
}

// MetricsDTO represents one ingest record accepted by the HTTP API.
//
// Exactly one of the three shapes is expected: a task duration (Task set),
// an error (Error set), or a custom metric (only Metric and Value set).
type MetricsDTO struct {
	// Metric is the metric name for custom metric records
	Metric string `json:"metric,omitempty"`

	// Value is the observed value, required for custom metrics and task durations
	Value *float64 `json:"value,omitempty"`

	// Tags holds optional labels for custom metrics
	Tags map[string]string `json:"tags,omitempty"`

	// AgentID identifies the producing agent for task and error records
	AgentID string `json:"agent_id,omitempty"`

	// Task is the task name for duration records
	Task string `json:"task,omitempty"`

	// Error is the error type for error records
	Error string `json:"error,omitempty"`
}
