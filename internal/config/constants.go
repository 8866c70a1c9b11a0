// Package config provides configuration for the monitoring engine.
package config

// Well-known metric names written by the system probe.
const (
	SystemCPUPercent    = "system.cpu_percent"
	SystemMemoryPercent = "system.memory_percent"
	SystemDiskPercent   = "system.disk_percent"
	SystemNetBytesSent  = "system.net_bytes_sent"
	SystemNetBytesRecv  = "system.net_bytes_recv"
)

// SystemMetricNames lists every metric the probe produces, in dashboard order.
var SystemMetricNames = []string{
	SystemCPUPercent,
	SystemMemoryPercent,
	SystemDiskPercent,
	SystemNetBytesSent,
	SystemNetBytesRecv,
}

// TaskMetric returns the collector series name for one agent task's durations.
func TaskMetric(agentID, task string) string {
	return "agent." + agentID + ".task." + task + ".duration_ms"
}

// ErrorMetric returns the collector series name for one agent's error events.
func ErrorMetric(agentID string) string {
	return "agent." + agentID + ".errors"
}
