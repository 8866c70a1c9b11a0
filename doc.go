// Package agentmon implements a real-time telemetry and alerting engine for
// agent workloads.
//
// The engine continuously ingests system- and agent-level metrics, evaluates
// threshold rules that require sustained breaches rather than instantaneous
// spikes, and serves aggregated dashboards per agent and system-wide.
//
// Features:
//   - Concurrent-safe in-memory metric store, partitioned per metric name
//   - Incrementally maintained per-agent counters for O(1) dashboard reads
//   - Background host probe for CPU, memory, disk and network usage
//   - Stateful alert rules firing at most once per breach episode, with
//     recovery notifications
//   - Slack, webhook and email notification sinks behind a non-blocking
//     dispatcher
//   - Alert event journal with in-memory and PostgreSQL backends
//   - REST API for ingestion and dashboards, with gzip and HMAC SHA256
//     payload verification
//   - Graceful shutdown handling
//   - Structured logging
//
// The repository includes a simulator that generates agent task telemetry
// against the HTTP API. Both binaries support configuration via command-line
// flags and environment variables.
package agentmon
