package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/Schera-ole/agentmon/internal/model"
)

func TestLoadAlertSpecs(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "alerts.json")
	content := `[
		{"metric": "system.cpu_percent", "threshold": 80, "condition": "greater_than", "duration_minutes": 5, "severity": "warning"},
		{"metric": "agent.a1.errors", "threshold": 3, "condition": "greater_than", "severity": "critical"}
	]`
	require.NoError(t, os.WriteFile(fname, []byte(content), 0o644))

	specs, err := LoadAlertSpecs(fname)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "system.cpu_percent", specs[0].Metric)
	assert.Equal(t, 80.0, specs[0].Threshold)
	assert.Equal(t, models.GreaterThan, specs[0].Condition)
	assert.Equal(t, 5.0, specs[0].DurationMinutes)
	assert.Equal(t, models.SeverityCritical, specs[1].Severity)
	assert.Equal(t, 0.0, specs[1].DurationMinutes)
}

func TestLoadAlertSpecs_MissingFile(t *testing.T) {
	specs, err := LoadAlertSpecs(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, specs)
}

func TestLoadAlertSpecs_EmptyName(t *testing.T) {
	specs, err := LoadAlertSpecs("")
	require.NoError(t, err)
	assert.Nil(t, specs)
}

func TestLoadAlertSpecs_MalformedJSON(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "alerts.json")
	require.NoError(t, os.WriteFile(fname, []byte("{broken"), 0o644))

	_, err := LoadAlertSpecs(fname)
	assert.Error(t, err)
}

func TestMetricNames(t *testing.T) {
	assert.Equal(t, "agent.a1.task.sum.duration_ms", TaskMetric("a1", "sum"))
	assert.Equal(t, "agent.a1.errors", ErrorMetric("a1"))
}
