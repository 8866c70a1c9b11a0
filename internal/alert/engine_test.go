package alert

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalerrors "github.com/Schera-ole/agentmon/internal/errors"
	models "github.com/Schera-ole/agentmon/internal/model"
)

// MockedSource serves canned samples per metric name.
type MockedSource struct {
	samples map[string][]models.MetricSample
	panics  map[string]bool
}

func NewMockedSource() *MockedSource {
	return &MockedSource{
		samples: make(map[string][]models.MetricSample),
		panics:  make(map[string]bool),
	}
}

func (m *MockedSource) Set(name string, values ...float64) {
	samples := make([]models.MetricSample, len(values))
	now := time.Now()
	for i, v := range values {
		samples[i] = models.MetricSample{
			Name:      name,
			Value:     v,
			Timestamp: now.Add(time.Duration(i-len(values)) * time.Second),
		}
	}
	m.samples[name] = samples
}

func (m *MockedSource) Window(name string, window time.Duration) []models.MetricSample {
	if m.panics[name] {
		panic("query failure")
	}
	return m.samples[name]
}

func (m *MockedSource) Latest(name string) (models.MetricSample, bool) {
	if m.panics[name] {
		panic("query failure")
	}
	samples := m.samples[name]
	if len(samples) == 0 {
		return models.MetricSample{}, false
	}
	return samples[len(samples)-1], true
}

type eventRecorder struct {
	events []models.AlertEvent
}

func (r *eventRecorder) record(event models.AlertEvent) {
	r.events = append(r.events, event)
}

func newTestEngine(source Source) (*Engine, *eventRecorder) {
	recorder := &eventRecorder{}
	return NewEngine(source, zap.NewNop().Sugar(), recorder.record), recorder
}

func TestEngine_AddRuleValidation(t *testing.T) {
	engine, _ := newTestEngine(NewMockedSource())

	// Valid rule
	id, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 5*time.Minute, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Empty metric name
	_, err = engine.AddRule("", 80, models.GreaterThan, time.Minute, "")
	assert.ErrorIs(t, err, internalerrors.ErrInvalidRule)

	// Negative duration
	_, err = engine.AddRule("cpu_percent", 80, models.GreaterThan, -time.Minute, "")
	assert.ErrorIs(t, err, internalerrors.ErrInvalidRule)

	// Unknown condition
	_, err = engine.AddRule("cpu_percent", 80, "between", time.Minute, "")
	assert.ErrorIs(t, err, internalerrors.ErrUnknownCondition)

	// Unknown severity
	_, err = engine.AddRule("cpu_percent", 80, models.GreaterThan, time.Minute, "panic")
	assert.ErrorIs(t, err, internalerrors.ErrInvalidRule)
}

func TestEngine_SeverityDefaultsToWarning(t *testing.T) {
	engine, _ := newTestEngine(NewMockedSource())

	_, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, time.Minute, "")
	require.NoError(t, err)

	rules := engine.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, models.SeverityWarning, rules[0].Severity)
}

func TestEngine_ImmediateRuleFires(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	// Zero sustained duration means the latest sample decides
	ruleID, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 0, "")
	require.NoError(t, err)

	source.Set("cpu_percent", 85)
	engine.EvaluateOnce(context.Background())

	require.Len(t, recorder.events, 1)
	assert.Equal(t, models.EventBreach, recorder.events[0].Kind)
	assert.Equal(t, ruleID, recorder.events[0].RuleID)
	assert.Equal(t, 85.0, recorder.events[0].Value)
}

func TestEngine_EmptyWindowIsNotBreached(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	_, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 5*time.Minute, "")
	require.NoError(t, err)

	engine.EvaluateOnce(context.Background())
	assert.Empty(t, recorder.events)
}

func TestEngine_SustainedBreachFiresOnce(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	ruleID, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 5*time.Minute, models.SeverityCritical)
	require.NoError(t, err)

	// Every sample in the window above the threshold
	source.Set("cpu_percent", 85, 90, 88, 92)
	engine.EvaluateOnce(context.Background())
	require.Len(t, recorder.events, 1)
	assert.Equal(t, models.EventBreach, recorder.events[0].Kind)
	assert.Equal(t, 92.0, recorder.events[0].Value)
	assert.Equal(t, models.SeverityCritical, recorder.events[0].Severity)
	assert.False(t, recorder.events[0].FirstBreach.IsZero())

	// Still breached on the next tick: no second notification for the episode
	engine.EvaluateOnce(context.Background())
	assert.Len(t, recorder.events, 1)

	state, exists := engine.State(ruleID)
	require.True(t, exists)
	assert.True(t, state.Active)
}

func TestEngine_DipInsideWindowPreventsFiring(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	_, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 5*time.Minute, "")
	require.NoError(t, err)

	// One sample at the threshold breaks the sustained condition
	source.Set("cpu_percent", 85, 90, 79, 92)
	engine.EvaluateOnce(context.Background())
	assert.Empty(t, recorder.events)
}

func TestEngine_RecoveryAndRefire(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	ruleID, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 5*time.Minute, "")
	require.NoError(t, err)

	// Breach episode
	source.Set("cpu_percent", 85, 90)
	engine.EvaluateOnce(context.Background())
	require.Len(t, recorder.events, 1)

	// Condition false for a full evaluation: exactly one recovery
	source.Set("cpu_percent", 85, 90, 70)
	engine.EvaluateOnce(context.Background())
	require.Len(t, recorder.events, 2)
	assert.Equal(t, models.EventRecovery, recorder.events[1].Kind)
	assert.Equal(t, 70.0, recorder.events[1].Value)

	// Staying recovered fires nothing
	engine.EvaluateOnce(context.Background())
	assert.Len(t, recorder.events, 2)

	// A new fully sustained breach fires again
	source.Set("cpu_percent", 95, 96)
	engine.EvaluateOnce(context.Background())
	require.Len(t, recorder.events, 3)
	assert.Equal(t, models.EventBreach, recorder.events[2].Kind)
	assert.Equal(t, ruleID, recorder.events[2].RuleID)
}

func TestEngine_LessThanAndEqualConditions(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	_, err := engine.AddRule("free_mb", 100, models.LessThan, 0, "")
	require.NoError(t, err)
	_, err = engine.AddRule("workers", 0, models.Equal, 0, "")
	require.NoError(t, err)

	source.Set("free_mb", 50)
	source.Set("workers", 0)
	engine.EvaluateOnce(context.Background())

	require.Len(t, recorder.events, 2)
	assert.Equal(t, "free_mb", recorder.events[0].MetricName)
	assert.Equal(t, "workers", recorder.events[1].MetricName)
}

func TestEngine_RulesOnSameMetricAreIndependent(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	warnID, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 0, models.SeverityWarning)
	require.NoError(t, err)
	critID, err := engine.AddRule("cpu_percent", 95, models.GreaterThan, 0, models.SeverityCritical)
	require.NoError(t, err)

	source.Set("cpu_percent", 90)
	engine.EvaluateOnce(context.Background())

	// Only the warning rule crosses its threshold
	require.Len(t, recorder.events, 1)
	assert.Equal(t, warnID, recorder.events[0].RuleID)

	source.Set("cpu_percent", 97)
	engine.EvaluateOnce(context.Background())
	require.Len(t, recorder.events, 2)
	assert.Equal(t, critID, recorder.events[1].RuleID)
}

func TestEngine_RuleFailureIsIsolated(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	// First rule panics during query, the second must still be evaluated
	_, err := engine.AddRule("broken_metric", 1, models.GreaterThan, 0, "")
	require.NoError(t, err)
	_, err = engine.AddRule("cpu_percent", 80, models.GreaterThan, 0, "")
	require.NoError(t, err)

	source.panics["broken_metric"] = true
	source.Set("cpu_percent", 90)

	engine.EvaluateOnce(context.Background())
	require.Len(t, recorder.events, 1)
	assert.Equal(t, "cpu_percent", recorder.events[0].MetricName)
}

func TestEngine_EvaluateRespectsContext(t *testing.T) {
	source := NewMockedSource()
	engine, recorder := newTestEngine(source)

	_, err := engine.AddRule("cpu_percent", 80, models.GreaterThan, 0, "")
	require.NoError(t, err)
	source.Set("cpu_percent", 90)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine.EvaluateOnce(ctx)
	assert.Empty(t, recorder.events)
}
