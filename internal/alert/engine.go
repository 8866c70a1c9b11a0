// Package alert implements periodic, stateful evaluation of threshold rules
// against the metric store.
//
// A rule is breached only when the condition holds for every sample inside its
// sustained window; a breach fires at most one notification per episode and
// must recover before it can fire again.
package alert

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalerrors "github.com/Schera-ole/agentmon/internal/errors"
	models "github.com/Schera-ole/agentmon/internal/model"
)

// Source is the sample access the engine needs from the collector.
type Source interface {
	Window(name string, window time.Duration) []models.MetricSample
	Latest(name string) (models.MetricSample, bool)
}

// Engine holds the rule set and per-rule breach state machines.
//
// State is mutated only by the single evaluation driver, so the mutex exists
// for rule registration racing with evaluation, not for state itself.
type Engine struct {
	mu      sync.Mutex
	source  Source
	logger  *zap.SugaredLogger
	rules   map[string]*models.AlertRule
	order   []string
	states  map[string]*models.AlertState
	onEvent func(models.AlertEvent)
}

// NewEngine creates an engine reading samples from source.
//
// onEvent receives breach and recovery events and must not block; the caller
// is expected to hand delivery to an asynchronous dispatcher.
func NewEngine(source Source, logger *zap.SugaredLogger, onEvent func(models.AlertEvent)) *Engine {
	return &Engine{
		source:  source,
		logger:  logger,
		rules:   make(map[string]*models.AlertRule),
		states:  make(map[string]*models.AlertState),
		onEvent: onEvent,
	}
}

// AddRule registers a rule and returns its generated ID.
//
// Registration fails fast on a non-finite threshold, a negative sustained
// duration or an unknown condition, since rule configuration errors should
// surface at startup rather than during live evaluation.
func (e *Engine) AddRule(metricName string, threshold float64, condition string, sustained time.Duration, severity string) (string, error) {
	if metricName == "" {
		return "", fmt.Errorf("%w: empty metric name", internalerrors.ErrInvalidRule)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return "", fmt.Errorf("%w: threshold must be a finite number", internalerrors.ErrInvalidRule)
	}
	if sustained < 0 {
		return "", fmt.Errorf("%w: sustained duration must not be negative", internalerrors.ErrInvalidRule)
	}
	switch condition {
	case models.GreaterThan, models.LessThan, models.Equal:
	default:
		return "", fmt.Errorf("%w: %q", internalerrors.ErrUnknownCondition, condition)
	}
	switch severity {
	case "":
		severity = models.SeverityWarning
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
	default:
		return "", fmt.Errorf("%w: unknown severity %q", internalerrors.ErrInvalidRule, severity)
	}

	rule := &models.AlertRule{
		ID:         uuid.NewString(),
		MetricName: metricName,
		Threshold:  threshold,
		Condition:  condition,
		Sustained:  sustained,
		Severity:   severity,
	}

	e.mu.Lock()
	e.rules[rule.ID] = rule
	e.order = append(e.order, rule.ID)
	e.mu.Unlock()

	return rule.ID, nil
}

// Rules returns a copy of the registered rules in registration order.
func (e *Engine) Rules() []models.AlertRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	rules := make([]models.AlertRule, 0, len(e.order))
	for _, id := range e.order {
		rules = append(rules, *e.rules[id])
	}
	return rules
}

// State returns a copy of one rule's breach state.
func (e *Engine) State(ruleID string) (models.AlertState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, exists := e.states[ruleID]
	if !exists {
		return models.AlertState{}, false
	}
	return *state, true
}

// EvaluateOnce evaluates every rule against the collector.
//
// Rules are evaluated independently; a failure in one rule is logged and does
// not prevent the remaining rules in the same tick.
func (e *Engine) EvaluateOnce(ctx context.Context) {
	e.mu.Lock()
	ruleIDs := make([]string, len(e.order))
	copy(ruleIDs, e.order)
	e.mu.Unlock()

	for _, id := range ruleIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.evaluateRule(id)
	}
}

func (e *Engine) evaluateRule(id string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("evaluation of rule %s failed: %v", id, r)
		}
	}()

	e.mu.Lock()
	rule, exists := e.rules[id]
	if !exists {
		e.mu.Unlock()
		return
	}
	r := *rule
	e.mu.Unlock()

	breached, value, firstBreach := e.check(r)

	e.mu.Lock()
	state := e.states[id]
	if state == nil {
		state = &models.AlertState{}
		e.states[id] = state
	}
	var kind string
	var episodeStart time.Time
	switch {
	case breached && !state.Active:
		state.Active = true
		state.FirstBreach = firstBreach
		state.LastFired = time.Now()
		kind = models.EventBreach
		episodeStart = firstBreach
	case !breached && state.Active:
		state.Active = false
		kind = models.EventRecovery
		episodeStart = state.FirstBreach
	}
	e.mu.Unlock()

	if kind != "" {
		e.emit(r, kind, value, episodeStart)
	}
}

// check reports whether the rule is currently breached, together with the most
// recent observed value and the onset of the breach window.
//
// A zero sustained duration means "latest sample only"; otherwise every sample
// inside the window must satisfy the comparison and an empty window is not a
// breach.
func (e *Engine) check(rule models.AlertRule) (bool, float64, time.Time) {
	if rule.Sustained == 0 {
		sample, exists := e.source.Latest(rule.MetricName)
		if !exists {
			return false, 0, time.Time{}
		}
		return satisfies(rule.Condition, sample.Value, rule.Threshold), sample.Value, sample.Timestamp
	}

	samples := e.source.Window(rule.MetricName, rule.Sustained)
	if len(samples) == 0 {
		return false, 0, time.Time{}
	}
	for _, sample := range samples {
		if !satisfies(rule.Condition, sample.Value, rule.Threshold) {
			return false, samples[len(samples)-1].Value, time.Time{}
		}
	}
	return true, samples[len(samples)-1].Value, samples[0].Timestamp
}

func (e *Engine) emit(rule models.AlertRule, kind string, value float64, firstBreach time.Time) {
	event := models.AlertEvent{
		ID:          uuid.NewString(),
		RuleID:      rule.ID,
		MetricName:  rule.MetricName,
		Kind:        kind,
		Value:       value,
		Threshold:   rule.Threshold,
		Severity:    rule.Severity,
		Timestamp:   time.Now(),
		FirstBreach: firstBreach,
	}
	e.logger.Infow("alert state changed",
		"rule", rule.ID,
		"metric", rule.MetricName,
		"kind", kind,
		"value", value,
		"threshold", rule.Threshold,
	)
	if e.onEvent != nil {
		e.onEvent(event)
	}
}

func satisfies(condition string, value, threshold float64) bool {
	switch condition {
	case models.GreaterThan:
		return value > threshold
	case models.LessThan:
		return value < threshold
	case models.Equal:
		return value == threshold
	}
	return false
}
