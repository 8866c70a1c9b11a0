// Package collector implements the in-memory metric store of the monitoring engine.
//
// Samples are partitioned per metric name so that concurrent producers writing
// unrelated metrics never contend on one lock. Series are append-only; samples
// leave the store only through retention pruning.
package collector

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// series holds the time-ordered samples of one metric name.
type series struct {
	mu      sync.RWMutex
	samples []models.MetricSample
}

// Collector is a concurrent-safe append-only store of metric samples.
type Collector struct {
	// mu guards the series map, not the samples themselves
	mu     sync.RWMutex
	series map[string]*series
	logger *zap.SugaredLogger
}

// New creates an empty collector.
func New(logger *zap.SugaredLogger) *Collector {
	return &Collector{
		series: make(map[string]*series),
		logger: logger,
	}
}

// getSeries returns the series for name, creating it when create is set.
func (c *Collector) getSeries(name string, create bool) *series {
	c.mu.RLock()
	s := c.series[name]
	c.mu.RUnlock()
	if s != nil || !create {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s = c.series[name]; s == nil {
		s = &series{}
		c.series[name] = s
	}
	return s
}

// Record appends a sample with the current timestamp.
//
// Unknown metric names are created lazily. Non-finite values are clamped to
// zero and logged instead of being rejected, so a telemetry problem never
// fails the caller's task.
func (c *Collector) Record(name string, value float64, tags map[string]string) {
	if name == "" {
		c.logger.Info("dropping sample with empty metric name")
		return
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		c.logger.Infof("clamping non-finite value for metric %s", name)
		value = 0
	}

	s := c.getSeries(name, true)
	s.mu.Lock()
	// Timestamp is taken under the series lock so samples stay time-ordered.
	s.samples = append(s.samples, models.MetricSample{
		Name:      name,
		Value:     value,
		Timestamp: time.Now(),
		Tags:      tags,
	})
	s.mu.Unlock()
}

// Window returns a copy of the samples recorded within the last window.
//
// The scan is bounded by the window: a binary search finds the cut point, so
// query cost does not grow with total historical volume.
func (c *Collector) Window(name string, window time.Duration) []models.MetricSample {
	s := c.getSeries(name, false)
	if s == nil {
		return nil
	}
	cutoff := time.Now().Add(-window)

	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.Search(len(s.samples), func(i int) bool {
		return !s.samples[i].Timestamp.Before(cutoff)
	})
	if i == len(s.samples) {
		return nil
	}
	out := make([]models.MetricSample, len(s.samples)-i)
	copy(out, s.samples[i:])
	return out
}

// Latest returns the most recent sample of a metric.
func (c *Collector) Latest(name string) (models.MetricSample, bool) {
	s := c.getSeries(name, false)
	if s == nil {
		return models.MetricSample{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return models.MetricSample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Stats computes windowed statistics for one metric.
//
// An unknown metric or an empty window yields a zero-valued result, never an
// error.
func (c *Collector) Stats(name string, window time.Duration) models.MetricStats {
	samples := c.Window(name, window)
	if len(samples) == 0 {
		return models.MetricStats{}
	}

	stats := models.MetricStats{
		Min:   samples[0].Value,
		Max:   samples[0].Value,
		Count: len(samples),
	}
	sum := 0.0
	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
		sum += sample.Value
		if sample.Value < stats.Min {
			stats.Min = sample.Value
		}
		if sample.Value > stats.Max {
			stats.Max = sample.Value
		}
	}
	stats.Avg = sum / float64(len(samples))

	sort.Float64s(values)
	idx := int(math.Ceil(0.95*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	stats.P95 = values[idx]

	return stats
}

// Prune removes samples older than the retention boundary from every series.
//
// It is meant to be driven by the scheduler, not called on the write path.
// It returns the number of removed samples.
func (c *Collector) Prune(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	c.mu.RLock()
	shards := make([]*series, 0, len(c.series))
	for _, s := range c.series {
		shards = append(shards, s)
	}
	c.mu.RUnlock()

	removed := 0
	for _, s := range shards {
		s.mu.Lock()
		i := sort.Search(len(s.samples), func(i int) bool {
			return !s.samples[i].Timestamp.Before(cutoff)
		})
		if i > 0 {
			// Reallocate so the pruned prefix can be collected.
			kept := make([]models.MetricSample, len(s.samples)-i)
			copy(kept, s.samples[i:])
			s.samples = kept
			removed += i
		}
		s.mu.Unlock()
	}
	return removed
}

// Names returns the registered metric names in sorted order.
func (c *Collector) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}
