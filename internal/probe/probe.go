// Package probe samples host resource usage in the background and feeds the
// samples into the metric store under fixed, well-known names.
package probe

import (
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"go.uber.org/zap"

	"github.com/Schera-ole/agentmon/internal/config"
)

// Recorder is the write access the probe needs from the collector.
type Recorder interface {
	Record(name string, value float64, tags map[string]string)
}

// SystemProbe periodically reads CPU, memory, disk and network usage.
//
// The probe is either stopped or running; Start while running is a no-op and
// Stop waits for an in-flight sample to finish.
type SystemProbe struct {
	recorder Recorder
	logger   *zap.SugaredLogger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	// readFn is swapped in tests to avoid depending on the host
	readFn func() (map[string]float64, error)

	diskPath string
}

// New creates a probe writing into recorder.
func New(recorder Recorder, logger *zap.SugaredLogger) *SystemProbe {
	p := &SystemProbe{
		recorder: recorder,
		logger:   logger,
		diskPath: "/",
	}
	p.readFn = p.readSystem
	return p
}

// Start begins periodic sampling. Calling Start while the probe is already
// running is a no-op.
func (p *SystemProbe) Start(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.wg.Add(1)
	go p.loop(interval, p.stopChan)
}

// Stop cancels future sampling and waits for a sample already in progress.
func (p *SystemProbe) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopChan)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *SystemProbe) loop(interval time.Duration, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First sample right away so dashboards are not empty for a full interval.
	p.sample()
	for {
		select {
		case <-ticker.C:
			p.sample()
		case <-stop:
			return
		}
	}
}

// sample reads the host once and records the values.
//
// A failed read is logged and skipped; the next tick proceeds unaffected.
func (p *SystemProbe) sample() {
	values, err := p.readFn()
	if err != nil {
		p.logger.Errorf("system probe sample failed: %v", err)
		return
	}
	for name, value := range values {
		p.recorder.Record(name, value, nil)
	}
}

func (p *SystemProbe) readSystem() (map[string]float64, error) {
	values := make(map[string]float64)

	cpuPercents, err := cpu.Percent(0, false)
	if err != nil {
		return nil, fmt.Errorf("error getting cpu info: %w", err)
	}
	if len(cpuPercents) > 0 {
		values[config.SystemCPUPercent] = cpuPercents[0]
	}

	memory, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("error getting memory stats: %w", err)
	}
	values[config.SystemMemoryPercent] = memory.UsedPercent

	usage, err := disk.Usage(p.diskPath)
	if err != nil {
		return nil, fmt.Errorf("error getting disk usage: %w", err)
	}
	values[config.SystemDiskPercent] = usage.UsedPercent

	counters, err := net.IOCounters(false)
	if err != nil {
		return nil, fmt.Errorf("error getting network counters: %w", err)
	}
	if len(counters) > 0 {
		values[config.SystemNetBytesSent] = float64(counters[0].BytesSent)
		values[config.SystemNetBytesRecv] = float64(counters[0].BytesRecv)
	}

	return values, nil
}
