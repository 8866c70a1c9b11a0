package collector

import (
	"sort"
	"sync"
	"time"
)

// agentRecord holds the per-agent counters maintained on every write.
type agentRecord struct {
	taskCount  int64
	errorCount int64
	lastSeen   time.Time
	tasks      map[string]struct{}
}

// AgentSnapshot is a read-only copy of one agent's counters.
type AgentSnapshot struct {
	TaskCount  int64
	ErrorCount int64
	LastSeen   time.Time
	Tasks      []string
}

// AgentIndex maintains per-agent counters incrementally so dashboard reads are
// O(1) instead of rescanning the sample store.
//
// Records are created on first reference and kept for the whole session.
type AgentIndex struct {
	mu     sync.RWMutex
	agents map[string]*agentRecord
}

// NewAgentIndex creates an empty index.
func NewAgentIndex() *AgentIndex {
	return &AgentIndex{agents: make(map[string]*agentRecord)}
}

func (ai *AgentIndex) record(agentID string) *agentRecord {
	rec := ai.agents[agentID]
	if rec == nil {
		rec = &agentRecord{tasks: make(map[string]struct{})}
		ai.agents[agentID] = rec
	}
	return rec
}

// ObserveTask counts one finished task execution for an agent.
func (ai *AgentIndex) ObserveTask(agentID, task string) {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	rec := ai.record(agentID)
	rec.taskCount++
	rec.lastSeen = time.Now()
	if task != "" {
		rec.tasks[task] = struct{}{}
	}
}

// ObserveError counts one error for an agent.
func (ai *AgentIndex) ObserveError(agentID string) {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	rec := ai.record(agentID)
	rec.errorCount++
	rec.lastSeen = time.Now()
}

// Snapshot returns a copy of one agent's counters.
//
// The second return value reports whether the agent has been seen at all.
func (ai *AgentIndex) Snapshot(agentID string) (AgentSnapshot, bool) {
	ai.mu.RLock()
	defer ai.mu.RUnlock()
	rec, exists := ai.agents[agentID]
	if !exists {
		return AgentSnapshot{}, false
	}

	tasks := make([]string, 0, len(rec.tasks))
	for task := range rec.tasks {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)

	return AgentSnapshot{
		TaskCount:  rec.taskCount,
		ErrorCount: rec.errorCount,
		LastSeen:   rec.lastSeen,
		Tasks:      tasks,
	}, true
}

// Count returns the number of agents seen this session.
func (ai *AgentIndex) Count() int {
	ai.mu.RLock()
	defer ai.mu.RUnlock()
	return len(ai.agents)
}
