package collector

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentIndex_UnknownAgent(t *testing.T) {
	index := NewAgentIndex()

	_, exists := index.Snapshot("ghost")
	assert.False(t, exists)
	assert.Equal(t, 0, index.Count())
}

func TestAgentIndex_ObserveTaskAndError(t *testing.T) {
	index := NewAgentIndex()

	index.ObserveTask("agent-1", "plan")
	index.ObserveTask("agent-1", "plan")
	index.ObserveTask("agent-1", "execute")
	index.ObserveError("agent-1")

	snapshot, exists := index.Snapshot("agent-1")
	require.True(t, exists)
	assert.Equal(t, int64(3), snapshot.TaskCount)
	assert.Equal(t, int64(1), snapshot.ErrorCount)
	assert.Equal(t, []string{"execute", "plan"}, snapshot.Tasks)
	assert.False(t, snapshot.LastSeen.IsZero())
}

func TestAgentIndex_ErrorCreatesRecord(t *testing.T) {
	index := NewAgentIndex()

	// An error for an unseen agent still creates its record
	index.ObserveError("agent-2")

	snapshot, exists := index.Snapshot("agent-2")
	require.True(t, exists)
	assert.Equal(t, int64(0), snapshot.TaskCount)
	assert.Equal(t, int64(1), snapshot.ErrorCount)
}

func TestAgentIndex_ConcurrentUpdates(t *testing.T) {
	index := NewAgentIndex()

	// Many tasks for the same agent finishing concurrently
	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				index.ObserveTask("agent-1", fmt.Sprintf("task-%d", w))
			}
		}(w)
	}
	wg.Wait()

	snapshot, exists := index.Snapshot("agent-1")
	require.True(t, exists)
	assert.Equal(t, int64(workers*perWorker), snapshot.TaskCount)
	assert.Len(t, snapshot.Tasks, workers)
	assert.Equal(t, 1, index.Count())
}
