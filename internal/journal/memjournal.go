package journal

import (
	"context"
	"sync"

	models "github.com/Schera-ole/agentmon/internal/model"
)

// MemJournal implements the Journal interface using a bounded in-memory ring.
//
// When the ring is full the oldest event is dropped, keeping memory use fixed
// for the lifetime of the process.
type MemJournal struct {
	mu       sync.RWMutex
	events   []models.AlertEvent
	capacity int
}

// NewMemJournal creates a journal holding at most capacity events.
func NewMemJournal(capacity int) *MemJournal {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemJournal{
		events:   make([]models.AlertEvent, 0, capacity),
		capacity: capacity,
	}
}

// Append stores one alert event, evicting the oldest when full.
func (mj *MemJournal) Append(ctx context.Context, event models.AlertEvent) error {
	mj.mu.Lock()
	defer mj.mu.Unlock()
	if len(mj.events) == mj.capacity {
		copy(mj.events, mj.events[1:])
		mj.events = mj.events[:mj.capacity-1]
	}
	mj.events = append(mj.events, event)
	return nil
}

// Recent returns up to limit events, newest first.
func (mj *MemJournal) Recent(ctx context.Context, limit int) ([]models.AlertEvent, error) {
	mj.mu.RLock()
	defer mj.mu.RUnlock()
	if limit <= 0 || limit > len(mj.events) {
		limit = len(mj.events)
	}
	result := make([]models.AlertEvent, limit)
	for i := 0; i < limit; i++ {
		result[i] = mj.events[len(mj.events)-1-i]
	}
	return result, nil
}

// Ping always succeeds since there are no external dependencies.
func (mj *MemJournal) Ping(ctx context.Context) error {
	return nil
}

// Close releases any resources held by the memory journal.
func (mj *MemJournal) Close() error {
	return nil
}
