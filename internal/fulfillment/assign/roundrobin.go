// Package assign holds the worker selection policy for new pick tasks.
package assign

import (
	"sync"

	"github.com/pickerpack/fulfillment/pkg/logger"
)

// RoundRobin assigns incoming orders across a picker pool: each worker
// receives one task before any worker receives a second (idle-first),
// then assignment cycles through the pool in order. The counter spans
// the lifetime of the assigner, not a single call; the policy is
// evaluated once per order at task-creation time and never rebalances
// live work.
type RoundRobin struct {
	mu       sync.Mutex
	assigned int
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Next returns the worker from pool that the next order goes to.
// Returns 0 for an empty pool.
func (rr *RoundRobin) Next(pool []uint) uint {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if len(pool) == 0 {
		return 0
	}

	worker := pool[rr.assigned%len(pool)]
	rr.assigned++

	logger.Logger.Debug().
		Uint("worker_id", worker).
		Int("assigned_count", rr.assigned).
		Int("pool_size", len(pool)).
		Msg("Worker selected for task")
	return worker
}

// Assigned returns how many assignments this rotation has made.
func (rr *RoundRobin) Assigned() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.assigned
}
