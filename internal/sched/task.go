// Package sched implements a deterministic, resource-constrained batch
// scheduler: it filters a task set against a memory budget, orders the
// admissible tasks reproducibly, packs them into concurrency- and
// memory-bounded batches, and executes each batch while capturing per-task
// outcomes in a fixed order.
package sched

import "context"

// Task describes one schedulable unit of work. Callers own the descriptor
// and must not mutate it while a run is in flight.
type Task struct {
	ID       string                                 // unique within a run (caller contract, not enforced)
	Priority int                                    // higher value is scheduled earlier
	MemoryMB int                                    // logical memory cost, non-negative (caller contract)
	Run      func(ctx context.Context) (any, error) // unit of work (any kind, e.g. HTTP call, DB txn stub, etc.)
}

// NewTask builds a task descriptor around the given unit of work.
func NewTask(id string, priority, memoryMB int, work func(ctx context.Context) (any, error)) *Task {
	return &Task{
		ID:       id,
		Priority: priority,
		MemoryMB: memoryMB,
		Run:      work,
	}
}
