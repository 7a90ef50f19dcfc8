// internal/sched/runEvent.go

package sched

import (
	"time"
)

// StatusKind represents the type of scheduler status event
type StatusKind int

const (
	StatusTaskExcluded StatusKind = iota
	StatusBatchStart
	StatusTaskDone
	StatusBatchDone
	StatusHeartbeat
	StatusRunDone
)

// StatusEvent is emitted on key scheduling actions and on heartbeats. The
// stream is observational only: event arrival order inside a batch follows
// real completion timing, while result records keep assignment order.
type StatusEvent struct {
	Time      time.Time
	Kind      StatusKind
	RunID     string
	TaskID    string
	Batch     int
	BatchSize int
	MemoryMB  int
	Failed    bool
	ElapsedMS int64
	Completed int
	Total     int
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusTaskExcluded:
		return "Excluded"
	case StatusBatchStart:
		return "BatchStart"
	case StatusTaskDone:
		return "TaskDone"
	case StatusBatchDone:
		return "BatchDone"
	case StatusHeartbeat:
		return "Heartbeat"
	case StatusRunDone:
		return "RunDone"
	default:
		return "Unknown"
	}
}
