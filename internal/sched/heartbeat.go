// internal/sched/heartbeat.go

package sched

import (
	"sync/atomic"
	"time"
)

// progress counts completed tasks atomically so the heartbeat can sample a
// run without touching the scheduler's run-scoped state.
type progress struct {
	done  atomic.Int64
	total int
}

func (p *progress) complete() { p.done.Add(1) }

func (p *progress) completed() int { return int(p.done.Load()) }

// heartbeat samples a progress counter at a fixed interval and hands each
// sample to emit. It is pure observability: records never depend on it.
type heartbeat struct {
	interval time.Duration
	stop     chan struct{}
	stopped  chan struct{}
}

func newHeartbeat(interval time.Duration) *heartbeat {
	return &heartbeat{
		interval: interval,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins sampling p until Stop is called.
func (h *heartbeat) Start(p *progress, emit func(completed int)) {
	ticker := time.NewTicker(h.interval)
	go func() {
		defer ticker.Stop()
		defer close(h.stopped)
		for {
			select {
			case <-ticker.C:
				emit(p.completed())
			case <-h.stop:
				return
			}
		}
	}()
}

// Stop halts the heartbeat and waits for its goroutine to exit.
func (h *heartbeat) Stop() {
	close(h.stop)
	<-h.stopped
}
