// internal/sched/scheduler.go

package sched

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// statusBuffer is the capacity of the status event channel.
const statusBuffer = 256

// Scheduler runs task sets under hard concurrency and memory caps, producing
// one deterministic result record per admitted task. The value itself holds
// only configuration and observability plumbing; every run's working state is
// local to that Run call and discarded when its report is returned.
type Scheduler struct {
	cfg Config

	statusCh chan StatusEvent
	hbEvery  time.Duration

	// logging-related
	csvFile   *os.File
	csvWriter *csv.Writer
}

// New creates a new Scheduler instance with the given configuration. The
// configuration is validated on Run, so a bad one is reported against the
// run it would have broken.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// EnableCSVLogging opens the given file path for CSV logging of result
// records, one row per record in report order.
// Must be called before Run().
func (s *Scheduler) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv log")
	}
	w := csv.NewWriter(f)

	// write header
	w.Write([]string{"run_id", "batch", "seq", "task_id", "outcome", "error", "elapsed_ms"})
	w.Flush()
	s.csvFile = f
	s.csvWriter = w
	return nil
}

// CloseCSVLog flushes and closes the CSV log, if one was enabled.
func (s *Scheduler) CloseCSVLog() error {
	if s.csvFile == nil {
		return nil
	}
	s.csvWriter.Flush()
	err := s.csvFile.Close()
	s.csvFile, s.csvWriter = nil, nil
	return errors.Wrap(err, "close csv log")
}

// StatusChannel enables the status event stream and exposes its read-only
// side (optional consumers). Must be called before Run(). Events are dropped
// when the buffer is full rather than blocking the run, so the stream is
// best-effort; result records are the authoritative outcome.
func (s *Scheduler) StatusChannel() <-chan StatusEvent {
	if s.statusCh == nil {
		s.statusCh = make(chan StatusEvent, statusBuffer)
	}
	return s.statusCh
}

// EnableHeartbeat emits periodic StatusHeartbeat events carrying completed
// task counts while a run is in flight. Must be called before Run(), and only
// matters when the status channel is consumed.
func (s *Scheduler) EnableHeartbeat(interval time.Duration) {
	s.hbEvery = interval
}

// Run executes one scheduling run over tasks: admission filter, deterministic
// ordering, greedy batch packing, then batch-by-batch execution. Only
// configuration errors (or a context already cancelled before any task
// starts) come back as errors; task failures are captured inside the report.
//
// Identical tasks and identical config (including Seed) reproduce the same
// batch composition and the same record order, run after run.
func (s *Scheduler) Run(ctx context.Context, tasks []*Task) (*Report, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "run rejected")
	}

	start := time.Now()
	runID := uuid.NewString()
	runLog := log.WithField("run_id", runID)
	runLog.WithFields(log.Fields{
		"tasks":          len(tasks),
		"max_concurrent": s.cfg.MaxConcurrent,
		"max_memory_mb":  s.cfg.MaxMemoryMB,
	}).Info("run started")

	admissible, excluded := admit(tasks, s.cfg.MaxMemoryMB)
	for _, t := range excluded {
		runLog.WithFields(log.Fields{"task_id": t.ID, "memory_mb": t.MemoryMB}).
			Debug("task excluded, memory demand exceeds the run budget")
		s.emit(StatusEvent{
			Time:     time.Now(),
			Kind:     StatusTaskExcluded,
			RunID:    runID,
			TaskID:   t.ID,
			MemoryMB: t.MemoryMB,
		})
	}

	ordered := orderTasks(admissible, s.cfg.Seed)
	batches := buildBatches(ordered, s.cfg.MaxConcurrent, s.cfg.MaxMemoryMB)

	report := &Report{
		RunID:    runID,
		Results:  make([]Result, 0, len(ordered)),
		Admitted: len(ordered),
		Excluded: len(excluded),
		Batches:  len(batches),
	}

	prog := &progress{total: len(ordered)}
	if s.hbEvery > 0 {
		hb := newHeartbeat(s.hbEvery)
		hb.Start(prog, func(completed int) {
			s.emit(StatusEvent{
				Time:      time.Now(),
				Kind:      StatusHeartbeat,
				RunID:     runID,
				Completed: completed,
				Total:     prog.total,
			})
		})
		defer hb.Stop()
	}

	seq := 0
	for bi, b := range batches {
		runLog.WithFields(log.Fields{
			"batch":     bi,
			"size":      len(b.entries),
			"memory_mb": b.memoryMB,
		}).Debug("dispatching batch")
		s.emit(StatusEvent{
			Time:      time.Now(),
			Kind:      StatusBatchStart,
			RunID:     runID,
			Batch:     bi,
			BatchSize: len(b.entries),
			MemoryMB:  b.memoryMB,
		})

		outs := s.runBatch(ctx, runID, bi, b, prog)

		batchFailed := false
		for _, out := range outs {
			if out.res.Failed() {
				report.Failed++
				batchFailed = true
			} else {
				report.Succeeded++
			}
			report.Results = append(report.Results, out.res)
			s.logRecordCSV(runID, seq, out.res, out.elapsed)
			seq++
		}
		s.flushCSV()

		s.emit(StatusEvent{
			Time:      time.Now(),
			Kind:      StatusBatchDone,
			RunID:     runID,
			Batch:     bi,
			BatchSize: len(b.entries),
			Failed:    batchFailed,
		})
	}

	report.Elapsed = time.Since(start)
	runLog.WithFields(log.Fields{
		"admitted":  report.Admitted,
		"excluded":  report.Excluded,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"batches":   report.Batches,
	}).Info("run finished")
	s.emit(StatusEvent{
		Time:      time.Now(),
		Kind:      StatusRunDone,
		RunID:     runID,
		Completed: prog.completed(),
		Total:     prog.total,
	})

	return report, nil
}

// outcome pairs a record with its measured execution time for logging.
type outcome struct {
	res     Result
	elapsed time.Duration
}

// runBatch runs every member of b concurrently and returns the outcomes in
// assignment order. Each worker writes only its own slot, so the barrier is
// the only synchronization the buffer needs.
func (s *Scheduler) runBatch(ctx context.Context, runID string, bi int, b *batch, prog *progress) []outcome {
	outs := make([]outcome, len(b.entries))

	var wg sync.WaitGroup
	for i, e := range b.entries {
		wg.Add(1)
		go func(i int, t *Task) {
			defer wg.Done()
			outs[i] = runTask(ctx, bi, t)
			prog.complete()
			s.emit(StatusEvent{
				Time:      time.Now(),
				Kind:      StatusTaskDone,
				RunID:     runID,
				TaskID:    t.ID,
				Batch:     bi,
				Failed:    outs[i].res.Failed(),
				ElapsedMS: outs[i].elapsed.Milliseconds(),
			})
		}(i, e.task)
	}
	wg.Wait()

	return outs
}

// runTask invokes one unit of work, converting error returns and panics into
// a captured failure record. No task fault crosses this boundary.
func runTask(ctx context.Context, bi int, t *Task) (out outcome) {
	start := time.Now()
	defer func() {
		out.elapsed = time.Since(start)
		if r := recover(); r != nil {
			out.res = Result{
				TaskID: t.ID,
				Batch:  bi,
				Err:    newExecError(t.ID, fmt.Sprintf("panic: %v", r)),
			}
		}
	}()

	v, err := t.Run(ctx)
	if err != nil {
		out.res = Result{TaskID: t.ID, Batch: bi, Err: newExecError(t.ID, err.Error())}
		return out
	}
	out.res = Result{TaskID: t.ID, Batch: bi, Value: v}
	return out
}

// emit sends an event to the status channel if one was requested. A full
// buffer drops the event instead of stalling the run.
func (s *Scheduler) emit(ev StatusEvent) {
	if s.statusCh == nil {
		return
	}
	select {
	case s.statusCh <- ev:
	default:
		log.WithFields(log.Fields{"kind": ev.Kind.String(), "run_id": ev.RunID}).
			Warn("status buffer full, dropping event")
	}
}

func (s *Scheduler) logRecordCSV(runID string, seq int, r Result, elapsed time.Duration) {
	if s.csvWriter == nil {
		return
	}
	outcome, errMsg := "ok", ""
	if r.Failed() {
		outcome, errMsg = "failed", r.Err.Message
	}
	s.csvWriter.Write([]string{
		runID,
		strconv.Itoa(r.Batch),
		strconv.Itoa(seq),
		r.TaskID,
		outcome,
		errMsg,
		strconv.FormatInt(elapsed.Milliseconds(), 10),
	})
}

func (s *Scheduler) flushCSV() {
	if s.csvWriter == nil {
		return
	}
	s.csvWriter.Flush()
	if err := s.csvWriter.Error(); err != nil {
		log.WithError(err).Warn("csv log write failed")
	}
}
