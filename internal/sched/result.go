package sched

import (
	"fmt"
	"time"
)

// ErrKindExecution tags failures raised by a task's own unit of work.
const ErrKindExecution = "execution-error"

// ExecError is the captured failure of one task. It never aborts the run;
// it only shows up in that task's result record.
type ExecError struct {
	Kind    string // always ErrKindExecution for task faults
	TaskID  string
	Message string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: task %s: %s", e.Kind, e.TaskID, e.Message)
}

func newExecError(taskID, message string) *ExecError {
	return &ExecError{Kind: ErrKindExecution, TaskID: taskID, Message: message}
}

// Result is the recorded outcome of one executed task. Records appear in the
// report in assignment order (batch order, then intra-batch order), never in
// completion order.
type Result struct {
	TaskID string
	Batch  int        // ordinal of the batch the task ran in
	Value  any        // produced value, nil when the task failed
	Err    *ExecError // nil when the task succeeded
}

// Failed reports whether the task's unit of work failed.
func (r Result) Failed() bool { return r.Err != nil }

// Report is the complete outcome of one run: the ordered result records plus
// run metadata. RunID and Elapsed are informational; everything else is
// reproducible for identical inputs and seed.
type Report struct {
	RunID     string
	Results   []Result
	Admitted  int
	Excluded  int
	Succeeded int
	Failed    int
	Batches   int
	Elapsed   time.Duration
}

// Summary renders the run counters on one line.
func (r *Report) Summary() string {
	return fmt.Sprintf("admitted=%d excluded=%d succeeded=%d failed=%d batches=%d elapsed=%s",
		r.Admitted, r.Excluded, r.Succeeded, r.Failed, r.Batches, r.Elapsed.Round(time.Millisecond))
}
