package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"batchq/internal/job"
	"batchq/internal/sched"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Read the configuration
	path := "config.yml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg := sched.Load(path)
	fmt.Printf("Loaded config: %+v\n", cfg)

	s := sched.New(cfg)
	s.EnableHeartbeat(250 * time.Millisecond)
	events := s.StatusChannel()
	if err := s.EnableCSVLogging("batchrun.csv"); err != nil {
		log.WithError(err).Fatal("cannot open csv log")
	}
	defer s.CloseCSVLog()

	tasks := demoTasks()

	var report *sched.Report
	runDone := make(chan struct{})
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer close(runDone)
		var err error
		report, err = s.Run(ctx, tasks)
		return err
	})
	g.Go(func() error {
		// consume events until the run is over, then drain what is buffered
		for {
			select {
			case ev := <-events:
				printEvent(ev)
			case <-runDone:
				for {
					select {
					case ev := <-events:
						printEvent(ev)
					default:
						return nil
					}
				}
			}
		}
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("run failed")
	}

	fmt.Println()
	for seq, r := range report.Results {
		outcome := fmt.Sprintf("value=%v", r.Value)
		if r.Failed() {
			outcome = fmt.Sprintf("error=%q", r.Err.Message)
		}
		fmt.Printf("#%02d batch=%d task=%-14s %s\n", seq, r.Batch, r.TaskID, outcome)
	}
	fmt.Println(report.Summary())
}

// demoTasks builds a small mixed workload: CPU work, sleeps, one task that
// can never fit the memory budget, one failure, and one panic.
func demoTasks() []*sched.Task {
	return []*sched.Task{
		sched.NewTask("ingest-eu", 10, 200, job.Checksum("ingest-eu", 400000)),
		sched.NewTask("ingest-us", 10, 200, job.Checksum("ingest-us", 400000)),
		sched.NewTask("ingest-apac", 10, 200, job.Sleeper(300)),
		sched.NewTask("compact-logs", 5, 150, job.Sleeper(500)),
		sched.NewTask("rebuild-index", 5, 300, job.Sleeper(400)),
		sched.NewTask("giant-join", 8, 4096, job.Sleeper(100)), // over budget, excluded
		sched.NewTask("flaky-export", 1, 64, job.Faulty("upstream returned 503")),
		sched.NewTask("wild-plugin", 1, 64, job.Panicky("nil frame in plugin")),
		sched.NewTask("nightly-sweep", -3, 32, job.Sleeper(150)),
	}
}

// printEvent renders one status event per line with the kind centered, so the
// stream is easy to scan.
func printEvent(ev sched.StatusEvent) {
	center := func(str string, width int) string {
		spaces := int(float64(width-len(str)) / 2)
		return strings.Repeat(" ", spaces) + str + strings.Repeat(" ", width-(spaces+len(str)))
	}

	detail := ""
	switch ev.Kind {
	case sched.StatusTaskExcluded:
		detail = fmt.Sprintf("task=%s memory_mb=%d", ev.TaskID, ev.MemoryMB)
	case sched.StatusBatchStart:
		detail = fmt.Sprintf("batch=%d size=%d memory_mb=%d", ev.Batch, ev.BatchSize, ev.MemoryMB)
	case sched.StatusTaskDone:
		detail = fmt.Sprintf("batch=%d task=%s failed=%v elapsed_ms=%d", ev.Batch, ev.TaskID, ev.Failed, ev.ElapsedMS)
	case sched.StatusBatchDone:
		detail = fmt.Sprintf("batch=%d size=%d failed=%v", ev.Batch, ev.BatchSize, ev.Failed)
	case sched.StatusHeartbeat, sched.StatusRunDone:
		detail = fmt.Sprintf("completed=%d/%d", ev.Completed, ev.Total)
	}

	fmt.Printf("%s = [%s] %s\n", ev.Time.Format("Jan 02 15:04:05.000"), center(ev.Kind.String(), 12), detail)
}
