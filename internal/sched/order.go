package sched

import (
	"hash/fnv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
)

// entry pairs a task with its run-scoped ordering state.
type entry struct {
	task *Task
	tie  uint64 // seeded tie-break key, fixed at admission
	pos  int    // input position, last-resort order between duplicate ids
}

// tieKey derives the tie-break key for a task id under the run seed. It is a
// pure function of (seed, id), so the same pair maps to the same key across
// runs, processes, and platforms; no RNG state is involved.
func tieKey(seed, id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{0}) // keep ("ab","c") and ("a","bc") apart
	h.Write([]byte(id))
	return h.Sum64()
}

// admit partitions the task set by the memory budget. A task is excluded iff
// its own MemoryMB exceeds maxMemoryMB; the decision ignores every other task
// and the concurrency cap. Exclusion is silent and permanent for the run.
func admit(tasks []*Task, maxMemoryMB int) (admissible, excluded []*Task) {
	for _, t := range tasks {
		if t.MemoryMB > maxMemoryMB {
			excluded = append(excluded, t)
			continue
		}
		admissible = append(admissible, t)
	}
	return admissible, excluded
}

// orderTasks produces the total admission order over the admissible set:
// priority descending, then the seeded tie key, then id. The result does not
// depend on the sequence tasks were supplied in.
func orderTasks(tasks []*Task, seed string) []*entry {
	set := treeset.NewWith(entryComparator)
	for i, t := range tasks {
		set.Add(&entry{task: t, tie: tieKey(seed, t.ID), pos: i})
	}

	ordered := make([]*entry, 0, set.Size())
	for it := set.Iterator(); it.Next(); {
		ordered = append(ordered, it.Value().(*entry))
	}
	return ordered
}

// entryComparator orders entries so that a < b iff a is scheduled sooner.
func entryComparator(a, b any) int {
	ea, eb := a.(*entry), b.(*entry)
	switch {
	case ea.task.Priority > eb.task.Priority:
		return -1
	case ea.task.Priority < eb.task.Priority:
		return 1
	case ea.tie < eb.tie:
		return -1
	case ea.tie > eb.tie:
		return 1
	}
	if c := strings.Compare(ea.task.ID, eb.task.ID); c != 0 {
		return c
	}
	// Duplicate ids break the caller contract; input position keeps the order
	// total so neither copy is silently dropped.
	switch {
	case ea.pos < eb.pos:
		return -1
	case ea.pos > eb.pos:
		return 1
	default:
		return 0
	}
}
