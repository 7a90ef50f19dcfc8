package sched

// batch is one group of tasks cleared to run concurrently. Its accumulator
// fields are owned by buildBatches for the duration of one run.
type batch struct {
	entries  []*entry
	memoryMB int // summed MemoryMB of the members
}

// buildBatches packs the ordered admissible list in a single forward pass:
// a task joins the current batch while both caps hold, otherwise the batch is
// frozen and a new one opens with that task. Greedy first-fit: no task is
// skipped or reordered for tighter packing, so the partition is a pure
// function of the ordered list and the caps, at O(n) cost.
//
// A task admissible on its own but larger than the current batch's remaining
// capacity forces a new batch; a task filling a batch alone is valid as long
// as it satisfies both caps (admission guarantees the memory side, and
// maxConcurrent >= 1 guarantees the count side).
func buildBatches(ordered []*entry, maxConcurrent, maxMemoryMB int) []*batch {
	if len(ordered) == 0 {
		return nil
	}

	batches := make([]*batch, 0, 1)
	cur := &batch{}
	for _, e := range ordered {
		overCount := len(cur.entries)+1 > maxConcurrent
		overMemory := cur.memoryMB+e.task.MemoryMB > maxMemoryMB
		if len(cur.entries) > 0 && (overCount || overMemory) {
			batches = append(batches, cur)
			cur = &batch{}
		}
		cur.entries = append(cur.entries, e)
		cur.memoryMB += e.task.MemoryMB
	}
	return append(batches, cur)
}
