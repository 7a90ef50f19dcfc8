package sched

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func orderedIDs(entries []*entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.task.ID)
	}
	return ids
}

func TestAdmitPartitionsByMemory(t *testing.T) {
	tasks := []*Task{
		NewTask("small", 0, 100, nil),
		NewTask("exactly-budget", 0, 512, nil),
		NewTask("over-budget", 0, 513, nil),
		NewTask("free", 0, 0, nil),
	}

	admissible, excluded := admit(tasks, 512)
	require.Equal(t, []string{"small", "exactly-budget", "free"}, taskIDs(admissible))
	require.Equal(t, []string{"over-budget"}, taskIDs(excluded))
}

func TestAdmitZeroBudget(t *testing.T) {
	tasks := []*Task{
		NewTask("weightless", 0, 0, nil),
		NewTask("one-mb", 0, 1, nil),
	}

	admissible, excluded := admit(tasks, 0)
	require.Equal(t, []string{"weightless"}, taskIDs(admissible))
	require.Equal(t, []string{"one-mb"}, taskIDs(excluded))
}

func taskIDs(tasks []*Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestTieKeyIsPure(t *testing.T) {
	require.Equal(t, tieKey("alpha", "t1"), tieKey("alpha", "t1"))
	require.NotEqual(t, tieKey("alpha", "t1"), tieKey("beta", "t1"))
	require.NotEqual(t, tieKey("alpha", "t1"), tieKey("alpha", "t2"))

	// the separator keeps shifted seed/id boundaries from aliasing
	require.NotEqual(t, tieKey("ab", "c"), tieKey("a", "bc"))
}

func TestOrderTasksPriorityDescending(t *testing.T) {
	tasks := []*Task{
		NewTask("zz-low", 1, 10, nil),
		NewTask("aa-high", 9, 10, nil),
		NewTask("mm-mid", 5, 10, nil),
		NewTask("nn-negative", -2, 10, nil),
	}

	ordered := orderTasks(tasks, "alpha")
	require.Equal(t, []string{"aa-high", "mm-mid", "zz-low", "nn-negative"}, orderedIDs(ordered))
}

func TestOrderTasksIgnoresInputSequence(t *testing.T) {
	tasks := make([]*Task, 0, 8)
	for i := 0; i < 8; i++ {
		tasks = append(tasks, NewTask(fmt.Sprintf("t%d", i), 0, 10, nil))
	}
	reversed := make([]*Task, len(tasks))
	for i, task := range tasks {
		reversed[len(tasks)-1-i] = task
	}

	forward := orderedIDs(orderTasks(tasks, "alpha"))
	backward := orderedIDs(orderTasks(reversed, "alpha"))
	require.Equal(t, forward, backward)
}

func TestOrderTasksSeedSensitivity(t *testing.T) {
	tasks := make([]*Task, 0, 8)
	for i := 0; i < 8; i++ {
		tasks = append(tasks, NewTask(fmt.Sprintf("t%d", i), 0, 10, nil))
	}

	alpha := orderedIDs(orderTasks(tasks, "alpha"))
	require.Equal(t, alpha, orderedIDs(orderTasks(tasks, "alpha")))
	require.NotEqual(t, alpha, orderedIDs(orderTasks(tasks, "beta")))
}

func TestEntryComparator(t *testing.T) {
	type args struct {
		a *entry
		b *entry
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "higher priority first",
			args: args{
				a: &entry{task: &Task{ID: "a", Priority: 5}},
				b: &entry{task: &Task{ID: "b", Priority: 1}},
			},
			want: -1,
		},
		{
			name: "lower priority last",
			args: args{
				a: &entry{task: &Task{ID: "a", Priority: -1}},
				b: &entry{task: &Task{ID: "b", Priority: 0}},
			},
			want: 1,
		},
		{
			name: "tie key breaks equal priority",
			args: args{
				a: &entry{task: &Task{ID: "a", Priority: 3}, tie: 10},
				b: &entry{task: &Task{ID: "b", Priority: 3}, tie: 20},
			},
			want: -1,
		},
		{
			name: "id breaks equal tie key",
			args: args{
				a: &entry{task: &Task{ID: "a", Priority: 3}, tie: 10},
				b: &entry{task: &Task{ID: "b", Priority: 3}, tie: 10},
			},
			want: -1,
		},
		{
			name: "input position breaks duplicate id",
			args: args{
				a: &entry{task: &Task{ID: "dup", Priority: 3}, tie: 10, pos: 0},
				b: &entry{task: &Task{ID: "dup", Priority: 3}, tie: 10, pos: 1},
			},
			want: -1,
		},
		{
			name: "identical entries",
			args: args{
				a: &entry{task: &Task{ID: "dup", Priority: 3}, tie: 10, pos: 2},
				b: &entry{task: &Task{ID: "dup", Priority: 3}, tie: 10, pos: 2},
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, entryComparator(tt.args.a, tt.args.b))
			if tt.want != 0 {
				require.Equal(t, -tt.want, entryComparator(tt.args.b, tt.args.a))
			}
		})
	}
}

func TestOrderTasksKeepsDuplicateIDs(t *testing.T) {
	tasks := []*Task{
		NewTask("dup", 0, 1, nil),
		NewTask("dup", 0, 2, nil),
		NewTask("other", 0, 3, nil),
	}

	ordered := orderTasks(tasks, "alpha")
	require.Len(t, ordered, 3)

	dups := make([]*entry, 0, 2)
	for _, e := range ordered {
		if e.task.ID == "dup" {
			dups = append(dups, e)
		}
	}
	require.Len(t, dups, 2)
	// supply order decides between the two copies
	require.Equal(t, 1, dups[0].task.MemoryMB)
	require.Equal(t, 2, dups[1].task.MemoryMB)
}
