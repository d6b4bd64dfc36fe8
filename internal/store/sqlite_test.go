package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperengineering/waypoint/internal/types"
	_ "modernc.org/sqlite"
)

// newTestStore creates a fresh SQLiteStore backed by a temp file.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func taskInput(owner, name string, planned time.Time) types.TaskInput {
	return types.TaskInput{
		OwnerID: owner,
		Patch:   types.TaskPatch{Name: &name, PlannedDate: &planned},
	}
}

func mustSaveGoal(t *testing.T, s *SQLiteStore, owner, name string) *types.Goal {
	t.Helper()
	g, err := s.SaveGoal(context.Background(), types.GoalInput{
		OwnerID: owner,
		Patch:   types.GoalPatch{Name: &name},
	})
	if err != nil {
		t.Fatalf("SaveGoal(%s) failed: %v", name, err)
	}
	return g
}

func TestStore_NewSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
}

// --- Tasks ---

func TestSaveTask_Insert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := taskInput("owner-1", "Run 5k", date(2024, 1, 1))
	in.Patch.Target = types.Some(10.0)

	task, err := s.SaveTask(ctx, in)
	if err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}
	if task.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if task.Name != "Run 5k" {
		t.Errorf("Name = %q, want Run 5k", task.Name)
	}
	if task.Target == nil || *task.Target != 10 {
		t.Errorf("Target = %v, want 10", task.Target)
	}
	if task.PerformanceHistory == nil || len(task.PerformanceHistory) != 0 {
		t.Errorf("PerformanceHistory = %v, want empty non-nil", task.PerformanceHistory)
	}

	found, err := s.FindTasks(ctx, types.TaskFilter{ID: task.ID})
	if err != nil {
		t.Fatalf("FindTasks failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d tasks, want 1", len(found))
	}
	if !found[0].PlannedDate.Equal(date(2024, 1, 1)) {
		t.Errorf("PlannedDate = %v, want 2024-01-01", found[0].PlannedDate)
	}
	if found[0].GroupID != nil {
		t.Errorf("GroupID = %v, want nil", *found[0].GroupID)
	}
}

func TestSaveTask_MergeKeepsUntouchedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := taskInput("owner-1", "Read", date(2024, 3, 1))
	in.Patch.Description = types.Some("20 pages")
	created, err := s.SaveTask(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.SaveTask(ctx, types.TaskInput{
		ID:      created.ID,
		OwnerID: "owner-1",
		Patch:   types.TaskPatch{Performance: types.Some(12.5)},
	})
	if err != nil {
		t.Fatalf("SaveTask merge failed: %v", err)
	}
	if updated.Performance == nil || *updated.Performance != 12.5 {
		t.Errorf("Performance = %v, want 12.5", updated.Performance)
	}
	if updated.Description == nil || *updated.Description != "20 pages" {
		t.Errorf("Description = %v, want preserved", updated.Description)
	}
	if updated.Name != "Read" {
		t.Errorf("Name = %q, want preserved", updated.Name)
	}
}

func TestSaveTask_NullClearsField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := taskInput("owner-1", "Read", date(2024, 3, 1))
	in.Patch.Target = types.Some(3.0)
	created, err := s.SaveTask(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.SaveTask(ctx, types.TaskInput{
		ID:      created.ID,
		OwnerID: "owner-1",
		Patch:   types.TaskPatch{Target: types.Null[float64]()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Target != nil {
		t.Errorf("Target = %v, want nil", *updated.Target)
	}
}

func TestSaveTask_UnknownIDNotFound(t *testing.T) {
	s := newTestStore(t)

	name := "x"
	_, err := s.SaveTask(context.Background(), types.TaskInput{
		ID:      "01HGW2N5E56F2ZXQWRR78YQRZ8",
		OwnerID: "owner-1",
		Patch:   types.TaskPatch{Name: &name},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveTask_OtherOwnerNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.SaveTask(ctx, taskInput("owner-1", "Mine", date(2024, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	name := "stolen"
	_, err = s.SaveTask(ctx, types.TaskInput{
		ID:      created.ID,
		OwnerID: "owner-2",
		Patch:   types.TaskPatch{Name: &name},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveTask_UnknownGoal(t *testing.T) {
	s := newTestStore(t)

	in := taskInput("owner-1", "x", date(2024, 1, 1))
	in.Patch.GoalID = types.Some("01HGW2N5E56F2ZXQWRR78YQRZ8")

	_, err := s.SaveTask(context.Background(), in)
	if !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("err = %v, want ErrGoalNotFound", err)
	}
}

func TestSaveTask_GoalOfOtherOwnerRejected(t *testing.T) {
	s := newTestStore(t)
	goal := mustSaveGoal(t, s, "owner-2", "Not yours")

	in := taskInput("owner-1", "x", date(2024, 1, 1))
	in.Patch.GoalID = types.Some(goal.ID)

	_, err := s.SaveTask(context.Background(), in)
	if !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("err = %v, want ErrGoalNotFound", err)
	}
}

func TestSaveTask_HistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.SaveTask(ctx, taskInput("owner-1", "Pushups", date(2024, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	ts1 := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	ts2 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	history := []types.PerformanceSample{{Value: 12, Timestamp: ts1}, {Value: 5, Timestamp: ts2}}

	_, err = s.SaveTask(ctx, types.TaskInput{
		ID:      created.ID,
		OwnerID: "owner-1",
		Patch:   types.TaskPatch{PerformanceHistory: &history},
	})
	if err != nil {
		t.Fatal(err)
	}

	found, err := s.FindTasks(ctx, types.TaskFilter{ID: created.ID})
	if err != nil {
		t.Fatal(err)
	}
	got := found[0].PerformanceHistory
	if len(got) != 2 {
		t.Fatalf("history len = %d, want 2", len(got))
	}
	if got[0].Value != 12 || !got[0].Timestamp.Equal(ts1) {
		t.Errorf("history[0] = %+v, want 12 at %v", got[0], ts1)
	}
	if got[1].Value != 5 || !got[1].Timestamp.Equal(ts2) {
		t.Errorf("history[1] = %+v, want 5 at %v", got[1], ts2)
	}
}

func TestFindTasks_OrderedByPlannedDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []time.Time{date(2024, 1, 15), date(2024, 1, 1), date(2024, 1, 8)} {
		if _, err := s.SaveTask(ctx, taskInput("owner-1", "t", d)); err != nil {
			t.Fatal(err)
		}
	}

	found, err := s.FindTasks(ctx, types.TaskFilter{OwnerID: "owner-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 3 {
		t.Fatalf("found %d tasks, want 3", len(found))
	}
	for i := 1; i < len(found); i++ {
		if found[i].PlannedDate.Before(found[i-1].PlannedDate) {
			t.Errorf("tasks not ordered: %v before %v", found[i-1].PlannedDate, found[i].PlannedDate)
		}
	}
}

func TestFindTasks_UnscopedFilterRejected(t *testing.T) {
	s := newTestStore(t)
	_, err := s.FindTasks(context.Background(), types.TaskFilter{})
	if !errors.Is(err, ErrUnscopedFilter) {
		t.Errorf("err = %v, want ErrUnscopedFilter", err)
	}
}

func TestInsertTasks_SharesGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	group := "8a0c894d-a9bd-4c9e-9f8f-b52e28009c6e"
	var inputs []types.TaskInput
	for i := 0; i < 4; i++ {
		in := taskInput("owner-1", "Weekly", date(2024, 1, 1).AddDate(0, 0, 7*i))
		in.Patch.GroupID = &group
		inputs = append(inputs, in)
	}

	tasks, err := s.InsertTasks(ctx, inputs)
	if err != nil {
		t.Fatalf("InsertTasks failed: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("inserted %d, want 4", len(tasks))
	}

	found, err := s.FindTasks(ctx, types.TaskFilter{OwnerID: "owner-1", GroupID: group})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 4 {
		t.Errorf("found %d group members, want 4", len(found))
	}
}

func TestInsertTasks_AllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	good := taskInput("owner-1", "ok", date(2024, 1, 1))
	bad := taskInput("owner-1", "bad", date(2024, 1, 8))
	bad.Patch.GoalID = types.Some("01HGW2N5E56F2ZXQWRR78YQRZ8")

	_, err := s.InsertTasks(ctx, []types.TaskInput{good, bad})
	if !errors.Is(err, ErrGoalNotFound) {
		t.Fatalf("err = %v, want ErrGoalNotFound", err)
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TaskCount != 0 {
		t.Errorf("TaskCount = %d, want 0 after rolled back batch", stats.TaskCount)
	}
}

func TestInsertTasks_Empty(t *testing.T) {
	s := newTestStore(t)
	tasks, err := s.InsertTasks(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("tasks = %v, want empty non-nil", tasks)
	}
}

func TestUpdateTasks_OnlyMatchingGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	groupA, groupB := "group-a", "group-b"
	for _, g := range []*string{&groupA, &groupA, &groupB} {
		in := taskInput("owner-1", "orig", date(2024, 1, 1))
		in.Patch.GroupID = g
		if _, err := s.SaveTask(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	renamed := "renamed"
	updated, err := s.UpdateTasks(ctx,
		types.TaskFilter{OwnerID: "owner-1", GroupID: groupA},
		types.TaskPatch{Name: &renamed, Description: types.Some("shared")},
	)
	if err != nil {
		t.Fatalf("UpdateTasks failed: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated %d, want 2", len(updated))
	}
	for _, task := range updated {
		if task.Name != "renamed" || task.Description == nil || *task.Description != "shared" {
			t.Errorf("task = %+v, want renamed/shared", task)
		}
	}

	others, err := s.FindTasks(ctx, types.TaskFilter{GroupID: groupB})
	if err != nil {
		t.Fatal(err)
	}
	if others[0].Name != "orig" {
		t.Errorf("group-b task renamed to %q, want untouched", others[0].Name)
	}
}

func TestUpdateTasks_NoMatch(t *testing.T) {
	s := newTestStore(t)
	renamed := "x"
	updated, err := s.UpdateTasks(context.Background(),
		types.TaskFilter{OwnerID: "owner-1", GroupID: "missing"},
		types.TaskPatch{Name: &renamed},
	)
	if err != nil {
		t.Fatal(err)
	}
	if updated == nil || len(updated) != 0 {
		t.Errorf("updated = %v, want empty non-nil", updated)
	}
}

func TestDeleteTasks_ReturnsRemoved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	group := "group-a"
	for i := 0; i < 3; i++ {
		in := taskInput("owner-1", "t", date(2024, 1, 1).AddDate(0, 0, 7*i))
		in.Patch.GroupID = &group
		if _, err := s.SaveTask(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.SaveTask(ctx, taskInput("owner-1", "loner", date(2024, 1, 1))); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteTasks(ctx, types.TaskFilter{OwnerID: "owner-1", GroupID: group})
	if err != nil {
		t.Fatalf("DeleteTasks failed: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("removed %d, want 3", len(removed))
	}

	left, err := s.FindTasks(ctx, types.TaskFilter{OwnerID: "owner-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].Name != "loner" {
		t.Errorf("remaining = %+v, want only loner", left)
	}
}

func TestDeleteTasks_NoMatch(t *testing.T) {
	s := newTestStore(t)
	removed, err := s.DeleteTasks(context.Background(), types.TaskFilter{OwnerID: "owner-1", GroupID: "nope"})
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}

// --- Goals ---

func TestSaveGoal_InsertAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	goal := mustSaveGoal(t, s, "owner-1", "Fitness")
	if goal.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	planned := date(2024, 12, 31)
	updated, err := s.SaveGoal(ctx, types.GoalInput{
		ID:      goal.ID,
		OwnerID: "owner-1",
		Patch:   types.GoalPatch{PlannedDate: types.Some(planned), Description: types.Some("get fit")},
	})
	if err != nil {
		t.Fatalf("SaveGoal update failed: %v", err)
	}
	if updated.Name != "Fitness" {
		t.Errorf("Name = %q, want preserved", updated.Name)
	}
	if updated.PlannedDate == nil || !updated.PlannedDate.Equal(planned) {
		t.Errorf("PlannedDate = %v, want %v", updated.PlannedDate, planned)
	}
}

func TestSaveGoal_UnknownParent(t *testing.T) {
	s := newTestStore(t)
	name := "child"
	_, err := s.SaveGoal(context.Background(), types.GoalInput{
		OwnerID: "owner-1",
		Patch:   types.GoalPatch{Name: &name, ParentGoalID: types.Some("01HGW2N5E56F2ZXQWRR78YQRZ8")},
	})
	if !errors.Is(err, ErrGoalNotFound) {
		t.Errorf("err = %v, want ErrGoalNotFound", err)
	}
}

func TestSaveGoal_CycleRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := mustSaveGoal(t, s, "owner-1", "root")
	name := "child"
	child, err := s.SaveGoal(ctx, types.GoalInput{
		OwnerID: "owner-1",
		Patch:   types.GoalPatch{Name: &name, ParentGoalID: types.Some(root.ID)},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		id     string
		parent string
	}{
		{"self", root.ID, root.ID},
		{"via child", root.ID, child.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SaveGoal(ctx, types.GoalInput{
				ID:      tt.id,
				OwnerID: "owner-1",
				Patch:   types.GoalPatch{ParentGoalID: types.Some(tt.parent)},
			})
			if !errors.Is(err, ErrGoalCycle) {
				t.Errorf("err = %v, want ErrGoalCycle", err)
			}
		})
	}
}

func TestDeleteGoals_ClearsReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	parent := mustSaveGoal(t, s, "owner-1", "parent")
	name := "child"
	child, err := s.SaveGoal(ctx, types.GoalInput{
		OwnerID: "owner-1",
		Patch:   types.GoalPatch{Name: &name, ParentGoalID: types.Some(parent.ID)},
	})
	if err != nil {
		t.Fatal(err)
	}

	in := taskInput("owner-1", "linked", date(2024, 1, 1))
	in.Patch.GoalID = types.Some(parent.ID)
	task, err := s.SaveTask(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteGoals(ctx, types.GoalFilter{ID: parent.ID, OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("DeleteGoals failed: %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("removed %d, want 1", len(removed))
	}

	tasks, err := s.FindTasks(ctx, types.TaskFilter{ID: task.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].GoalID != nil {
		t.Errorf("task after goal delete = %+v, want kept with nil goalId", tasks)
	}

	goals, err := s.FindGoals(ctx, types.GoalFilter{ID: child.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 1 || goals[0].ParentGoalID != nil {
		t.Errorf("child after parent delete = %+v, want kept with nil parent", goals)
	}
}

func TestFindGoals_Paging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		mustSaveGoal(t, s, "owner-1", name)
	}
	mustSaveGoal(t, s, "owner-2", "other")

	names := func(goals []types.Goal) []string {
		out := make([]string, len(goals))
		for i, g := range goals {
			out[i] = g.Name
		}
		return out
	}

	tests := []struct {
		name   string
		limit  int
		offset int
		want   []string
	}{
		{"unbounded", 0, 0, []string{"a", "b", "c", "d", "e"}},
		{"limit only", 2, 0, []string{"a", "b"}},
		{"limit and offset", 2, 2, []string{"c", "d"}},
		{"offset only", 0, 3, []string{"d", "e"}},
		{"offset past end", 10, 5, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goals, err := s.FindGoals(ctx, types.GoalFilter{OwnerID: "owner-1", Limit: tt.limit, Offset: tt.offset})
			if err != nil {
				t.Fatalf("FindGoals failed: %v", err)
			}
			got := names(goals)
			if len(got) != len(tt.want) {
				t.Fatalf("goals = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("goals = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestDeleteGoals_IgnoresPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		mustSaveGoal(t, s, "owner-1", name)
	}

	removed, err := s.DeleteGoals(ctx, types.GoalFilter{OwnerID: "owner-1", Limit: 1})
	if err != nil {
		t.Fatalf("DeleteGoals failed: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("removed %d, want 3", len(removed))
	}
}

func TestInsertGoals_ParentWithinBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := mustSaveGoal(t, s, "owner-1", "root")
	name := "leaf"
	goals, err := s.InsertGoals(ctx, []types.GoalInput{
		{OwnerID: "owner-1", Patch: types.GoalPatch{Name: &name, ParentGoalID: types.Some(root.ID)}},
	})
	if err != nil {
		t.Fatalf("InsertGoals failed: %v", err)
	}
	if goals[0].ParentGoalID == nil || *goals[0].ParentGoalID != root.ID {
		t.Errorf("ParentGoalID = %v, want %s", goals[0].ParentGoalID, root.ID)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSaveGoal(t, s, "owner-1", "g")
	for i := 0; i < 2; i++ {
		if _, err := s.SaveTask(ctx, taskInput("owner-1", "t", date(2024, 1, 1))); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TaskCount != 2 || stats.GoalCount != 1 {
		t.Errorf("stats = %+v, want 2 tasks 1 goal", stats)
	}
}

func TestWhere(t *testing.T) {
	clause, args, err := where("id", "", "owner_id", "o1", "group_id", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if clause != " WHERE owner_id = ? AND group_id = ?" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 2 || args[0] != "o1" || args[1] != "g1" {
		t.Errorf("args = %v", args)
	}

	if _, _, err := where("id", ""); !errors.Is(err, ErrUnscopedFilter) {
		t.Errorf("err = %v, want ErrUnscopedFilter", err)
	}
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	earlier := formatTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	later := formatTime(time.Date(2024, 1, 1, 9, 0, 0, 500, time.UTC))
	if !(earlier < later) {
		t.Errorf("%q should sort before %q", earlier, later)
	}
}
