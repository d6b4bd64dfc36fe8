package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hyperengineering/waypoint/internal/types"
)

// fakeStore is an in-memory TaskStore subset for exercising the core
// without a database.
type fakeStore struct {
	mu          sync.Mutex
	tasks       map[string]types.Task
	insertCalls int
	nextID      int
	insertErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string]types.Task)}
}

func (f *fakeStore) InsertTasks(ctx context.Context, inputs []types.TaskInput) ([]types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	out := make([]types.Task, 0, len(inputs))
	for _, in := range inputs {
		f.nextID++
		t := types.Task{ID: string(rune('a' + f.nextID)), OwnerID: in.OwnerID}
		in.Patch.Apply(&t)
		f.tasks[t.ID] = t
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) SaveTask(ctx context.Context, input types.TaskInput) (*types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[input.ID]
	if !ok {
		return nil, errors.New("not found")
	}
	input.Patch.Apply(&t)
	f.tasks[t.ID] = t
	return &t, nil
}

func (f *fakeStore) UpdateTasks(ctx context.Context, filter types.TaskFilter, patch types.TaskPatch) ([]types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Task{}
	for id, t := range f.tasks {
		if matches(t, filter) {
			patch.Apply(&t)
			f.tasks[id] = t
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Task{}
	for id, t := range f.tasks {
		if matches(t, filter) {
			delete(f.tasks, id)
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) put(t types.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
}

func (f *fakeStore) get(id string) types.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func matches(t types.Task, f types.TaskFilter) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.GroupID != "" && (t.GroupID == nil || *t.GroupID != f.GroupID) {
		return false
	}
	if f.ID != "" && t.ID != f.ID {
		return false
	}
	return true
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fptr(v float64) *float64 { return &v }
