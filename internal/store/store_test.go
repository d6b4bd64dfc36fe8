package store

import (
	"context"

	"github.com/hyperengineering/waypoint/internal/types"
)

// mockStore is a compile-time check that the Store interface can be implemented.
type mockStore struct{}

var _ Store = (*mockStore)(nil)
var _ Store = (*SQLiteStore)(nil)

func (m *mockStore) FindTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error) {
	return nil, nil
}
func (m *mockStore) SaveTask(ctx context.Context, input types.TaskInput) (*types.Task, error) {
	return nil, nil
}
func (m *mockStore) InsertTasks(ctx context.Context, inputs []types.TaskInput) ([]types.Task, error) {
	return nil, nil
}
func (m *mockStore) UpdateTasks(ctx context.Context, filter types.TaskFilter, patch types.TaskPatch) ([]types.Task, error) {
	return nil, nil
}
func (m *mockStore) DeleteTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error) {
	return nil, nil
}
func (m *mockStore) FindGoals(ctx context.Context, filter types.GoalFilter) ([]types.Goal, error) {
	return nil, nil
}
func (m *mockStore) SaveGoal(ctx context.Context, input types.GoalInput) (*types.Goal, error) {
	return nil, nil
}
func (m *mockStore) InsertGoals(ctx context.Context, inputs []types.GoalInput) ([]types.Goal, error) {
	return nil, nil
}
func (m *mockStore) DeleteGoals(ctx context.Context, filter types.GoalFilter) ([]types.Goal, error) {
	return nil, nil
}
func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	return nil, nil
}
func (m *mockStore) Close() error {
	return nil
}
