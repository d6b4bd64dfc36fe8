package store

import (
	"context"

	"github.com/hyperengineering/waypoint/internal/types"
)

// TaskStore is the entity-store capability for tasks.
//
// SaveTask inserts when the input has no ID and otherwise merges the patch
// into the existing record. InsertTasks, UpdateTasks and DeleteTasks are each
// atomic: either every matched record is written or none is.
type TaskStore interface {
	FindTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error)
	SaveTask(ctx context.Context, input types.TaskInput) (*types.Task, error)
	InsertTasks(ctx context.Context, inputs []types.TaskInput) ([]types.Task, error)
	UpdateTasks(ctx context.Context, filter types.TaskFilter, patch types.TaskPatch) ([]types.Task, error)
	DeleteTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error)
}

// GoalStore is the entity-store capability for goals.
type GoalStore interface {
	FindGoals(ctx context.Context, filter types.GoalFilter) ([]types.Goal, error)
	SaveGoal(ctx context.Context, input types.GoalInput) (*types.Goal, error)
	InsertGoals(ctx context.Context, inputs []types.GoalInput) ([]types.Goal, error)
	DeleteGoals(ctx context.Context, filter types.GoalFilter) ([]types.Goal, error)
}

// Store defines the interface contract for all storage operations.
type Store interface {
	TaskStore
	GoalStore
	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
