package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyperengineering/waypoint/internal/store"
	"github.com/hyperengineering/waypoint/internal/types"
)

// GroupStore is the store capability the group mutator needs.
type GroupStore interface {
	UpdateTasks(ctx context.Context, filter types.TaskFilter, patch types.TaskPatch) ([]types.Task, error)
	DeleteTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error)
}

// Mutator edits or removes every task of a recurring group at once.
type Mutator struct {
	store GroupStore
}

// NewMutator creates a group mutator backed by store.
func NewMutator(store GroupStore) *Mutator {
	return &Mutator{store: store}
}

// Update applies the same patch to every task in the group and returns the
// affected tasks. An unknown group yields an empty list.
func (m *Mutator) Update(ctx context.Context, ownerID, groupID string, patch types.GroupPatch) ([]types.Task, error) {
	filter, err := groupFilter(ownerID, groupID)
	if err != nil {
		return nil, err
	}

	tasks, err := m.store.UpdateTasks(ctx, filter, patch.TaskPatch())
	if err != nil {
		return nil, err
	}

	slog.Info("group updated",
		"component", "task",
		"action", "group_updated",
		"group_id", groupID,
		"count", len(tasks),
	)
	return tasks, nil
}

// Delete removes every task in the group. An unknown group is ErrNotFound.
func (m *Mutator) Delete(ctx context.Context, ownerID, groupID string) ([]types.Task, error) {
	filter, err := groupFilter(ownerID, groupID)
	if err != nil {
		return nil, err
	}

	tasks, err := m.store.DeleteTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("group %s: %w", groupID, store.ErrNotFound)
	}

	slog.Info("group deleted",
		"component", "task",
		"action", "group_deleted",
		"group_id", groupID,
		"count", len(tasks),
	)
	return tasks, nil
}

func groupFilter(ownerID, groupID string) (types.TaskFilter, error) {
	if groupID == "" {
		return types.TaskFilter{}, fmt.Errorf("empty group id: %w", store.ErrNotFound)
	}
	return types.TaskFilter{OwnerID: ownerID, GroupID: groupID}, nil
}
