package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/waypoint/internal/types"
)

// Saver is the store capability the tracker needs.
type Saver interface {
	SaveTask(ctx context.Context, input types.TaskInput) (*types.Task, error)
}

// Sample returns the patch that records task's current performance at now:
// the sample is prepended to the history and, when a target is set, done
// is toggled to match whether the target is met.
func Sample(task types.Task, now time.Time) types.TaskPatch {
	if task.Performance == nil {
		return types.TaskPatch{}
	}
	value := *task.Performance

	history := make([]types.PerformanceSample, 0, len(task.PerformanceHistory)+1)
	history = append(history, types.PerformanceSample{Value: value, Timestamp: now})
	history = append(history, task.PerformanceHistory...)

	patch := types.TaskPatch{PerformanceHistory: &history}
	if task.Target == nil {
		return patch
	}

	met := value >= *task.Target
	switch {
	case task.Done == nil && met:
		patch.Done = types.Some(now)
	case task.Done != nil && !met:
		patch.Done = types.Null[time.Time]()
	}
	return patch
}

// Tracker records performance samples and keeps completion in sync with
// the target.
type Tracker struct {
	store Saver
	now   func() time.Time
}

// NewTracker creates a tracker backed by store.
func NewTracker(store Saver) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Track persists a new sample for merged, which must already reflect the
// incoming patch. A task without a performance value is returned unchanged.
func (t *Tracker) Track(ctx context.Context, merged types.Task) (*types.Task, error) {
	if merged.Performance == nil {
		return &merged, nil
	}

	patch := Sample(merged, t.now().UTC())
	updated, err := t.store.SaveTask(ctx, types.TaskInput{
		ID:      merged.ID,
		OwnerID: merged.OwnerID,
		Patch:   patch,
	})
	if err != nil {
		return nil, err
	}

	if patch.Done.Set {
		slog.Debug("completion toggled",
			"component", "task",
			"action", "completion_toggled",
			"task_id", merged.ID,
			"done", patch.Done.Valid,
		)
	}
	return updated, nil
}
