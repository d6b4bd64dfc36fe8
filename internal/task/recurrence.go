// Package task holds the recurring-task expansion and performance-driven
// completion logic. Persistence is delegated to a store passed in at
// construction.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hyperengineering/waypoint/internal/types"
)

// Week is the fixed recurrence interval.
const Week = 7 * 24 * time.Hour

// Inserter is the store capability the expander needs.
type Inserter interface {
	InsertTasks(ctx context.Context, inputs []types.TaskInput) ([]types.Task, error)
}

// weekSeconds is Week in whole seconds.
const weekSeconds = int64(Week / time.Second)

// WeekSpan returns floor((until - anchor) / 7 days). The result is negative
// when until precedes anchor. It counts in Unix seconds because a
// time.Duration saturates after about 292 years.
func WeekSpan(anchor, until time.Time) int {
	secs := until.Unix() - anchor.Unix()
	if until.Nanosecond() < anchor.Nanosecond() {
		secs--
	}
	span := secs / weekSeconds
	if secs%weekSeconds < 0 {
		span--
	}
	return int(span)
}

// Occurrences builds one task input per week from anchor through until,
// all carrying groupID and the template fields.
func Occurrences(tmpl types.TaskTemplate, anchor, until time.Time, groupID string) ([]types.TaskInput, error) {
	span := WeekSpan(anchor, until)
	if span < 0 {
		return nil, fmt.Errorf("%w: end %s precedes anchor %s",
			ErrInvalidRecurrence, until.Format(time.RFC3339), anchor.Format(time.RFC3339))
	}

	inputs := make([]types.TaskInput, 0, span+1)
	for i := 0; i <= span; i++ {
		name := tmpl.Name
		planned := anchor.AddDate(0, 0, 7*i)
		group := groupID

		patch := types.TaskPatch{
			Name:        &name,
			PlannedDate: &planned,
			GroupID:     &group,
		}
		if tmpl.Target != nil {
			patch.Target = types.Some(*tmpl.Target)
		}
		if tmpl.Description != nil {
			patch.Description = types.Some(*tmpl.Description)
		}
		if tmpl.GoalID != nil {
			patch.GoalID = types.Some(*tmpl.GoalID)
		}

		inputs = append(inputs, types.TaskInput{OwnerID: tmpl.OwnerID, Patch: patch})
	}
	return inputs, nil
}

// Expander turns a task template into a weekly series of tasks sharing one
// group id.
type Expander struct {
	store          Inserter
	maxOccurrences int
	now            func() time.Time
	newGroupID     func() string
}

// NewExpander creates an expander. maxOccurrences caps the series length;
// zero disables the cap.
func NewExpander(store Inserter, maxOccurrences int) *Expander {
	return &Expander{
		store:          store,
		maxOccurrences: maxOccurrences,
		now:            time.Now,
		newGroupID:     func() string { return uuid.New().String() },
	}
}

// Expand validates the span, then inserts the whole series in one call.
// A nil anchor means now.
func (e *Expander) Expand(ctx context.Context, tmpl types.TaskTemplate, anchor *time.Time, until time.Time) ([]types.Task, error) {
	start := e.now().UTC()
	if anchor != nil {
		start = anchor.UTC()
	}
	until = until.UTC()

	if span := WeekSpan(start, until); e.maxOccurrences > 0 && span+1 > e.maxOccurrences {
		return nil, fmt.Errorf("%w: %d occurrences exceeds limit of %d",
			ErrInvalidRecurrence, span+1, e.maxOccurrences)
	}

	groupID := e.newGroupID()
	inputs, err := Occurrences(tmpl, start, until, groupID)
	if err != nil {
		return nil, err
	}

	tasks, err := e.store.InsertTasks(ctx, inputs)
	if err != nil {
		return nil, err
	}

	slog.Info("recurrence expanded",
		"component", "task",
		"action", "recurrence_expanded",
		"group_id", groupID,
		"owner_id", tmpl.OwnerID,
		"count", len(tasks),
	)
	return tasks, nil
}
