package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/waypoint/internal/types"
	"github.com/oklog/ulid/v2"
)

const taskColumns = `id, owner_id, name, planned_date, target, performance, done,
	description, goal_id, group_id, performance_history, created_at, updated_at`

// FindTasks returns the tasks matching filter ordered by planned date.
func (s *SQLiteStore) FindTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error) {
	tasks, err := selectTasks(ctx, s.db, filter)
	if err != nil {
		return nil, wrap("find tasks", err)
	}
	return tasks, nil
}

// SaveTask inserts a task when input.ID is empty, otherwise merges the
// patch into the stored task. Merging an unknown id returns ErrNotFound.
func (s *SQLiteStore) SaveTask(ctx context.Context, input types.TaskInput) (*types.Task, error) {
	var saved *types.Task
	err := s.withTx(ctx, "save task", func(tx *sql.Tx) error {
		now := time.Now().UTC()

		if input.ID == "" {
			t := newTask(input, now)
			if err := ensureGoal(ctx, tx, t.OwnerID, t.GoalID); err != nil {
				return err
			}
			if err := insertTask(ctx, tx, t); err != nil {
				return err
			}
			saved = t
			return nil
		}

		existing, err := selectTasks(ctx, tx, types.TaskFilter{ID: input.ID, OwnerID: input.OwnerID})
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return fmt.Errorf("task %s: %w", input.ID, ErrNotFound)
		}

		t := &existing[0]
		input.Patch.Apply(t)
		t.UpdatedAt = now
		if input.Patch.GoalID.Valid {
			if err := ensureGoal(ctx, tx, t.OwnerID, t.GoalID); err != nil {
				return err
			}
		}
		if err := updateTask(ctx, tx, t); err != nil {
			return err
		}
		saved = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// InsertTasks inserts every input in one transaction.
func (s *SQLiteStore) InsertTasks(ctx context.Context, inputs []types.TaskInput) ([]types.Task, error) {
	if len(inputs) == 0 {
		return []types.Task{}, nil
	}

	tasks := make([]types.Task, 0, len(inputs))
	err := s.withTx(ctx, "insert tasks", func(tx *sql.Tx) error {
		now := time.Now().UTC()
		checked := make(map[string]bool)

		for _, in := range inputs {
			t := newTask(in, now)
			if t.GoalID != nil && !checked[*t.GoalID] {
				if err := ensureGoal(ctx, tx, t.OwnerID, t.GoalID); err != nil {
					return err
				}
				checked[*t.GoalID] = true
			}
			if err := insertTask(ctx, tx, t); err != nil {
				return err
			}
			tasks = append(tasks, *t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTasks applies the same patch to every task matching filter and
// returns the updated records. No match yields an empty slice.
func (s *SQLiteStore) UpdateTasks(ctx context.Context, filter types.TaskFilter, patch types.TaskPatch) ([]types.Task, error) {
	var tasks []types.Task
	err := s.withTx(ctx, "update tasks", func(tx *sql.Tx) error {
		matched, err := selectTasks(ctx, tx, filter)
		if err != nil {
			return err
		}
		if len(matched) == 0 {
			tasks = []types.Task{}
			return nil
		}

		if patch.GoalID.Valid {
			goalID := patch.GoalID.V
			if err := ensureGoal(ctx, tx, matched[0].OwnerID, &goalID); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for i := range matched {
			patch.Apply(&matched[i])
			matched[i].UpdatedAt = now
			if err := updateTask(ctx, tx, &matched[i]); err != nil {
				return err
			}
		}
		tasks = matched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// DeleteTasks removes every task matching filter and returns the removed
// records. No match yields an empty slice, not an error.
func (s *SQLiteStore) DeleteTasks(ctx context.Context, filter types.TaskFilter) ([]types.Task, error) {
	var tasks []types.Task
	err := s.withTx(ctx, "delete tasks", func(tx *sql.Tx) error {
		matched, err := selectTasks(ctx, tx, filter)
		if err != nil {
			return err
		}
		if len(matched) > 0 {
			clause, args, err := taskWhere(filter)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"+clause, args...); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
		}
		tasks = matched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func taskWhere(f types.TaskFilter) (string, []any, error) {
	return where(
		"id", f.ID,
		"owner_id", f.OwnerID,
		"group_id", f.GroupID,
		"goal_id", f.GoalID,
	)
}

func newTask(in types.TaskInput, now time.Time) *types.Task {
	t := &types.Task{
		ID:                 ulid.Make().String(),
		OwnerID:            in.OwnerID,
		PerformanceHistory: []types.PerformanceSample{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	in.Patch.Apply(t)
	if t.PlannedDate.IsZero() {
		t.PlannedDate = now
	}
	t.PlannedDate = t.PlannedDate.UTC()
	t.Done = utcPtr(t.Done)
	return t
}

func selectTasks(ctx context.Context, q querier, filter types.TaskFilter) ([]types.Task, error) {
	clause, args, err := taskWhere(filter)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks"+clause+" ORDER BY planned_date ASC, id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

func insertTask(ctx context.Context, q querier, t *types.Task) error {
	history, err := marshalHistory(t.PerformanceHistory)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.OwnerID, t.Name, formatTime(t.PlannedDate),
		nullFloat(t.Target), nullFloat(t.Performance), nullTime(t.Done),
		nullString(t.Description), nullString(t.GoalID), nullString(t.GroupID),
		history, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func updateTask(ctx context.Context, q querier, t *types.Task) error {
	t.Done = utcPtr(t.Done)
	t.PlannedDate = t.PlannedDate.UTC()

	history, err := marshalHistory(t.PerformanceHistory)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, planned_date = ?, target = ?, performance = ?, done = ?,
		    description = ?, goal_id = ?, group_id = ?, performance_history = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Name, formatTime(t.PlannedDate), nullFloat(t.Target), nullFloat(t.Performance),
		nullTime(t.Done), nullString(t.Description), nullString(t.GoalID), nullString(t.GroupID),
		history, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return nil
}

// scanTask scans a row into a Task, decoding the JSON history column.
func scanTask(scanner interface{ Scan(...any) error }) (*types.Task, error) {
	var t types.Task
	var planned, historyJSON, createdAt, updatedAt string
	var target, performance sql.NullFloat64
	var done, description, goalID, groupID sql.NullString

	err := scanner.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&planned,
		&target,
		&performance,
		&done,
		&description,
		&goalID,
		&groupID,
		&historyJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Target = floatPtr(target)
	t.Performance = floatPtr(performance)
	t.Description = stringPtr(description)
	t.GoalID = stringPtr(goalID)
	t.GroupID = stringPtr(groupID)

	if t.PlannedDate, err = parseTime(planned); err != nil {
		return nil, err
	}
	if t.Done, err = parseNullTime(done); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	t.PerformanceHistory = []types.PerformanceSample{}
	if historyJSON != "" {
		if err := json.Unmarshal([]byte(historyJSON), &t.PerformanceHistory); err != nil {
			return nil, fmt.Errorf("parse performance history: %w", err)
		}
	}

	return &t, nil
}

func marshalHistory(history []types.PerformanceSample) (string, error) {
	if history == nil {
		return "[]", nil
	}
	normalized := make([]types.PerformanceSample, len(history))
	for i, sample := range history {
		normalized[i] = types.PerformanceSample{Value: sample.Value, Timestamp: sample.Timestamp.UTC()}
	}
	b, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("marshal performance history: %w", err)
	}
	return string(b), nil
}

// ensureGoal checks that goalID, when set, names a goal owned by ownerID.
func ensureGoal(ctx context.Context, q querier, ownerID string, goalID *string) error {
	if goalID == nil {
		return nil
	}
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM goals WHERE id = ? AND owner_id = ?", *goalID, ownerID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("goal %s: %w", *goalID, ErrGoalNotFound)
	}
	if err != nil {
		return fmt.Errorf("check goal: %w", err)
	}
	return nil
}
