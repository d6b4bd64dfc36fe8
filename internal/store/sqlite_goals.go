package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/waypoint/internal/types"
	"github.com/oklog/ulid/v2"
)

const goalColumns = `id, owner_id, name, planned_date, description, parent_goal_id, created_at, updated_at`

// FindGoals returns the goals matching filter ordered by creation.
func (s *SQLiteStore) FindGoals(ctx context.Context, filter types.GoalFilter) ([]types.Goal, error) {
	goals, err := selectGoals(ctx, s.db, filter)
	if err != nil {
		return nil, wrap("find goals", err)
	}
	return goals, nil
}

// SaveGoal inserts a goal when input.ID is empty, otherwise merges the patch
// into the stored goal. Parent references must resolve to a goal of the
// same owner and must not form a cycle.
func (s *SQLiteStore) SaveGoal(ctx context.Context, input types.GoalInput) (*types.Goal, error) {
	var saved *types.Goal
	err := s.withTx(ctx, "save goal", func(tx *sql.Tx) error {
		now := time.Now().UTC()

		if input.ID == "" {
			g := newGoal(input, now)
			if err := ensureParent(ctx, tx, g); err != nil {
				return err
			}
			if err := insertGoal(ctx, tx, g); err != nil {
				return err
			}
			saved = g
			return nil
		}

		existing, err := selectGoals(ctx, tx, types.GoalFilter{ID: input.ID, OwnerID: input.OwnerID})
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return fmt.Errorf("goal %s: %w", input.ID, ErrNotFound)
		}

		g := &existing[0]
		input.Patch.Apply(g)
		g.PlannedDate = utcPtr(g.PlannedDate)
		g.UpdatedAt = now
		if input.Patch.ParentGoalID.Valid {
			if err := ensureParent(ctx, tx, g); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE goals
			SET name = ?, planned_date = ?, description = ?, parent_goal_id = ?, updated_at = ?
			WHERE id = ?
		`,
			g.Name, nullTime(g.PlannedDate), nullString(g.Description),
			nullString(g.ParentGoalID), formatTime(g.UpdatedAt), g.ID,
		)
		if err != nil {
			return fmt.Errorf("update goal %s: %w", g.ID, err)
		}
		saved = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// InsertGoals inserts every input in one transaction. A parent may refer to
// a goal inserted earlier in the same batch.
func (s *SQLiteStore) InsertGoals(ctx context.Context, inputs []types.GoalInput) ([]types.Goal, error) {
	if len(inputs) == 0 {
		return []types.Goal{}, nil
	}

	goals := make([]types.Goal, 0, len(inputs))
	err := s.withTx(ctx, "insert goals", func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for _, in := range inputs {
			g := newGoal(in, now)
			if err := ensureParent(ctx, tx, g); err != nil {
				return err
			}
			if err := insertGoal(ctx, tx, g); err != nil {
				return err
			}
			goals = append(goals, *g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// DeleteGoals removes the goals matching filter. Tasks and child goals that
// referenced them keep existing with the reference cleared. Paging fields
// are ignored.
func (s *SQLiteStore) DeleteGoals(ctx context.Context, filter types.GoalFilter) ([]types.Goal, error) {
	filter.Limit, filter.Offset = 0, 0
	var goals []types.Goal
	err := s.withTx(ctx, "delete goals", func(tx *sql.Tx) error {
		matched, err := selectGoals(ctx, tx, filter)
		if err != nil {
			return err
		}
		if len(matched) > 0 {
			clause, args, err := goalWhere(filter)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM goals"+clause, args...); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
		}
		goals = matched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func goalWhere(f types.GoalFilter) (string, []any, error) {
	return where("id", f.ID, "owner_id", f.OwnerID)
}

func newGoal(in types.GoalInput, now time.Time) *types.Goal {
	g := &types.Goal{
		ID:        ulid.Make().String(),
		OwnerID:   in.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Patch.Apply(g)
	g.PlannedDate = utcPtr(g.PlannedDate)
	return g
}

func selectGoals(ctx context.Context, q querier, filter types.GoalFilter) ([]types.Goal, error) {
	clause, args, err := goalWhere(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + goalColumns + " FROM goals" + clause + " ORDER BY created_at ASC, id ASC"
	if filter.Limit > 0 || filter.Offset > 0 {
		// SQLite needs a LIMIT before OFFSET; -1 means unbounded.
		limit := -1
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	goals := []types.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return goals, nil
}

func insertGoal(ctx context.Context, q querier, g *types.Goal) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		g.ID, g.OwnerID, g.Name, nullTime(g.PlannedDate), nullString(g.Description),
		nullString(g.ParentGoalID), formatTime(g.CreatedAt), formatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func scanGoal(scanner interface{ Scan(...any) error }) (*types.Goal, error) {
	var g types.Goal
	var createdAt, updatedAt string
	var planned, description, parent sql.NullString

	if err := scanner.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Name,
		&planned,
		&description,
		&parent,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if g.PlannedDate, err = parseNullTime(planned); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	g.Description = stringPtr(description)
	g.ParentGoalID = stringPtr(parent)
	return &g, nil
}

// ensureParent verifies g's parent exists for the same owner and that
// walking up from it never reaches g.
func ensureParent(ctx context.Context, q querier, g *types.Goal) error {
	if g.ParentGoalID == nil {
		return nil
	}
	if *g.ParentGoalID == g.ID {
		return ErrGoalCycle
	}

	seen := map[string]bool{g.ID: true}
	next := *g.ParentGoalID
	first := true
	for next != "" {
		if seen[next] {
			return ErrGoalCycle
		}
		seen[next] = true

		var parent sql.NullString
		err := q.QueryRowContext(ctx,
			"SELECT parent_goal_id FROM goals WHERE id = ? AND owner_id = ?", next, g.OwnerID,
		).Scan(&parent)
		if err == sql.ErrNoRows {
			if first {
				return fmt.Errorf("goal %s: %w", next, ErrGoalNotFound)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("check parent goal: %w", err)
		}
		first = false
		next = parent.String
	}
	return nil
}
