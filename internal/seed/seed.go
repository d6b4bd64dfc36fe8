// Package seed loads a demonstration dataset for one owner.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hyperengineering/waypoint/internal/store"
	"github.com/hyperengineering/waypoint/internal/task"
	"github.com/hyperengineering/waypoint/internal/types"
)

// SeriesLength is the number of weekly occurrences in each demo series.
const SeriesLength = 5

var goalNames = []string{
	"Become happier with my own body",
	"Improve my expert image on social media",
	"Increase my productivity",
	"Reach all-time high visitor count on blog",
}

// Goal indexes into goalNames.
const (
	goalBody = iota
	goalSocial
	goalProductivity
	goalBlog
)

type oneOff struct {
	name string
	goal int
	week int
}

var oneOffs = []oneOff{
	{"Create a spreadsheet with the top 5 categories that interest me", goalBlog, 0},
	{"Make light keyword research on those categories and note down ideas for blog post subjects", goalBlog, 0},
	{"Complete an online course on time management", goalProductivity, 0},
	{"Install an anti-distraction app for my browser", goalProductivity, 1},
	{"Improve workplace conditions", goalProductivity, 1},
}

type series struct {
	name string
	goal int
}

var weekly = []series{
	{"Start each morning by writing at least 50 words on one of the subjects", goalBlog},
	{"Sleep at least 8 hours a day", goalProductivity},
	{"Take 1 hour every week to plan work and set priorities", goalProductivity},
	{"Take a 5-minute break every hour", goalProductivity},
	{"Connect with at least 10 new people every week", goalSocial},
	{"Post high-quality content on my social media profile at least once per week", goalSocial},
	{"Take 10 minutes every day to comment on the industry's expert's content", goalSocial},
	{"Fill the water bottle in the morning and after lunch and bring to the desk", goalBody},
	{"Go for a walk during my lunch break", goalBody},
	{"Prepare a bowl of fruits as an evening snack", goalBody},
}

// Result summarizes what Demo wrote.
type Result struct {
	Goals  []types.Goal
	Tasks  []types.Task
	Groups []string
}

// Demo replaces every goal and task of ownerID with the demo dataset.
// Dates are anchored on the UTC calendar day of today.
func Demo(ctx context.Context, s store.Store, ownerID string, today time.Time) (*Result, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("seed: owner id is required")
	}
	anchor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	if _, err := s.DeleteTasks(ctx, types.TaskFilter{OwnerID: ownerID}); err != nil {
		return nil, fmt.Errorf("seed: clear tasks: %w", err)
	}
	if _, err := s.DeleteGoals(ctx, types.GoalFilter{OwnerID: ownerID}); err != nil {
		return nil, fmt.Errorf("seed: clear goals: %w", err)
	}

	goalInputs := make([]types.GoalInput, 0, len(goalNames))
	for _, name := range goalNames {
		name := name
		goalInputs = append(goalInputs, types.GoalInput{
			OwnerID: ownerID,
			Patch:   types.GoalPatch{Name: &name},
		})
	}
	goals, err := s.InsertGoals(ctx, goalInputs)
	if err != nil {
		return nil, fmt.Errorf("seed: insert goals: %w", err)
	}

	res := &Result{Goals: goals}

	taskInputs := make([]types.TaskInput, 0, len(oneOffs))
	for _, o := range oneOffs {
		name := o.name
		planned := anchor.Add(time.Duration(o.week) * task.Week)
		taskInputs = append(taskInputs, types.TaskInput{
			OwnerID: ownerID,
			Patch: types.TaskPatch{
				Name:        &name,
				PlannedDate: &planned,
				GoalID:      types.Some(goals[o.goal].ID),
			},
		})
	}
	tasks, err := s.InsertTasks(ctx, taskInputs)
	if err != nil {
		return nil, fmt.Errorf("seed: insert tasks: %w", err)
	}
	res.Tasks = append(res.Tasks, tasks...)

	expander := task.NewExpander(s, SeriesLength)
	until := anchor.Add((SeriesLength - 1) * task.Week)
	for _, w := range weekly {
		goalID := goals[w.goal].ID
		created, err := expander.Expand(ctx, types.TaskTemplate{
			OwnerID: ownerID,
			Name:    w.name,
			GoalID:  &goalID,
		}, &anchor, until)
		if err != nil {
			return nil, fmt.Errorf("seed: expand %q: %w", w.name, err)
		}
		res.Tasks = append(res.Tasks, created...)
		if len(created) > 0 && created[0].GroupID != nil {
			res.Groups = append(res.Groups, *created[0].GroupID)
		}
	}

	slog.Info("demo data seeded",
		"component", "seed",
		"action", "demo_seeded",
		"owner_id", ownerID,
		"goals", len(res.Goals),
		"tasks", len(res.Tasks),
	)
	return res, nil
}
