package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// Nullable distinguishes an absent JSON key from an explicit null.
// Set is true whenever the key was present; Valid is true when it carried a value.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	V     T
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, V: v}
}

// Null returns a Nullable that explicitly clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Ptr returns a pointer to the value, or nil when the field is null or absent.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// present in the payload, which is what makes Set meaningful.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.Valid = false
		n.V = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.V); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// PerformanceSample is one recorded measurement of progress toward a target.
type PerformanceSample struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Task is a dated unit of work, optionally part of a recurring group.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Name        string     `json:"name"`
	PlannedDate time.Time  `json:"plannedDate"`
	Target      *float64   `json:"target"`
	Performance *float64   `json:"performance"`
	Done        *time.Time `json:"done"`
	Description *string    `json:"description"`
	GoalID      *string    `json:"goalId"`
	GroupID     *string    `json:"groupId"`
	// PerformanceHistory is ordered newest-first.
	PerformanceHistory []PerformanceSample `json:"performanceHistory"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// MarshalJSON ensures a nil history marshals as [] not null.
func (t Task) MarshalJSON() ([]byte, error) {
	if t.PerformanceHistory == nil {
		t.PerformanceHistory = []PerformanceSample{}
	}
	type Alias Task
	return json.Marshal(Alias(t))
}

// TaskPatch is a partial task update in canonical field names.
// Unset fields are left untouched by Apply.
type TaskPatch struct {
	Name               *string
	PlannedDate        *time.Time
	Target             Nullable[float64]
	Performance        Nullable[float64]
	Done               Nullable[time.Time]
	Description        Nullable[string]
	GoalID             Nullable[string]
	GroupID            *string
	PerformanceHistory *[]PerformanceSample
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.PlannedDate == nil && !p.Target.Set && !p.Performance.Set &&
		!p.Done.Set && !p.Description.Set && !p.GoalID.Set && p.GroupID == nil &&
		p.PerformanceHistory == nil
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.PlannedDate != nil {
		t.PlannedDate = *p.PlannedDate
	}
	if p.Target.Set {
		t.Target = p.Target.Ptr()
	}
	if p.Performance.Set {
		t.Performance = p.Performance.Ptr()
	}
	if p.Done.Set {
		t.Done = p.Done.Ptr()
	}
	if p.Description.Set {
		t.Description = p.Description.Ptr()
	}
	if p.GoalID.Set {
		t.GoalID = p.GoalID.Ptr()
	}
	if p.GroupID != nil {
		g := *p.GroupID
		t.GroupID = &g
	}
	if p.PerformanceHistory != nil {
		t.PerformanceHistory = append([]PerformanceSample(nil), (*p.PerformanceHistory)...)
	}
}

// TaskInput is the entity-store save/insert input. An empty ID inserts.
type TaskInput struct {
	ID      string
	OwnerID string
	Patch   TaskPatch
}

// TaskFilter selects tasks by equality on each non-empty field.
type TaskFilter struct {
	ID      string
	OwnerID string
	GroupID string
	GoalID  string
}

// IsZero reports whether the filter has no constraints.
func (f TaskFilter) IsZero() bool {
	return f == TaskFilter{}
}

// GroupPatch is the field set a recurring group may be edited with.
// PlannedDate and GroupID are deliberately absent.
type GroupPatch struct {
	Name        *string
	Target      Nullable[float64]
	Done        Nullable[time.Time]
	Description Nullable[string]
	GoalID      Nullable[string]
}

// TaskPatch converts the group patch to a task patch.
func (g GroupPatch) TaskPatch() TaskPatch {
	return TaskPatch{
		Name:        g.Name,
		Target:      g.Target,
		Done:        g.Done,
		Description: g.Description,
		GoalID:      g.GoalID,
	}
}

// IsEmpty reports whether the group patch changes nothing.
func (g GroupPatch) IsEmpty() bool {
	return g.TaskPatch().IsEmpty()
}

// TaskTemplate holds the fields copied onto every task of a recurrence.
type TaskTemplate struct {
	OwnerID     string
	Name        string
	Target      *float64
	Description *string
	GoalID      *string
}

// Recurrence is a validated recurring-task request.
// A nil Anchor means "now".
type Recurrence struct {
	Template TaskTemplate
	Anchor   *time.Time
	Until    time.Time
}

// Goal is a named objective tasks can contribute to.
type Goal struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerId"`
	Name         string     `json:"name"`
	PlannedDate  *time.Time `json:"plannedDate"`
	Description  *string    `json:"description"`
	ParentGoalID *string    `json:"parentGoalId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// GoalPatch is a partial goal update.
type GoalPatch struct {
	Name         *string
	PlannedDate  Nullable[time.Time]
	Description  Nullable[string]
	ParentGoalID Nullable[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p GoalPatch) IsEmpty() bool {
	return p.Name == nil && !p.PlannedDate.Set && !p.Description.Set && !p.ParentGoalID.Set
}

// Apply merges the patch into g.
func (p GoalPatch) Apply(g *Goal) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.PlannedDate.Set {
		g.PlannedDate = p.PlannedDate.Ptr()
	}
	if p.Description.Set {
		g.Description = p.Description.Ptr()
	}
	if p.ParentGoalID.Set {
		g.ParentGoalID = p.ParentGoalID.Ptr()
	}
}

// GoalInput is the entity-store save/insert input for goals.
type GoalInput struct {
	ID      string
	OwnerID string
	Patch   GoalPatch
}

// GoalFilter selects goals by equality on each non-empty field. Limit and
// Offset page through the ordered result; zero means no bound.
type GoalFilter struct {
	ID      string
	OwnerID string
	Limit   int
	Offset  int
}

// IsZero reports whether the filter has no constraints.
func (f GoalFilter) IsZero() bool {
	return f == GoalFilter{}
}

// StoreStats holds aggregate store statistics.
type StoreStats struct {
	TaskCount int64 `json:"taskCount"`
	GoalCount int64 `json:"goalCount"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	TaskCount int64  `json:"taskCount"`
	GoalCount int64  `json:"goalCount"`
}

// PerformanceResponse is the performance view of a single task.
type PerformanceResponse struct {
	TaskID             string              `json:"taskId"`
	Target             *float64            `json:"target"`
	Performance        *float64            `json:"performance"`
	Done               *time.Time          `json:"done"`
	PerformanceHistory []PerformanceSample `json:"performanceHistory"`
}
