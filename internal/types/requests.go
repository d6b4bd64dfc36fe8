package types

import "encoding/json"

// Request payloads accepted at the HTTP boundary. Each operation has its own
// struct so that decoding with unknown fields disallowed acts as the field
// whitelist. Paired fields are historical spellings of the same concept and
// are folded into one canonical field during validation.

// TaskRequest is the body of POST /tasks and PATCH /tasks/{id}.
type TaskRequest struct {
	Name        Nullable[string]  `json:"name"`
	PlannedDate Nullable[string]  `json:"plannedDate"`
	Planned     Nullable[string]  `json:"planned"`
	Target      Nullable[float64] `json:"target"`
	Performance Nullable[float64] `json:"performance"`
	Done        Nullable[string]  `json:"done"`
	Description Nullable[string]  `json:"description"`
	GoalID      Nullable[string]  `json:"goalId"`
	Goal        Nullable[string]  `json:"goal"`

	// Read-only fields, accepted only so they can be rejected with a field error.
	GroupID               Nullable[string] `json:"groupId"`
	GroupIDAlt            Nullable[string] `json:"group_id"`
	PerformanceHistory    json.RawMessage  `json:"performanceHistory"`
	PerformanceHistoryAlt json.RawMessage  `json:"performance_history"`
}

// RecurringTaskRequest is the body of POST /tasks/recurring.
type RecurringTaskRequest struct {
	Name              Nullable[string]  `json:"name"`
	PlannedDate       Nullable[string]  `json:"plannedDate"`
	Planned           Nullable[string]  `json:"planned"`
	Target            Nullable[float64] `json:"target"`
	Description       Nullable[string]  `json:"description"`
	GoalID            Nullable[string]  `json:"goalId"`
	Goal              Nullable[string]  `json:"goal"`
	RecurringUntil    Nullable[string]  `json:"recurringUntil"`
	RecurringUntilAlt Nullable[string]  `json:"recurring_until"`
}

// GroupPatchRequest is the body of PATCH /tasks/recurring/{groupId}.
type GroupPatchRequest struct {
	Name        Nullable[string]  `json:"name"`
	Target      Nullable[float64] `json:"target"`
	Done        Nullable[string]  `json:"done"`
	Description Nullable[string]  `json:"description"`
	GoalID      Nullable[string]  `json:"goalId"`
	Goal        Nullable[string]  `json:"goal"`
}

// GoalRequest is the body of POST /goals and PATCH /goals/{id}.
type GoalRequest struct {
	Name         Nullable[string] `json:"name"`
	PlannedDate  Nullable[string] `json:"plannedDate"`
	Planned      Nullable[string] `json:"planned"`
	Description  Nullable[string] `json:"description"`
	ParentGoalID Nullable[string] `json:"parentGoalId"`
	Parent       Nullable[string] `json:"parent"`
}
