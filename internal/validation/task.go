package validation

import (
	"fmt"
	"time"

	"github.com/hyperengineering/waypoint/internal/types"
)

const (
	// MaxNameLength is the maximum task or goal name length in runes.
	MaxNameLength = 500
	// MaxDescriptionLength is the maximum description length in runes.
	MaxDescriptionLength = 4000
	// MaxOwnerIDLength is the maximum owner identifier length.
	MaxOwnerIDLength = 128
)

// ValidateOwnerID checks the owner identity forwarded by the auth layer.
func ValidateOwnerID(value string) *ValidationError {
	if err := ValidateRequired("ownerId", value); err != nil {
		return err
	}
	if err := ValidateNoNullBytes("ownerId", value); err != nil {
		return err
	}
	return ValidateMaxLength("ownerId", value, MaxOwnerIDLength)
}

// ValidateGroupID checks a recurring group identifier.
func ValidateGroupID(field, value string) *ValidationError {
	if err := ValidateRequired(field, value); err != nil {
		return err
	}
	return ValidateUUID(field, value)
}

// ValidateTaskCreate validates a single-task creation payload.
// Name and plannedDate are required.
func ValidateTaskCreate(req types.TaskRequest) (types.TaskPatch, []ValidationError) {
	var c Collector
	p := taskFields(&c, req)
	if !req.Name.Set {
		c.Add(&ValidationError{Field: "name", Message: "is required"})
	}
	if !req.PlannedDate.Set && !req.Planned.Set {
		c.Add(&ValidationError{Field: "plannedDate", Message: "is required"})
	}
	return p, c.Errors()
}

// ValidateTaskUpdate validates a partial task update payload.
func ValidateTaskUpdate(req types.TaskRequest) (types.TaskPatch, []ValidationError) {
	var c Collector
	p := taskFields(&c, req)
	if !c.HasErrors() && p.IsEmpty() {
		c.Add(emptyBody())
	}
	return p, c.Errors()
}

func taskFields(c *Collector, req types.TaskRequest) types.TaskPatch {
	var p types.TaskPatch

	p.Name = nameField(c, req.Name)

	planned := resolveAlias(c, "plannedDate", "planned", req.PlannedDate, req.Planned)
	if planned.Set {
		if !planned.Valid {
			c.Add(notNull("plannedDate"))
		} else if t, err := ParseTime("plannedDate", planned.V); err != nil {
			c.Add(err)
		} else {
			p.PlannedDate = &t
		}
	}

	p.Target = req.Target
	p.Performance = req.Performance
	p.Done = doneField(c, req.Done)
	p.Description = descriptionField(c, req.Description)
	p.GoalID = goalField(c, req.GoalID, req.Goal)

	if req.GroupID.Set || req.GroupIDAlt.Set {
		c.Add(readOnly("groupId", "is assigned by recurrence and cannot be set"))
	}
	if len(req.PerformanceHistory) > 0 || len(req.PerformanceHistoryAlt) > 0 {
		c.Add(readOnly("performanceHistory", "is recorded from performance values and cannot be set"))
	}
	return p
}

// ValidateRecurringRequest validates a recurring-task payload for ownerID.
// The end date is required; the anchor defaults to now when omitted.
func ValidateRecurringRequest(ownerID string, req types.RecurringTaskRequest) (*types.Recurrence, []ValidationError) {
	var c Collector
	rec := &types.Recurrence{Template: types.TaskTemplate{OwnerID: ownerID}}

	if !req.Name.Set {
		c.Add(&ValidationError{Field: "name", Message: "is required"})
	} else if name := nameField(&c, req.Name); name != nil {
		rec.Template.Name = *name
	}

	planned := resolveAlias(&c, "plannedDate", "planned", req.PlannedDate, req.Planned)
	if planned.Valid {
		if t, err := ParseTime("plannedDate", planned.V); err != nil {
			c.Add(err)
		} else {
			rec.Anchor = &t
		}
	}

	until := resolveAlias(&c, "recurringUntil", "recurring_until", req.RecurringUntil, req.RecurringUntilAlt)
	if !until.Valid {
		c.Add(&ValidationError{Field: "recurringUntil", Message: "is required"})
	} else if t, err := ParseTime("recurringUntil", until.V); err != nil {
		c.Add(err)
	} else {
		rec.Until = t
	}

	rec.Template.Target = req.Target.Ptr()
	rec.Template.Description = descriptionField(&c, req.Description).Ptr()
	rec.Template.GoalID = goalField(&c, req.GoalID, req.Goal).Ptr()

	if c.HasErrors() {
		return nil, c.Errors()
	}
	return rec, nil
}

// ValidateGroupPatch validates the body of a recurring group edit.
func ValidateGroupPatch(req types.GroupPatchRequest) (types.GroupPatch, []ValidationError) {
	var c Collector
	p := types.GroupPatch{
		Name:        nameField(&c, req.Name),
		Target:      req.Target,
		Done:        doneField(&c, req.Done),
		Description: descriptionField(&c, req.Description),
		GoalID:      goalField(&c, req.GoalID, req.Goal),
	}
	if !c.HasErrors() && p.IsEmpty() {
		c.Add(emptyBody())
	}
	return p, c.Errors()
}

func nameField(c *Collector, name types.Nullable[string]) *string {
	if !name.Set {
		return nil
	}
	if !name.Valid {
		c.Add(notNull("name"))
		return nil
	}
	if err := ValidateRequired("name", name.V); err != nil {
		c.Add(err)
		return nil
	}
	checkText(c, "name", name.V, MaxNameLength)
	v := name.V
	return &v
}

func descriptionField(c *Collector, desc types.Nullable[string]) types.Nullable[string] {
	if desc.Valid {
		checkText(c, "description", desc.V, MaxDescriptionLength)
	}
	return desc
}

func doneField(c *Collector, done types.Nullable[string]) types.Nullable[time.Time] {
	if !done.Set {
		return types.Nullable[time.Time]{}
	}
	if !done.Valid {
		return types.Null[time.Time]()
	}
	t, err := ParseTime("done", done.V)
	if err != nil {
		c.Add(err)
		return types.Nullable[time.Time]{}
	}
	return types.Some(t)
}

func goalField(c *Collector, goalID, goal types.Nullable[string]) types.Nullable[string] {
	ref := resolveAlias(c, "goalId", "goal", goalID, goal)
	if ref.Valid {
		c.Add(ValidateULID("goalId", ref.V))
	}
	return ref
}

// resolveAlias folds the two spellings of one field into the canonical one.
// Supplying both is ambiguous and reported against the canonical name.
func resolveAlias[T any](c *Collector, field, alias string, primary, alt types.Nullable[T]) types.Nullable[T] {
	if primary.Set && alt.Set {
		c.Add(&ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must not be combined with %q", alias),
		})
		return primary
	}
	if alt.Set {
		return alt
	}
	return primary
}

func checkText(c *Collector, field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

func notNull(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "must not be null"}
}

func readOnly(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func emptyBody() *ValidationError {
	return &ValidationError{Field: "body", Message: "must contain at least one field"}
}
