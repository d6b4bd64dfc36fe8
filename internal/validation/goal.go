package validation

import (
	"github.com/hyperengineering/waypoint/internal/types"
)

// ValidateGoalCreate validates a goal creation payload. Name is required.
func ValidateGoalCreate(req types.GoalRequest) (types.GoalPatch, []ValidationError) {
	var c Collector
	p := goalFields(&c, req)
	if !req.Name.Set {
		c.Add(&ValidationError{Field: "name", Message: "is required"})
	}
	return p, c.Errors()
}

// ValidateGoalUpdate validates a partial goal update payload.
func ValidateGoalUpdate(req types.GoalRequest) (types.GoalPatch, []ValidationError) {
	var c Collector
	p := goalFields(&c, req)
	if !c.HasErrors() && p.IsEmpty() {
		c.Add(emptyBody())
	}
	return p, c.Errors()
}

func goalFields(c *Collector, req types.GoalRequest) types.GoalPatch {
	var p types.GoalPatch
	p.Name = nameField(c, req.Name)

	planned := resolveAlias(c, "plannedDate", "planned", req.PlannedDate, req.Planned)
	switch {
	case planned.Valid:
		if t, err := ParseTime("plannedDate", planned.V); err != nil {
			c.Add(err)
		} else {
			p.PlannedDate = types.Some(t)
		}
	case planned.Set:
		p.PlannedDate.Set = true
	}

	p.Description = descriptionField(c, req.Description)

	parent := resolveAlias(c, "parentGoalId", "parent", req.ParentGoalID, req.Parent)
	if parent.Valid {
		c.Add(ValidateULID("parentGoalId", parent.V))
	}
	p.ParentGoalID = parent
	return p
}
