package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/waypoint/internal/types"
	"github.com/hyperengineering/waypoint/internal/validation"
)

// ListGoals handles GET /api/v1/goals?limit=&offset=
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	q := r.URL.Query()

	c := &validation.Collector{}
	filter := types.GoalFilter{OwnerID: ownerID}
	if v := q.Get("limit"); v != "" {
		n, verr := validation.ParseNonNegativeInt("limit", v)
		c.Add(verr)
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, verr := validation.ParseNonNegativeInt("offset", v)
		c.Add(verr)
		filter.Offset = n
	}
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", c.Errors())
		return
	}

	goals, err := h.store.FindGoals(r.Context(), filter)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// CreateGoal handles POST /api/v1/goals
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())

	var req types.GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, errs := validation.ValidateGoalCreate(req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	goal, err := h.store.SaveGoal(r.Context(), types.GoalInput{OwnerID: ownerID, Patch: patch})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// GetGoal handles GET /api/v1/goals/{id}
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())

	goals, err := h.store.FindGoals(r.Context(), types.GoalFilter{ID: chi.URLParam(r, "id"), OwnerID: ownerID})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if len(goals) == 0 {
		WriteProblem(w, r, http.StatusNotFound, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, goals[0])
}

// UpdateGoal handles PATCH /api/v1/goals/{id}
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())

	var req types.GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, errs := validation.ValidateGoalUpdate(req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	goal, err := h.store.SaveGoal(r.Context(), types.GoalInput{
		ID:      chi.URLParam(r, "id"),
		OwnerID: ownerID,
		Patch:   patch,
	})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoal handles DELETE /api/v1/goals/{id}
func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())

	removed, err := h.store.DeleteGoals(r.Context(), types.GoalFilter{ID: chi.URLParam(r, "id"), OwnerID: ownerID})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if len(removed) == 0 {
		WriteProblem(w, r, http.StatusNotFound, "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, removed[0])
}
