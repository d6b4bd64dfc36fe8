package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/waypoint/internal/types"
	"github.com/hyperengineering/waypoint/internal/validation"
)

// ListTasks handles GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	q := r.URL.Query()

	c := &validation.Collector{}
	filter := types.TaskFilter{OwnerID: ownerID}

	if goalID := q.Get("goalId"); goalID != "" {
		c.Add(validation.ValidateULID("goalId", goalID))
		filter.GoalID = goalID
	}

	groupID, groupAlt := q.Get("groupId"), q.Get("group_id")
	switch {
	case groupID != "" && groupAlt != "":
		c.Add(&validation.ValidationError{Field: "groupId", Message: "cannot be combined with group_id"})
	case groupAlt != "":
		groupID = groupAlt
	}
	if groupID != "" {
		c.Add(validation.ValidateGroupID("groupId", groupID))
		filter.GroupID = groupID
	}

	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", c.Errors())
		return
	}

	tasks, err := h.store.FindTasks(r.Context(), filter)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/v1/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())

	var req types.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, errs := validation.ValidateTaskCreate(req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	saved, err := h.store.SaveTask(r.Context(), types.TaskInput{OwnerID: ownerID, Patch: patch})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	if patch.Performance.Valid {
		if saved, err = h.tracker.Track(r.Context(), *saved); err != nil {
			MapStoreError(w, r, err)
			return
		}
	}

	slog.Info("task created",
		"component", "api",
		"action", "task_created",
		"task_id", saved.ID,
		"owner_id", ownerID,
	)
	writeJSON(w, http.StatusCreated, saved)
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.findTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask handles PATCH /api/v1/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req types.TaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, errs := validation.ValidateTaskUpdate(req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	saved, err := h.store.SaveTask(r.Context(), types.TaskInput{ID: id, OwnerID: ownerID, Patch: patch})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	if patch.Performance.Valid {
		if saved, err = h.tracker.Track(r.Context(), *saved); err != nil {
			MapStoreError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	removed, err := h.store.DeleteTasks(r.Context(), types.TaskFilter{ID: id, OwnerID: ownerID})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if len(removed) == 0 {
		WriteProblem(w, r, http.StatusNotFound, "Task not found")
		return
	}

	slog.Info("task deleted",
		"component", "api",
		"action", "task_deleted",
		"task_id", id,
		"owner_id", ownerID,
	)
	writeJSON(w, http.StatusOK, removed[0])
}

// TaskPerformance handles GET /api/v1/tasks/{id}/performance
func (h *Handler) TaskPerformance(w http.ResponseWriter, r *http.Request) {
	t, ok := h.findTask(w, r)
	if !ok {
		return
	}

	history := t.PerformanceHistory
	if history == nil {
		history = []types.PerformanceSample{}
	}
	writeJSON(w, http.StatusOK, types.PerformanceResponse{
		TaskID:             t.ID,
		Target:             t.Target,
		Performance:        t.Performance,
		Done:               t.Done,
		PerformanceHistory: history,
	})
}

// findTask loads the {id} task for the request owner, writing a 404 when
// it does not exist.
func (h *Handler) findTask(w http.ResponseWriter, r *http.Request) (*types.Task, bool) {
	ownerID := MustOwnerIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	tasks, err := h.store.FindTasks(r.Context(), types.TaskFilter{ID: id, OwnerID: ownerID})
	if err != nil {
		MapStoreError(w, r, err)
		return nil, false
	}
	if len(tasks) == 0 {
		WriteProblem(w, r, http.StatusNotFound, "Task not found")
		return nil, false
	}
	return &tasks[0], true
}
