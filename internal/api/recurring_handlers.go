package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/waypoint/internal/types"
	"github.com/hyperengineering/waypoint/internal/validation"
)

// CreateRecurring handles POST /api/v1/tasks/recurring
func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())

	var req types.RecurringTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, errs := validation.ValidateRecurringRequest(ownerID, req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	tasks, err := h.expander.Expand(r.Context(), rec.Template, rec.Anchor, rec.Until)
	if err != nil {
		slog.Warn("recurrence rejected",
			"component", "api",
			"action", "recurrence_rejected",
			"owner_id", ownerID,
			"error", err,
		)
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tasks)
}

// GetGroup handles GET /api/v1/tasks/recurring/{groupId}
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	groupID := chi.URLParam(r, "groupId")

	tasks, err := h.store.FindTasks(r.Context(), types.TaskFilter{OwnerID: ownerID, GroupID: groupID})
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if len(tasks) == 0 {
		WriteProblem(w, r, http.StatusNotFound, "Recurring group not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// UpdateGroup handles PATCH /api/v1/tasks/recurring/{groupId}
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	groupID := chi.URLParam(r, "groupId")

	var req types.GroupPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch, errs := validation.ValidateGroupPatch(req)
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	tasks, err := h.groups.Update(r.Context(), ownerID, groupID, patch)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// DeleteGroup handles DELETE /api/v1/tasks/recurring/{groupId}
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	ownerID := MustOwnerIDFromContext(r.Context())
	groupID := chi.URLParam(r, "groupId")

	tasks, err := h.groups.Delete(r.Context(), ownerID, groupID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
