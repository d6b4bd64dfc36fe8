package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/waypoint/internal/store"
	"github.com/hyperengineering/waypoint/internal/task"
	"github.com/hyperengineering/waypoint/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler implements the API handlers
type Handler struct {
	store    store.Store
	expander *task.Expander
	tracker  *task.Tracker
	groups   *task.Mutator
	apiKey   string
	version  string
}

// NewHandler creates a Handler whose core components all share s.
// maxOccurrences caps recurring expansions; zero means no cap.
func NewHandler(s store.Store, maxOccurrences int, apiKey, version string) *Handler {
	return &Handler{
		store:    s,
		expander: task.NewExpander(s, maxOccurrences),
		tracker:  task.NewTracker(s),
		groups:   task.NewMutator(s),
		apiKey:   apiKey,
		version:  version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		slog.Error("health check failed", "component", "api", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		TaskCount: stats.TaskCount,
		GoalCount: stats.GoalCount,
	})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
// An empty body leaves v at its zero value. On failure it writes a 400
// problem and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return false
	}
	if dec.More() {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: body must contain a single object")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "api", "error", err)
	}
}
