package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"commitverify/internal/models"
)

// maxStateBodyBytes caps PUT /api/v1/state bodies.
const maxStateBodyBytes = 64 << 10

// Handlers contains HTTP handlers for the health stub
type Handlers struct {
	state     *StateStore
	startTime time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(state *StateStore) *Handlers {
	return &Handlers{
		state:     state,
		startTime: time.Now(),
	}
}

// HealthCheck answers with the current commit and health flags, or with the
// configured failure status.
// GET /health, GET /api/v1/health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	state := h.state.Get()

	if state.Failing() {
		h.writeErrorResponse(w, state.FailStatus, models.ErrorCodeSimulated, http.StatusText(state.FailStatus))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, state.Health())
}

// GetState returns the full stub state.
// GET /api/v1/state
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.state.Get())
}

// UpdateState applies a partial state update. Unknown fields are rejected.
// PUT /api/v1/state
func (h *Handlers) UpdateState(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStateBodyBytes))
	decoder.DisallowUnknownFields()

	var update models.StubStateUpdate
	if err := decoder.Decode(&update); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeErrorResponse(w, http.StatusRequestEntityTooLarge, models.ErrorCodeBadRequest, "Request body too large")
			return
		}
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON in request body")
		return
	}

	state, err := h.state.Update(update)
	if err != nil {
		h.writeErrorResponse(w, http.StatusUnprocessableEntity, models.ErrorCodeValidation, err.Error())
		return
	}

	slog.Info("Stub state updated",
		"commit", state.Commit,
		"healthy", state.Healthy,
		"connection_status", state.ConnectionStatus,
		"fail_status", state.FailStatus)

	h.writeJSONResponse(w, http.StatusOK, state)
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written
		slog.Error("Error encoding JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	h.writeJSONResponse(w, statusCode, models.NewErrorResponse(message, errorCode))
}
