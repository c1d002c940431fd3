// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	list     *application.ListController
	messages driven.MessageStore
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	list *application.ListController,
	messages driven.MessageStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		list:     list,
		messages: messages,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the JSON API and metrics routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/recipes", h.ListRecipes)
	mux.HandleFunc("POST /api/v1/recipes/refresh", h.RefreshRecipes)
	mux.HandleFunc("DELETE /api/v1/recipes/{id}", h.DeleteRecipe)
	mux.HandleFunc("GET /api/v1/messages", h.ListMessages)
	mux.HandleFunc("DELETE /api/v1/messages", h.ClearMessages)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// ApplyMiddleware wraps handler with request ID, logging and recovery middleware.
func ApplyMiddleware(handler http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, handler)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// ListRecipes returns the controller's held list, loading it on first use.
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	h.list.Init(r.Context())
	writeJSON(w, http.StatusOK, h.listResponse())
}

// RefreshRecipes re-fetches the held list from the recipe API.
func (h *Handler) RefreshRecipes(w http.ResponseWriter, r *http.Request) {
	h.list.Refresh(r.Context())
	writeJSON(w, http.StatusOK, h.listResponse())
}

// DeleteRecipe removes a held recipe optimistically. The backend delete runs
// in the background, so the response only confirms the local removal.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	target := h.list.Find(id)
	if target == nil {
		writeError(w, http.StatusNotFound, "recipe not in list")
		return
	}

	h.list.Delete(r.Context(), target)
	w.WriteHeader(http.StatusAccepted)
}

// ListMessages returns the recorded status messages, oldest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearMessages discards the recorded status messages.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear messages", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) listResponse() RecipeListResponse {
	held := h.list.Recipes()
	recipes := make([]RecipeResponse, 0, len(held))
	for _, r := range held {
		recipes = append(recipes, toRecipeResponse(*r))
	}

	return RecipeListResponse{
		State:   h.list.State().String(),
		Recipes: recipes,
		Failure: toFailureResponse(h.list.LastError()),
	}
}
