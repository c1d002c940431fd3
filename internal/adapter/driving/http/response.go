package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RecipeResponse is the JSON representation of a held recipe.
type RecipeResponse struct {
	ID           int64                      `json:"id"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description,omitempty"`
	Ingredients  []string                   `json:"ingredients"`
	Instructions string                     `json:"instructions,omitempty"`
	Attributes   map[string]json.RawMessage `json:"attributes,omitempty"`
}

// RecipeListResponse is the controller's held list plus the outcome of the
// most recent load.
type RecipeListResponse struct {
	State   string           `json:"state"`
	Recipes []RecipeResponse `json:"recipes"`
	Failure *FailureResponse `json:"failure,omitempty"`
}

// FailureResponse describes a failed recipe operation.
type FailureResponse struct {
	Operation  string `json:"operation"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// MessageResponse is the JSON representation of a status message.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toRecipeResponse(r model.Recipe) RecipeResponse {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	return RecipeResponse{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Ingredients:  ingredients,
		Instructions: r.Instructions,
		Attributes:   r.Attributes,
	}
}

func toFailureResponse(e *application.OperationError) *FailureResponse {
	if e == nil {
		return nil
	}

	return &FailureResponse{
		Operation:  e.Op,
		Kind:       string(e.Kind),
		Message:    e.Err.Error(),
		StatusCode: e.StatusCode(),
	}
}

func toMessageResponse(m model.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
