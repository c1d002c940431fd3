package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

// ErrMalformedPayload indicates the recipe API answered with a body that
// could not be decoded into the expected shape.
var ErrMalformedPayload = errors.New("malformed payload")

// StatusError is returned when the recipe API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string // Trimmed excerpt of the response body, may be empty.
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// RecipeAPI defines the driven port for the remote recipe collection.
// Implementations return errors; soft-failure handling lives in the
// application layer.
type RecipeAPI interface {
	// ListRecipes returns the full collection in backend order.
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	// GetRecipe returns a single recipe by id.
	GetRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	// UpdateRecipe replaces the full record. The returned acknowledgement is
	// whatever the backend sent and is nil for an empty body.
	UpdateRecipe(ctx context.Context, recipe model.Recipe) (json.RawMessage, error)
	// CreateRecipe stores a new recipe and returns it with its assigned id.
	CreateRecipe(ctx context.Context, recipe model.Recipe) (*model.Recipe, error)
	// DeleteRecipe removes the recipe with the given id. The deleted record
	// is returned when the backend echoes it, nil otherwise.
	DeleteRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	// SearchRecipes returns the recipes whose name matches term. Matching
	// semantics are defined by the backend.
	SearchRecipes(ctx context.Context, term string) ([]model.Recipe, error)
}
