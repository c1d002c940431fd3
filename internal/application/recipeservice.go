// Package application contains use-case orchestration services.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// DefaultTimeout bounds every recipe API call unless overridden with WithTimeout.
const DefaultTimeout = 10 * time.Second

// messagePrefix tags every status message written by RecipeService.
const messagePrefix = "RecipeService: "

// errMissingID is reported when an operation that addresses a recipe by id
// is given a recipe without one.
var errMissingID = errors.New("recipe has no id")

// RecipeService wraps the RecipeAPI port with uniform soft-failure handling.
// Every operation appends exactly one status message to the sink and returns
// a Result; backend failures never surface as Go errors or panics.
type RecipeService struct {
	api     driven.RecipeAPI
	sink    driven.MessageSink
	logger  *slog.Logger
	timeout time.Duration
}

// ServiceOption configures a RecipeService.
type ServiceOption func(*RecipeService)

// WithLogger sets the logger used for raw error diagnostics.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *RecipeService) { s.logger = logger }
}

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *RecipeService) { s.timeout = d }
}

// NewRecipeService creates a RecipeService over the given API and sink.
func NewRecipeService(api driven.RecipeAPI, sink driven.MessageSink, opts ...ServiceOption) *RecipeService {
	s := &RecipeService{
		api:     api,
		sink:    sink,
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches every recipe. Falls back to an empty slice.
func (s *RecipeService) List(ctx context.Context) Result[[]model.Recipe] {
	return call(ctx, s, "getRecipes", "getRecipes", []model.Recipe{},
		func(ctx context.Context) ([]model.Recipe, error) {
			recipes, err := s.api.ListRecipes(ctx)
			if recipes == nil {
				recipes = []model.Recipe{}
			}
			return recipes, err
		},
		func([]model.Recipe) string { return "fetched recipes" },
	)
}

// Get fetches a single recipe. Falls back to nil.
func (s *RecipeService) Get(ctx context.Context, id int64) Result[*model.Recipe] {
	return call(ctx, s, "getRecipe", fmt.Sprintf("getRecipe id=%d", id), nil,
		func(ctx context.Context) (*model.Recipe, error) {
			return s.api.GetRecipe(ctx, id)
		},
		func(*model.Recipe) string { return fmt.Sprintf("fetched recipe id=%d", id) },
	)
}

// Update replaces a recipe. The recipe must carry its id. Returns the
// backend's acknowledgement, which may be nil; falls back to nil.
func (s *RecipeService) Update(ctx context.Context, recipe model.Recipe) Result[json.RawMessage] {
	if !recipe.HasID() {
		return fail[json.RawMessage](s, "updateRecipe", "updateRecipe", nil, FailureInvalid, errMissingID)
	}

	return call(ctx, s, "updateRecipe", "updateRecipe", nil,
		func(ctx context.Context) (json.RawMessage, error) {
			return s.api.UpdateRecipe(ctx, recipe)
		},
		func(json.RawMessage) string { return fmt.Sprintf("updated recipe id=%d", recipe.ID) },
	)
}

// Create stores a new recipe and returns it with its assigned id. Falls back to nil.
func (s *RecipeService) Create(ctx context.Context, recipe model.Recipe) Result[*model.Recipe] {
	return call(ctx, s, "addRecipe", "addRecipe", nil,
		func(ctx context.Context) (*model.Recipe, error) {
			return s.api.CreateRecipe(ctx, recipe)
		},
		func(created *model.Recipe) string { return fmt.Sprintf("added recipe w/ id=%d", created.ID) },
	)
}

// Delete removes the recipe identified by ref, which may be a model.Recipe
// or a model.RecipeID. Falls back to nil.
func (s *RecipeService) Delete(ctx context.Context, ref model.RecipeRef) Result[*model.Recipe] {
	id := refID(ref)
	if id == 0 {
		return fail[*model.Recipe](s, "deleteRecipe", "deleteRecipe", nil, FailureInvalid, errMissingID)
	}

	return call(ctx, s, "deleteRecipe", "deleteRecipe", nil,
		func(ctx context.Context) (*model.Recipe, error) {
			return s.api.DeleteRecipe(ctx, id)
		},
		func(*model.Recipe) string { return fmt.Sprintf("deleted recipe id=%d", id) },
	)
}

// Search returns recipes whose name matches term. A blank term returns an
// empty slice without calling the API or recording a message.
func (s *RecipeService) Search(ctx context.Context, term string) Result[[]model.Recipe] {
	if strings.TrimSpace(term) == "" {
		operationsTotal.WithLabelValues("searchRecipes", outcomeSkipped).Inc()
		return Result[[]model.Recipe]{Value: []model.Recipe{}}
	}

	return call(ctx, s, "searchRecipes", "searchRecipes", []model.Recipe{},
		func(ctx context.Context) ([]model.Recipe, error) {
			recipes, err := s.api.SearchRecipes(ctx, term)
			if recipes == nil {
				recipes = []model.Recipe{}
			}
			return recipes, err
		},
		func([]model.Recipe) string { return fmt.Sprintf("found recipes matching %q", term) },
	)
}

// call runs fn under the per-call timeout and converts its outcome into a
// Result. name is the stable metric label; op is the human-readable
// operation used in failure messages.
func call[T any](
	ctx context.Context,
	s *RecipeService,
	name, op string,
	fallback T,
	fn func(ctx context.Context) (T, error),
	success func(T) string,
) Result[T] {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	value, err := fn(ctx)
	operationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		return fail(s, name, op, fallback, classify(err), err)
	}

	operationsTotal.WithLabelValues(name, outcomeSuccess).Inc()
	s.log(success(value))
	return Result[T]{Value: value}
}

// fail logs the raw error, records one failure message and returns the fallback.
func fail[T any](s *RecipeService, name, op string, fallback T, kind FailureKind, err error) Result[T] {
	operationsTotal.WithLabelValues(name, string(kind)).Inc()

	s.logger.Error("recipe operation failed",
		"operation", op,
		"kind", kind,
		"error", err,
	)
	s.log(fmt.Sprintf("%s failed: %s", op, err.Error()))

	return Result[T]{
		Value: fallback,
		Err:   &OperationError{Op: op, Kind: kind, Err: err},
	}
}

// refID resolves a RecipeRef to its id, treating nil refs as id 0.
func refID(ref model.RecipeRef) int64 {
	switch v := ref.(type) {
	case nil:
		return 0
	case *model.Recipe:
		if v == nil {
			return 0
		}
	}
	return ref.RecipeID()
}

func (s *RecipeService) log(message string) {
	s.sink.Add(messagePrefix + message)
}
