package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

// RecipeSource is the subset of RecipeService the list controller needs.
type RecipeSource interface {
	List(ctx context.Context) Result[[]model.Recipe]
	Delete(ctx context.Context, ref model.RecipeRef) Result[*model.Recipe]
}

// Compile-time interface satisfaction check.
var _ RecipeSource = (*RecipeService)(nil)

// ListState is the lifecycle state of a ListController.
type ListState int

const (
	ListUninitialized ListState = iota
	ListLoaded
)

func (s ListState) String() string {
	if s == ListLoaded {
		return "loaded"
	}
	return "uninitialized"
}

// ListController holds the recipe list shown by a presentation surface.
//
// Deletes are optimistic: the record leaves the held list immediately and the
// backend call runs in the background without being awaited. When that call
// fails the held list and the backend disagree until the next Refresh. There
// is no rollback.
type ListController struct {
	source RecipeSource
	logger *slog.Logger

	initOnce sync.Once
	pending  sync.WaitGroup

	mu      sync.Mutex
	state   ListState
	recipes []*model.Recipe
	lastErr *OperationError
}

// NewListController creates an uninitialized ListController.
func NewListController(source RecipeSource, logger *slog.Logger) *ListController {
	return &ListController{
		source: source,
		logger: logger,
	}
}

// Init loads the list the first time it is called. Later calls do nothing.
// The load is detached from ctx cancellation so a caller that goes away
// cannot use up the single load with a canceled result; the service's
// per-call timeout still bounds it.
func (c *ListController) Init(ctx context.Context) {
	c.initOnce.Do(func() {
		c.Refresh(context.WithoutCancel(ctx))
	})
}

// Refresh replaces the held list with a fresh List result. On failure the
// list is replaced with the empty fallback; the failure is returned and also
// kept for LastError.
func (c *ListController) Refresh(ctx context.Context) *OperationError {
	res := c.source.List(ctx)

	held := make([]*model.Recipe, 0, len(res.Value))
	for i := range res.Value {
		held = append(held, &res.Value[i])
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.recipes = held
	c.state = ListLoaded
	c.lastErr = res.Err

	return res.Err
}

// Delete removes target from the held list by pointer identity and fires the
// backend delete without waiting for it. A different pointer with the same
// id is left in place.
func (c *ListController) Delete(ctx context.Context, target *model.Recipe) {
	if target == nil {
		return
	}

	c.mu.Lock()
	kept := make([]*model.Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		if r != target {
			kept = append(kept, r)
		}
	}
	c.recipes = kept
	c.mu.Unlock()

	// The caller's context usually ends with its request; the service applies
	// its own per-call timeout.
	bgCtx := context.WithoutCancel(ctx)
	ref := *target

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		res := c.source.Delete(bgCtx, ref)
		if !res.OK() {
			divergedDeletes.Inc()
			c.logger.Warn("optimistic delete failed, list diverges from backend until refresh",
				"id", ref.ID,
				"error", res.Err,
			)
		}
	}()
}

// Wait blocks until every background delete has finished.
func (c *ListController) Wait() {
	c.pending.Wait()
}

// Recipes returns a snapshot of the held list. The pointers are the held
// elements themselves so they can be passed back to Delete.
func (c *ListController) Recipes() []*model.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*model.Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// Find returns the held element with the given id, or nil.
func (c *ListController) Find(id int64) *model.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.recipes {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// State returns the controller's lifecycle state.
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the failure of the most recent load, or nil.
func (c *ListController) LastError() *OperationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
