package application_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

// mockRecipeSource is a RecipeSource with scripted List answers.
type mockRecipeSource struct {
	mu        sync.Mutex
	lists     [][]model.Recipe
	listErr   error
	listCalls int
	deleted   []int64
	deleteErr error
}

func (m *mockRecipeSource) List(ctx context.Context) application.Result[[]model.Recipe] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if err := ctx.Err(); err != nil {
		return application.Result[[]model.Recipe]{
			Value: []model.Recipe{},
			Err:   &application.OperationError{Op: "getRecipes", Kind: application.FailureCanceled, Err: err},
		}
	}
	if m.listErr != nil {
		return application.Result[[]model.Recipe]{
			Value: []model.Recipe{},
			Err:   &application.OperationError{Op: "getRecipes", Kind: application.FailureTransport, Err: m.listErr},
		}
	}

	next := m.lists[0]
	if len(m.lists) > 1 {
		m.lists = m.lists[1:]
	}
	return application.Result[[]model.Recipe]{Value: append([]model.Recipe(nil), next...)}
}

func (m *mockRecipeSource) Delete(_ context.Context, ref model.RecipeRef) application.Result[*model.Recipe] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, ref.RecipeID())
	if m.deleteErr != nil {
		return application.Result[*model.Recipe]{
			Err: &application.OperationError{Op: "deleteRecipe", Kind: application.FailureStatus, Err: m.deleteErr},
		}
	}
	return application.Result[*model.Recipe]{}
}

func (m *mockRecipeSource) Deleted() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.deleted...)
}

func ids(recipes []*model.Recipe) []int64 {
	out := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func TestListController_InitLoadsOnce(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{
		{{ID: 1, Name: "Soup"}, {ID: 2, Name: "Stew"}},
		{{ID: 3, Name: "Pho"}},
	}}
	ctrl := application.NewListController(source, slog.Default())
	assert.Equal(t, application.ListUninitialized, ctrl.State())

	ctrl.Init(context.Background())
	ctrl.Init(context.Background())

	assert.Equal(t, application.ListLoaded, ctrl.State())
	assert.Equal(t, 1, source.listCalls)
	assert.Equal(t, []int64{1, 2}, ids(ctrl.Recipes()))
}

func TestListController_InitIgnoresCallerCancellation(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{
		{{ID: 1, Name: "Soup"}, {ID: 2, Name: "Stew"}},
	}}
	ctrl := application.NewListController(source, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ctrl.Init(ctx)

	assert.Nil(t, ctrl.LastError())
	assert.Equal(t, []int64{1, 2}, ids(ctrl.Recipes()))
}

func TestListController_RefreshHonoursCancellation(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{{{ID: 1, Name: "Soup"}}}}
	ctrl := application.NewListController(source, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opErr := ctrl.Refresh(ctx)

	require.NotNil(t, opErr)
	assert.Equal(t, application.FailureCanceled, opErr.Kind)
	assert.Empty(t, ctrl.Recipes())
}

func TestListController_DeleteIsOptimistic(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{
		{{ID: 1, Name: "Soup"}, {ID: 2, Name: "Stew"}, {ID: 3, Name: "Pho"}},
	}}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	target := ctrl.Find(2)
	require.NotNil(t, target)

	ctrl.Delete(context.Background(), target)

	assert.Equal(t, []int64{1, 3}, ids(ctrl.Recipes()), "held list excludes id 2 before the delete settles")

	ctrl.Wait()
	assert.Equal(t, []int64{2}, source.Deleted())
}

func TestListController_DeleteUsesIdentity(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{
		{{ID: 2, Name: "Stew"}, {ID: 2, Name: "Stew (copy)"}},
	}}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	held := ctrl.Recipes()
	ctrl.Delete(context.Background(), held[0])
	ctrl.Wait()

	remaining := ctrl.Recipes()
	require.Len(t, remaining, 1)
	assert.Same(t, held[1], remaining[0])
}

func TestListController_DeleteOfUnheldRecordStillCallsBackend(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{{{ID: 2, Name: "Stew"}}}}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	ctrl.Delete(context.Background(), &model.Recipe{ID: 2, Name: "Stew"})
	ctrl.Wait()

	assert.Equal(t, []int64{2}, ids(ctrl.Recipes()), "equal id but different pointer is kept")
	assert.Equal(t, []int64{2}, source.Deleted())
}

func TestListController_FailedDeleteDivergesUntilRefresh(t *testing.T) {
	source := &mockRecipeSource{
		lists: [][]model.Recipe{
			{{ID: 1, Name: "Soup"}, {ID: 2, Name: "Stew"}},
			{{ID: 1, Name: "Soup"}, {ID: 2, Name: "Stew"}},
		},
		deleteErr: errors.New("500"),
	}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	ctrl.Delete(context.Background(), ctrl.Find(2))
	ctrl.Wait()

	assert.Equal(t, []int64{1}, ids(ctrl.Recipes()), "no rollback on failure")

	require.Nil(t, ctrl.Refresh(context.Background()))
	assert.Equal(t, []int64{1, 2}, ids(ctrl.Recipes()), "refresh reconciles with the backend")
}

func TestListController_DeleteNilIsNoop(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{{{ID: 1}}}}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	ctrl.Delete(context.Background(), nil)
	ctrl.Wait()

	assert.Empty(t, source.Deleted())
	assert.Len(t, ctrl.Recipes(), 1)
}

func TestListController_DeleteSurvivesCanceledContext(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{{{ID: 5}}}}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	ctrl.Delete(ctx, ctrl.Find(5))
	cancel()
	ctrl.Wait()

	assert.Equal(t, []int64{5}, source.Deleted())
}

func TestListController_RefreshFailureEmptiesList(t *testing.T) {
	source := &mockRecipeSource{lists: [][]model.Recipe{{{ID: 1}}}}
	ctrl := application.NewListController(source, slog.Default())
	ctrl.Init(context.Background())

	source.listErr = errors.New("connection refused")
	opErr := ctrl.Refresh(context.Background())

	require.NotNil(t, opErr)
	assert.Empty(t, ctrl.Recipes())
	assert.Same(t, opErr, ctrl.LastError())
	assert.Equal(t, application.ListLoaded, ctrl.State())
}

func TestListController_WithRecipeService(t *testing.T) {
	api := &mockRecipeAPI{
		list: func(context.Context) ([]model.Recipe, error) {
			return []model.Recipe{{ID: 1, Name: "Soup"}, {ID: 2, Name: "Stew"}}, nil
		},
	}
	svc, sink, _ := newService(api)
	ctrl := application.NewListController(svc, slog.Default())

	ctrl.Init(context.Background())
	ctrl.Delete(context.Background(), ctrl.Find(2))
	ctrl.Wait()

	assert.Equal(t, []int64{1}, ids(ctrl.Recipes()))
	assert.Equal(t, []string{"list", "delete 2"}, api.Calls())
	assert.Equal(t, []string{
		"RecipeService: fetched recipes",
		"RecipeService: deleted recipe id=2",
	}, sink.Messages())
}
