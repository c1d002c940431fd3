package recipeapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/recipebook/internal/adapter/driven/recipeapi"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *recipeapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := recipeapi.NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)

	return client
}

// capturedRequest records what the test server received.
type capturedRequest struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        map[string]any
}

func capture(t *testing.T, into *capturedRequest, status int, response string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		into.Method = r.Method
		into.Path = r.URL.Path
		into.Query = r.URL.RawQuery
		into.ContentType = r.Header.Get("Content-Type")

		data, err := io.ReadAll(r.Body)
		if err == nil && len(data) > 0 {
			into.Body = map[string]any{}
			_ = json.Unmarshal(data, &into.Body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	})
}

func TestListRecipes_PreservesOrder(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `[{"id":2,"name":"Stew"},{"id":1,"name":"Soup"}]`))

	recipes, err := client.ListRecipes(context.Background())

	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, int64(2), recipes[0].ID)
	assert.Equal(t, "Stew", recipes[0].Name)
	assert.Equal(t, int64(1), recipes[1].ID)
	assert.Equal(t, "Soup", recipes[1].Name)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/recipes", got.Path)
}

func TestListRecipes_NullBodyIsEmpty(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `null`))

	recipes, err := client.ListRecipes(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, recipes, "should return empty slice, not nil")
	assert.Empty(t, recipes)
}

func TestListRecipes_ServerError(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusInternalServerError, `{"error":"boom"}`))

	recipes, err := client.ListRecipes(context.Background())

	require.Error(t, err)
	assert.Nil(t, recipes)

	var statusErr *driven.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "boom")
}

func TestListRecipes_MalformedPayload(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `{"not":"an array"}`))

	_, err := client.ListRecipes(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrMalformedPayload)
}

func TestGetRecipe_MapsFieldsAndKeepsAttributes(t *testing.T) {
	var got capturedRequest
	body := `{"id":5,"name":"Chili","description":"*hot*","ingredients":["beans","chili"],"instructions":"Simmer.","servings":4,"tags":["spicy"]}`
	client := newTestClient(t, capture(t, &got, http.StatusOK, body))

	recipe, err := client.GetRecipe(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Equal(t, "/api/recipes/5", got.Path)
	assert.Equal(t, int64(5), recipe.ID)
	assert.Equal(t, "Chili", recipe.Name)
	assert.Equal(t, "*hot*", recipe.Description)
	assert.Equal(t, []string{"beans", "chili"}, recipe.Ingredients)
	assert.Equal(t, "Simmer.", recipe.Instructions)
	assert.JSONEq(t, `4`, string(recipe.Attributes["servings"]))
	assert.JSONEq(t, `["spicy"]`, string(recipe.Attributes["tags"]))
}

func TestGetRecipe_SingleStringIngredients(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `{"id":3,"name":"Toast","ingredients":"bread"}`))

	recipe, err := client.GetRecipe(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"bread"}, recipe.Ingredients)
}

func TestGetRecipe_NotFound(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusNotFound, ``))

	recipe, err := client.GetRecipe(context.Background(), 99)

	require.Error(t, err)
	assert.Nil(t, recipe)
	var statusErr *driven.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestGetRecipe_NullBody(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `null`))

	_, err := client.GetRecipe(context.Background(), 1)

	assert.ErrorIs(t, err, driven.ErrMalformedPayload)
}

func TestUpdateRecipe_SendsFullRecord(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `{"ok":true}`))

	recipe := model.Recipe{
		ID:         7,
		Name:       "Gumbo",
		Attributes: map[string]json.RawMessage{"servings": json.RawMessage(`6`)},
	}
	ack, err := client.UpdateRecipe(context.Background(), recipe)

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(ack))
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/recipes", got.Path)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, float64(7), got.Body["id"])
	assert.Equal(t, "Gumbo", got.Body["name"])
	assert.Equal(t, float64(6), got.Body["servings"])
}

func TestUpdateRecipe_ResendsUneditedFieldsAsReceived(t *testing.T) {
	var got capturedRequest
	body := `{"id":3,"ingredients":"salt","description":"","instructions":null}`
	client := newTestClient(t, capture(t, &got, http.StatusOK, body))

	recipe, err := client.GetRecipe(context.Background(), 3)
	require.NoError(t, err)

	_, err = client.UpdateRecipe(context.Background(), *recipe)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":           float64(3),
		"ingredients":  "salt",
		"description":  "",
		"instructions": nil,
	}, got.Body)
}

func TestUpdateRecipe_SendsEditedFields(t *testing.T) {
	var got capturedRequest
	body := `{"id":3,"name":"Toast","ingredients":"bread","description":"Crisp"}`
	client := newTestClient(t, capture(t, &got, http.StatusOK, body))

	recipe, err := client.GetRecipe(context.Background(), 3)
	require.NoError(t, err)

	recipe.Ingredients = []string{"bread", "butter"}
	recipe.Description = ""
	_, err = client.UpdateRecipe(context.Background(), *recipe)

	require.NoError(t, err)
	assert.Equal(t, "Toast", got.Body["name"])
	assert.Equal(t, []any{"bread", "butter"}, got.Body["ingredients"])
	assert.Equal(t, "", got.Body["description"])
	assert.NotContains(t, got.Body, "instructions")
}

func TestUpdateRecipe_EmptyAcknowledgement(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusNoContent, ``))

	ack, err := client.UpdateRecipe(context.Background(), model.Recipe{ID: 1, Name: "Soup"})

	require.NoError(t, err)
	assert.Nil(t, ack)
}

func TestCreateRecipe_OmitsIDAndReturnsAssigned(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusCreated, `{"id":11,"name":"Pho"}`))

	created, err := client.CreateRecipe(context.Background(), model.Recipe{ID: 99, Name: "Pho"})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(11), created.ID)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/recipes", got.Path)
	assert.Equal(t, "application/json", got.ContentType)
	assert.NotContains(t, got.Body, "id")
	assert.Equal(t, "Pho", got.Body["name"])
}

func TestCreateRecipe_ResponseWithoutID(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusCreated, `{"name":"Pho"}`))

	created, err := client.CreateRecipe(context.Background(), model.Recipe{Name: "Pho"})

	require.Error(t, err)
	assert.Nil(t, created)
	assert.ErrorIs(t, err, driven.ErrMalformedPayload)
}

func TestDeleteRecipe_EchoedRecord(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `{"id":2,"name":"Stew"}`))

	deleted, err := client.DeleteRecipe(context.Background(), 2)

	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "Stew", deleted.Name)
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "/api/recipes/2", got.Path)
	assert.Equal(t, "application/json", got.ContentType)
}

func TestDeleteRecipe_EmptyBody(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusNoContent, ``))

	deleted, err := client.DeleteRecipe(context.Background(), 2)

	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestSearchRecipes_EscapesTerm(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, capture(t, &got, http.StatusOK, `[{"id":4,"name":"Pot pie"}]`))

	recipes, err := client.SearchRecipes(context.Background(), "pot pie&x=1")

	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "/api/recipes/", got.Path)
	assert.Equal(t, "name=pot+pie%26x%3D1", got.Query)
}

func TestNewClientWithHTTPClient_BasePath(t *testing.T) {
	var got capturedRequest
	server := httptest.NewServer(capture(t, &got, http.StatusOK, `[]`))
	t.Cleanup(server.Close)

	client, err := recipeapi.NewClientWithHTTPClient(server.Client(), server.URL+"/v2")
	require.NoError(t, err)

	_, err = client.ListRecipes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/v2/api/recipes", got.Path)
}

func TestNewClientWithHTTPClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "no scheme", url: "localhost:3000"},
		{name: "empty", url: ""},
		{name: "bad escape", url: "http://host/%zz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := recipeapi.NewClientWithHTTPClient(http.DefaultClient, tc.url)
			assert.Error(t, err)
		})
	}
}

func TestListRecipes_ContextDeadline(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client := newTestClient(t, handler)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListRecipes(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

// rateLimitBody is a secondary rate limit answer in the shape the rate-limit
// transport recognises.
const rateLimitBody = `{"message":"You have exceeded a secondary rate limit","documentation_url":"https://docs.example.com/secondary-rate-limits"}`

func TestNewClient_RateLimitIsNotRetried(t *testing.T) {
	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if posts.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, rateLimitBody)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7,"name":"Soup"}`)
	}))
	t.Cleanup(server.Close)

	client, err := recipeapi.NewClient(server.URL, false)
	require.NoError(t, err)

	created, err := client.CreateRecipe(context.Background(), model.Recipe{Name: "Soup"})

	require.Error(t, err)
	assert.Nil(t, created)
	var statusErr *driven.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, int32(1), posts.Load())

	// The limit is not remembered, so the next call goes straight out.
	created, err = client.CreateRecipe(context.Background(), model.Recipe{Name: "Soup"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, int32(2), posts.Load())
}

func TestNewClient_CachesListUntilWrite(t *testing.T) {
	var (
		gets    atomic.Int32
		deleted atomic.Bool
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			deleted.Store(true)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		gets.Add(1)
		w.Header().Set("Cache-Control", "max-age=60")
		if deleted.Load() {
			_, _ = io.WriteString(w, `[{"id":1,"name":"Soup"}]`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":1,"name":"Soup"},{"id":2,"name":"Stew"}]`)
	}))
	t.Cleanup(server.Close)

	client, err := recipeapi.NewClient(server.URL, true)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := client.ListRecipes(ctx)
	require.NoError(t, err)
	second, err := client.ListRecipes(ctx)
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
	assert.Equal(t, int32(1), gets.Load(), "second list should be served from cache")

	_, err = client.DeleteRecipe(ctx, 2)
	require.NoError(t, err)

	after, err := client.ListRecipes(ctx)

	require.NoError(t, err)
	assert.Len(t, after, 1)
	assert.Equal(t, int32(2), gets.Load())
}
