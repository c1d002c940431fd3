// Package recipeapi implements the RecipeAPI port over the recipe HTTP API.
package recipeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit/github_secondary_ratelimit"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecipeAPI = (*Client)(nil)

// collectionPath is the recipe collection endpoint relative to the base URL.
const collectionPath = "api/recipes"

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 8 << 20

// maxExcerpt caps the response body excerpt carried by a StatusError.
const maxExcerpt = 200

// Client implements the driven.RecipeAPI port over plain JSON HTTP.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	cache   *writeCache
}

// NewClient creates a recipe API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching), when useCache is set.
//     Any successful write evicts every cached response.
//  2. go-github-ratelimit in detect-only mode. A rate-limit answer is returned
//     to the caller as a terminal status error and the request is never
//     re-sent.
func NewClient(baseURL string, useCache bool) (*Client, error) {
	var (
		base  http.RoundTripper = http.DefaultTransport
		cache *writeCache
	)
	if useCache {
		cache = newWriteCache(httpcache.NewMemoryCache())
		base = httpcache.NewTransport(cache)
	}
	rateLimitClient := github_ratelimit.NewClient(base,
		// WithNoSleep does not apply its limit in v2.0.2, so set it directly.
		github_secondary_ratelimit.WithSingleSleepLimit(0, logRateLimited),
		github_secondary_ratelimit.WithTotalSleepLimit(0, logRateLimited),
	)

	c, err := NewClientWithHTTPClient(rateLimitClient, baseURL)
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

func logRateLimited(cb *github_secondary_ratelimit.CallbackContext) {
	slog.Warn("recipe api rate limited",
		"method", cb.Request.Method,
		"url", cb.Request.URL.String(),
		"reset", cb.ResetTime,
	)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: expected scheme://host", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Client{
		http:    httpClient,
		baseURL: u,
	}, nil
}

// ListRecipes retrieves the whole recipe collection in the order the API returns it.
func (c *Client) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	data, err := c.do(ctx, http.MethodGet, c.collectionURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	recipes, err := decodeRecipes(data)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}

	return recipes, nil
}

// GetRecipe retrieves a single recipe by id.
func (c *Client) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	data, err := c.do(ctx, http.MethodGet, c.itemURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching recipe %d: %w", id, err)
	}

	if isEmptyBody(data) {
		return nil, fmt.Errorf("fetching recipe %d: %w: empty body", id, driven.ErrMalformedPayload)
	}

	recipe, err := decodeRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("fetching recipe %d: %w", id, err)
	}

	return &recipe, nil
}

// UpdateRecipe replaces the full record with a PUT to the collection endpoint.
// The acknowledgement body is returned as-is; an empty body yields nil.
func (c *Client) UpdateRecipe(ctx context.Context, recipe model.Recipe) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPut, c.collectionURL(), encodeRecipe(recipe))
	if err != nil {
		return nil, fmt.Errorf("updating recipe %d: %w", recipe.ID, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("updating recipe %d: %w: acknowledgement is not JSON", recipe.ID, driven.ErrMalformedPayload)
	}

	return json.RawMessage(data), nil
}

// CreateRecipe posts a new recipe. Any id on the input is not sent; the
// response must carry the id assigned by the API.
func (c *Client) CreateRecipe(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	recipe.ID = 0

	data, err := c.do(ctx, http.MethodPost, c.collectionURL(), encodeRecipe(recipe))
	if err != nil {
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	if isEmptyBody(data) {
		return nil, fmt.Errorf("creating recipe: %w: empty body", driven.ErrMalformedPayload)
	}

	created, err := decodeRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("creating recipe: %w", err)
	}
	if !created.HasID() {
		return nil, fmt.Errorf("creating recipe: %w: response has no id", driven.ErrMalformedPayload)
	}

	return &created, nil
}

// DeleteRecipe removes a recipe by id. Returns nil, nil when the API answers
// without echoing the deleted record.
func (c *Client) DeleteRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	data, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("deleting recipe %d: %w", id, err)
	}

	if isEmptyBody(data) {
		return nil, nil
	}

	deleted, err := decodeRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("deleting recipe %d: %w", id, err)
	}

	return &deleted, nil
}

// SearchRecipes lists recipes filtered by the name query parameter.
func (c *Client) SearchRecipes(ctx context.Context, term string) ([]model.Recipe, error) {
	data, err := c.do(ctx, http.MethodGet, c.searchURL(term), nil)
	if err != nil {
		return nil, fmt.Errorf("searching recipes for %q: %w", term, err)
	}

	recipes, err := decodeRecipes(data)
	if err != nil {
		return nil, fmt.Errorf("searching recipes for %q: %w", term, err)
	}

	return recipes, nil
}

// do sends a single request and returns the response body of a 2xx answer.
// Non-2xx answers become *driven.StatusError.
func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	slog.Debug("recipe api call",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(data),
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       excerpt(data),
		}
	}

	if method != http.MethodGet && c.cache != nil {
		c.cache.purge()
	}

	return data, nil
}

func (c *Client) collectionURL() string {
	return c.baseURL.JoinPath(collectionPath).String()
}

func (c *Client) itemURL(id int64) string {
	return c.baseURL.JoinPath(collectionPath, strconv.FormatInt(id, 10)).String()
}

// searchURL keeps the trailing slash on the collection path, matching the
// API's filter endpoint (api/recipes/?name=term).
func (c *Client) searchURL(term string) string {
	u := c.baseURL.JoinPath(collectionPath + "/")
	u.RawQuery = url.Values{"name": []string{term}}.Encode()
	return u.String()
}

func isEmptyBody(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func excerpt(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxExcerpt {
		s = s[:maxExcerpt] + "..."
	}
	return s
}
