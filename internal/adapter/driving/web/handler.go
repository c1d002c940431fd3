// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/recipebook/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	list     *application.ListController
	recipes  *application.RecipeService
	messages driven.MessageStore
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	list *application.ListController,
	recipes *application.RecipeService,
	messages driven.MessageStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		list:     list,
		recipes:  recipes,
		messages: messages,
		logger:   logger,
	}
}

// ListPage renders the held recipe list, or search results when q is set.
func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := vm.ListPageViewModel{
		CSRFToken: csrfToken(w, r),
		Search:    r.URL.Query().Get("q"),
	}

	h.list.Init(ctx)

	if page.Search != "" {
		res := h.recipes.Search(ctx, page.Search)
		page.Searching = true
		page.Failure = toFailureViewModel(res.Err)
		for _, recipe := range res.Value {
			page.Recipes = append(page.Recipes, toRecipeCardViewModel(recipe, h.list.Find(recipe.ID) != nil))
		}
	} else {
		page.Failure = toFailureViewModel(h.list.LastError())
		for _, recipe := range h.list.Recipes() {
			page.Recipes = append(page.Recipes, toRecipeCardViewModel(*recipe, true))
		}
	}

	page.Messages = h.recentMessages(ctx)
	h.render(w, r, http.StatusOK, "Recipes", ListPage(page))
}

// DetailPage renders a single recipe fetched from the backend.
func (h *Handler) DetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	res := h.recipes.Get(ctx, id)

	page := vm.DetailPageViewModel{
		CSRFToken: csrfToken(w, r),
		Failure:   toFailureViewModel(res.Err),
	}
	title := "Recipe unavailable"
	if res.Value != nil {
		detail := toRecipeDetailViewModel(*res.Value)
		page.Recipe = &detail
		title = displayName(*res.Value)
	}
	page.Messages = h.recentMessages(ctx)

	status := http.StatusOK
	if res.Err != nil && res.Err.StatusCode() == http.StatusNotFound {
		status = http.StatusNotFound
	}
	h.render(w, r, status, title, DetailPage(page))
}

// CreateRecipe adds a recipe from the form and reloads the held list.
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := h.recipes.Create(ctx, recipeFromForm(r, model.Recipe{}))
	if !res.OK() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.list.Refresh(ctx)
	http.Redirect(w, r, recipePath(res.Value.ID), http.StatusSeeOther)
}

// UpdateRecipe overlays the form onto the current backend copy so fields the
// form does not edit are sent back unchanged.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	current := h.recipes.Get(ctx, id)
	if current.Value != nil {
		if res := h.recipes.Update(ctx, recipeFromForm(r, *current.Value)); res.OK() {
			h.list.Refresh(ctx)
		}
	}

	http.Redirect(w, r, recipePath(id), http.StatusSeeOther)
}

// DeleteRecipe deletes optimistically when the recipe is in the held list and
// directly through the service otherwise.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	if held := h.list.Find(id); held != nil {
		h.list.Delete(ctx, held)
	} else {
		h.recipes.Delete(ctx, model.RecipeID(id))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Refresh reloads the held list.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.list.Refresh(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ClearMessages empties the message panel.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear messages", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) recentMessages(ctx context.Context) []vm.MessageViewModel {
	msgs, err := h.messages.List(ctx)
	if err != nil {
		h.logger.Error("failed to list messages", "error", err)
		return nil
	}
	return toMessageViewModels(msgs)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := Layout(title, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}

// recipeFromForm overlays the submitted form fields onto base. Textarea line
// breaks arrive as CRLF and are folded back to LF.
func recipeFromForm(r *http.Request, base model.Recipe) model.Recipe {
	base.Name = r.FormValue("name")
	base.Description = normalizeNewlines(r.FormValue("description"))
	base.Ingredients = parseIngredients(r.FormValue("ingredients"))
	base.Instructions = normalizeNewlines(r.FormValue("instructions"))
	return base
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
