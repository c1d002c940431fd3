package web

import (
	"fmt"
	"sort"
	"strings"
	"time"

	vm "github.com/ericfisherdev/recipebook/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

const summaryLength = 120

// toRecipeCardViewModel converts a recipe to a list row. held marks rows that
// belong to the controller's list and can be deleted optimistically.
func toRecipeCardViewModel(r model.Recipe, held bool) vm.RecipeCardViewModel {
	return vm.RecipeCardViewModel{
		ID:              r.ID,
		Name:            displayName(r),
		Summary:         summarize(r.Description),
		IngredientCount: len(r.Ingredients),
		Held:            held,
		DetailPath:      recipePath(r.ID),
		DeletePath:      recipePath(r.ID) + "/delete",
	}
}

// toRecipeDetailViewModel converts a recipe to the detail page model,
// rendering the free-text fields as sanitized markdown.
func toRecipeDetailViewModel(r model.Recipe) vm.RecipeDetailViewModel {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]vm.AttributeViewModel, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, vm.AttributeViewModel{Key: k, Value: string(r.Attributes[k])})
	}

	return vm.RecipeDetailViewModel{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		DescriptionHTML:  RenderMarkdown(r.Description),
		Ingredients:      ingredients,
		IngredientsText:  strings.Join(ingredients, "\n"),
		Instructions:     r.Instructions,
		InstructionsHTML: RenderInstructions(r.Instructions),
		Attributes:       attrs,
		UpdatePath:       recipePath(r.ID),
		DeletePath:       recipePath(r.ID) + "/delete",
	}
}

func toMessageViewModels(msgs []model.Message) []vm.MessageViewModel {
	out := make([]vm.MessageViewModel, 0, len(msgs))
	// Newest first.
	for i := len(msgs) - 1; i >= 0; i-- {
		out = append(out, vm.MessageViewModel{
			Text: msgs[i].Text,
			Time: msgs[i].CreatedAt.Local().Format(time.TimeOnly),
		})
	}
	return out
}

func toFailureViewModel(e *application.OperationError) *vm.FailureViewModel {
	if e == nil {
		return nil
	}
	return &vm.FailureViewModel{
		Operation: e.Op,
		Kind:      string(e.Kind),
		Message:   e.Err.Error(),
	}
}

// parseIngredients splits the edit form's textarea into one ingredient per
// non-blank line.
func parseIngredients(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func recipePath(id int64) string {
	return fmt.Sprintf("/recipes/%d", id)
}

func displayName(r model.Recipe) string {
	if r.Name == "" {
		return fmt.Sprintf("Recipe #%d", r.ID)
	}
	return r.Name
}

func summarize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= summaryLength {
		return s
	}
	return string(runes[:summaryLength-1]) + "…"
}
