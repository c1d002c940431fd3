// Package viewmodel defines presentation-ready structs for the web components.
// View models decouple rendering from domain model types.
package viewmodel

// RecipeCardViewModel holds presentation-ready data for one row of the recipe list.
type RecipeCardViewModel struct {
	ID              int64
	Name            string
	Summary         string
	IngredientCount int
	Held            bool
	DetailPath      string
	DeletePath      string
}

// RecipeDetailViewModel holds presentation-ready data for the detail and edit page.
type RecipeDetailViewModel struct {
	ID               int64
	Name             string
	Description      string
	DescriptionHTML  string
	Ingredients      []string
	IngredientsText  string
	Instructions     string
	InstructionsHTML string
	Attributes       []AttributeViewModel
	UpdatePath       string
	DeletePath       string
}

// AttributeViewModel is a backend field the client does not model, shown read-only.
type AttributeViewModel struct {
	Key   string
	Value string
}

// MessageViewModel is one entry of the status message panel.
type MessageViewModel struct {
	Text string
	Time string
}

// FailureViewModel describes why the last recipe operation failed.
type FailureViewModel struct {
	Operation string
	Kind      string
	Message   string
}

// ListPageViewModel is everything the list page renders.
type ListPageViewModel struct {
	CSRFToken string
	Search    string
	Searching bool
	Recipes   []RecipeCardViewModel
	Messages  []MessageViewModel
	Failure   *FailureViewModel
}

// DetailPageViewModel is everything the detail page renders. Recipe is nil
// when the recipe could not be loaded.
type DetailPageViewModel struct {
	CSRFToken string
	Recipe    *RecipeDetailViewModel
	Messages  []MessageViewModel
	Failure   *FailureViewModel
}
