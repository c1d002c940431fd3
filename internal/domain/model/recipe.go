package model

import "encoding/json"

// Recipe is a recipe record owned by the remote recipe API. The client only
// relies on ID; every other field is descriptive.
type Recipe struct {
	ID           int64
	Name         string
	Description  string
	Ingredients  []string
	Instructions string

	// Attributes holds the backend fields the client does not interpret,
	// keyed by JSON field name. They are sent back unchanged on update.
	Attributes map[string]json.RawMessage

	// Received keeps the interpreted fields exactly as the backend sent them.
	// An interpreted field whose value has not been edited is sent back in
	// this form, so its original JSON shape survives an update.
	Received map[string]json.RawMessage
}

// RecipeRef identifies a recipe for addressing by ID. Both Recipe and
// RecipeID satisfy it, so callers can pass either a full record or a raw id.
type RecipeRef interface {
	RecipeID() int64
}

// RecipeID is a bare recipe identifier.
type RecipeID int64

// RecipeID returns the identifier itself.
func (id RecipeID) RecipeID() int64 { return int64(id) }

// RecipeID returns the record's backend-assigned identifier.
func (r Recipe) RecipeID() int64 { return r.ID }

// HasID reports whether the backend has assigned an identifier.
func (r Recipe) HasID() bool { return r.ID != 0 }
