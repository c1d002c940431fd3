package recipeapi

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// JSON field names the client interprets. Anything else lands in
// model.Recipe.Attributes.
const (
	fieldID           = "id"
	fieldName         = "name"
	fieldDescription  = "description"
	fieldIngredients  = "ingredients"
	fieldInstructions = "instructions"
)

// decodeRecipes decodes a JSON array of recipes. A null body decodes to an
// empty slice so callers never see nil.
func decodeRecipes(data []byte) ([]model.Recipe, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: expected recipe array: %v", driven.ErrMalformedPayload, err)
	}

	recipes := make([]model.Recipe, 0, len(items))
	for i, item := range items {
		r, err := decodeRecipe(item)
		if err != nil {
			return nil, fmt.Errorf("recipe at index %d: %w", i, err)
		}
		recipes = append(recipes, r)
	}

	return recipes, nil
}

// decodeRecipe maps a JSON object onto model.Recipe, keeping unknown fields
// verbatim in Attributes and the interpreted ones verbatim in Received.
func decodeRecipe(data []byte) (model.Recipe, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.Recipe{}, fmt.Errorf("%w: expected recipe object: %v", driven.ErrMalformedPayload, err)
	}
	if fields == nil {
		return model.Recipe{}, fmt.Errorf("%w: recipe is null", driven.ErrMalformedPayload)
	}

	var r model.Recipe
	for key, raw := range fields {
		var err error
		switch key {
		case fieldID:
			err = json.Unmarshal(raw, &r.ID)
		case fieldName:
			r.Name, err = decodeString(raw)
		case fieldDescription:
			r.Description, err = decodeString(raw)
		case fieldInstructions:
			r.Instructions, err = decodeString(raw)
		case fieldIngredients:
			r.Ingredients, err = decodeIngredients(raw)
		default:
			if r.Attributes == nil {
				r.Attributes = make(map[string]json.RawMessage)
			}
			r.Attributes[key] = raw
			continue
		}
		if err != nil {
			return model.Recipe{}, fmt.Errorf("%w: field %q: %v", driven.ErrMalformedPayload, key, err)
		}
		if key != fieldID {
			if r.Received == nil {
				r.Received = make(map[string]json.RawMessage)
			}
			r.Received[key] = raw
		}
	}

	return r, nil
}

// decodeString accepts a JSON string or null.
func decodeString(raw json.RawMessage) (string, error) {
	var s string
	err := json.Unmarshal(raw, &s)
	return s, err
}

// decodeIngredients accepts either a list of strings or a single string.
func decodeIngredients(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("expected string list or string")
	}
	if single == "" {
		return nil, nil
	}
	return []string{single}, nil
}

// encodeRecipe builds the JSON object sent to the API. Attributes are
// written first so that the interpreted fields always win. A zero id is
// omitted so create requests carry no id.
func encodeRecipe(r model.Recipe) map[string]any {
	out := make(map[string]any, len(r.Attributes)+5)
	for key, raw := range r.Attributes {
		out[key] = raw
	}

	if r.HasID() {
		out[fieldID] = r.ID
	} else {
		delete(out, fieldID)
	}

	putField(out, r.Received, fieldName, r.Name, r.Name == "", decodeString, stringsEqual)
	putField(out, r.Received, fieldDescription, r.Description, r.Description == "", decodeString, stringsEqual)
	putField(out, r.Received, fieldInstructions, r.Instructions, r.Instructions == "", decodeString, stringsEqual)
	putField(out, r.Received, fieldIngredients, r.Ingredients, len(r.Ingredients) == 0, decodeIngredients, slices.Equal[[]string])
	if v, ok := out[fieldIngredients].([]string); ok && v == nil {
		out[fieldIngredients] = []string{}
	}

	return out
}

// putField writes one interpreted field. An unedited field goes out as the
// JSON the backend sent; an edited one as its current value. A field the
// backend never sent is left out while it is still empty.
func putField[T any](
	out map[string]any,
	received map[string]json.RawMessage,
	key string,
	current T,
	empty bool,
	decode func(json.RawMessage) (T, error),
	equal func(a, b T) bool,
) {
	delete(out, key)

	raw, ok := received[key]
	switch {
	case ok:
		if prev, err := decode(raw); err == nil && equal(prev, current) {
			out[key] = raw
			return
		}
		out[key] = current
	case !empty:
		out[key] = current
	}
}

func stringsEqual(a, b string) bool { return a == b }
