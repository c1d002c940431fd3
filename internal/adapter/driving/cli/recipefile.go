package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

// recipeFile is the on-disk recipe shape. YAML is a superset of JSON, so the
// same decoder reads both. Unknown keys are kept and sent to the backend.
type recipeFile struct {
	ID           int64          `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Ingredients  ingredientList `yaml:"ingredients"`
	Instructions string         `yaml:"instructions"`
	Extra        map[string]any `yaml:",inline"`
}

// ingredientList accepts either a sequence of strings or a single scalar.
type ingredientList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *ingredientList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = ingredientList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return fmt.Errorf("ingredients: %w", err)
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("ingredients: line %d: expected a list or a string", value.Line)
	}
}

// loadRecipeFile reads a YAML or JSON recipe from path. "-" reads stdin.
func loadRecipeFile(path string) (model.Recipe, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Recipe{}, fmt.Errorf("reading recipe file: %w", err)
	}

	return parseRecipe(data)
}

func parseRecipe(data []byte) (model.Recipe, error) {
	if strings.TrimSpace(string(data)) == "" {
		return model.Recipe{}, errors.New("recipe file is empty")
	}

	var f recipeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return model.Recipe{}, fmt.Errorf("parsing recipe file: %w", err)
	}

	r := model.Recipe{
		ID:           f.ID,
		Name:         f.Name,
		Description:  f.Description,
		Ingredients:  []string(f.Ingredients),
		Instructions: f.Instructions,
	}

	if len(f.Extra) > 0 {
		r.Attributes = make(map[string]json.RawMessage, len(f.Extra))
		for k, v := range f.Extra {
			raw, err := json.Marshal(v)
			if err != nil {
				return model.Recipe{}, fmt.Errorf("field %q: %w", k, err)
			}
			r.Attributes[k] = raw
		}
	}

	return r, nil
}
