package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// recipeJSON is the --json shape of a recipe. Attributes are flattened back
// into the object so the output matches what the backend serves.
func recipeJSON(r model.Recipe) map[string]any {
	out := make(map[string]any, len(r.Attributes)+5)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out["id"] = r.ID
	out["name"] = r.Name
	if r.Description != "" {
		out["description"] = r.Description
	}
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	out["ingredients"] = ingredients
	if r.Instructions != "" {
		out["instructions"] = r.Instructions
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func printRecipes(w io.Writer, recipes []model.Recipe, asJSON bool) error {
	if asJSON {
		out := make([]map[string]any, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, recipeJSON(r))
		}
		return writeJSON(w, out)
	}

	if len(recipes) == 0 {
		_, err := fmt.Fprintln(w, "No recipes.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "INGREDIENTS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range recipes {
		t.Row(strconv.FormatInt(r.ID, 10), r.Name, strconv.Itoa(len(r.Ingredients)))
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printRecipe(w io.Writer, r model.Recipe, asJSON bool) error {
	if asJSON {
		return writeJSON(w, recipeJSON(r))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", r.Name, r.ID)
	if r.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Description)
	}
	if len(r.Ingredients) > 0 {
		b.WriteString("\nIngredients:\n")
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&b, "  - %s\n", ing)
		}
	}
	if r.Instructions != "" {
		fmt.Fprintf(&b, "\nInstructions:\n%s\n", r.Instructions)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func printMessages(w io.Writer, msgs []model.Message, asJSON bool) error {
	if asJSON {
		type messageJSON struct {
			ID        int64  `json:"id"`
			Text      string `json:"text"`
			CreatedAt string `json:"created_at"`
		}
		out := make([]messageJSON, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, messageJSON{ID: m.ID, Text: m.Text, CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339)})
		}
		return writeJSON(w, out)
	}

	for _, m := range msgs {
		if _, err := fmt.Fprintf(w, "%s  %s\n", m.CreatedAt.Local().Format(time.TimeOnly), m.Text); err != nil {
			return err
		}
	}
	return nil
}
