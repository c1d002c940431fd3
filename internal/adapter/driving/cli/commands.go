package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/recipebook/internal/adapter/driving/tui"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

func (r *runner) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web GUI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if r.app.Serve == nil {
				return errors.New("serve is not available")
			}
			return r.app.Serve(cmd.Context())
		},
	}
}

func (r *runner) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse recipes in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), r.app.List, r.app.Recipes, r.app.Messages)
		},
	}
}

func (r *runner) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := r.app.Recipes.List(cmd.Context())
			if !res.OK() {
				r.fail(cmd, res.Err)
				return nil
			}
			return printRecipes(cmd.OutOrStdout(), res.Value, r.opts.jsonOutput)
		},
	}
}

func (r *runner) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			res := r.app.Recipes.Get(cmd.Context(), id)
			if !res.OK() {
				r.fail(cmd, res.Err)
				return nil
			}
			return printRecipe(cmd.OutOrStdout(), *res.Value, r.opts.jsonOutput)
		},
	}
}

func (r *runner) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Find recipes by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := r.app.Recipes.Search(cmd.Context(), args[0])
			if !res.OK() {
				r.fail(cmd, res.Err)
				return nil
			}
			return printRecipes(cmd.OutOrStdout(), res.Value, r.opts.jsonOutput)
		},
	}
}

func (r *runner) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create FILE",
		Short: "Add a recipe from a YAML or JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipeFile(args[0])
			if err != nil {
				return err
			}

			res := r.app.Recipes.Create(cmd.Context(), recipe)
			if !res.OK() {
				r.fail(cmd, res.Err)
				return nil
			}
			return printRecipe(cmd.OutOrStdout(), *res.Value, r.opts.jsonOutput)
		},
	}
}

func (r *runner) updateCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "update FILE",
		Short: "Replace a recipe with the contents of a YAML or JSON file",
		Long: `Replace a recipe with the contents of FILE. The recipe id comes from the
file's id field unless --id is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipeFile(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("id") {
				recipe.ID = id
			}

			res := r.app.Recipes.Update(cmd.Context(), recipe)
			if !res.OK() {
				r.fail(cmd, res.Err)
				return nil
			}

			if r.opts.jsonOutput && res.Value != nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(res.Value))
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated recipe %d\n", recipe.ID)
			return err
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Recipe id to update")
	return cmd
}

func (r *runner) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			res := r.app.Recipes.Delete(cmd.Context(), model.RecipeID(id))
			if !res.OK() {
				r.fail(cmd, res.Err)
				return nil
			}
			if r.opts.jsonOutput && res.Value != nil {
				return writeJSON(cmd.OutOrStdout(), recipeJSON(*res.Value))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %d\n", id)
			return err
		},
	}
}

func (r *runner) messagesCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the recorded status messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clearAll {
				if err := r.app.Messages.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clearing messages: %w", err)
				}
				return nil
			}

			msgs, err := r.app.Messages.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing messages: %w", err)
			}
			return printMessages(cmd.OutOrStdout(), msgs, r.opts.jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Discard all recorded messages")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id %q", s)
	}
	return id, nil
}
