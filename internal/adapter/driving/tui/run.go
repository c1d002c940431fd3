package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// Run starts the terminal list and blocks until the user quits. Pending
// background deletes are awaited before returning.
func Run(
	ctx context.Context,
	ctrl *application.ListController,
	recipes *application.RecipeService,
	messages driven.MessageStore,
) error {
	p := tea.NewProgram(New(ctx, ctrl, recipes, messages), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	ctrl.Wait()
	if err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}
