package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

func (m Model) View() string {
	var b strings.Builder

	if m.mode == modeDetail && m.detail != nil {
		b.WriteString(renderDetail(m.detail))
	} else {
		b.WriteString(m.list.View())
	}

	if m.mode == modeSearchInput {
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(accentStyle.Render("Search recipes") + "\n" + m.search.View()))
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
	}

	b.WriteString("\n")
	b.WriteString(renderFooter(m.footer))

	return panelStyle.Width(max(20, m.width-2)).Render(b.String())
}

func renderDetail(r *model.Recipe) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.Name))
	b.WriteString("\n")
	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(accentStyle.Render("Ingredients"))
	b.WriteString("\n")
	for _, ing := range r.Ingredients {
		b.WriteString("  • ")
		b.WriteString(ing)
		b.WriteString("\n")
	}

	if r.Instructions != "" {
		b.WriteString("\n")
		b.WriteString(accentStyle.Render("Instructions"))
		b.WriteString("\n")
		b.WriteString(r.Instructions)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc back • q quit"))
	return b.String()
}

func renderFooter(lines []string) string {
	if len(lines) == 0 {
		return mutedStyle.Render("no messages")
	}
	styled := make([]string, 0, len(lines))
	for _, l := range lines {
		styled = append(styled, mutedStyle.Render(l))
	}
	return lipgloss.JoinVertical(lipgloss.Left, styled...)
}
