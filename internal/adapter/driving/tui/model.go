// Package tui implements the terminal recipe list driving adapter.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// footerMessages is how many of the newest status messages the footer shows.
const footerMessages = 3

type mode int

const (
	modeList mode = iota
	modeSearchInput
	modeDetail
)

// recipeItem adapts a recipe to bubbles/list.Item. Held items point into the
// controller's list so they can be deleted by identity.
type recipeItem struct {
	recipe *model.Recipe
	held   bool
}

func (i recipeItem) Title() string {
	if i.recipe.Name == "" {
		return fmt.Sprintf("Recipe #%d", i.recipe.ID)
	}
	return i.recipe.Name
}

func (i recipeItem) Description() string {
	return fmt.Sprintf("%d ingredients", len(i.recipe.Ingredients))
}

func (i recipeItem) FilterValue() string { return i.recipe.Name }

// itemDelegate renders one recipe per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(recipeItem)
	if it.recipe == nil {
		return
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, it.Title(), mutedStyle.Render("· "+it.Description()))
}

// Result messages delivered by commands.
type (
	listLoadedMsg struct{ err *application.OperationError }
	searchDoneMsg struct {
		term    string
		recipes []model.Recipe
		err     *application.OperationError
	}
	detailMsg struct {
		recipe *model.Recipe
		err    *application.OperationError
	}
	deleteDoneMsg struct{ err *application.OperationError }
	messagesMsg   []string
)

var (
	deleteKey  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	searchKey  = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	openKey    = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail"))
)

// Model is the bubbletea model for the recipe list.
type Model struct {
	ctx      context.Context
	ctrl     *application.ListController
	recipes  *application.RecipeService
	messages driven.MessageStore

	list   list.Model
	search textinput.Model
	mode   mode

	searchTerm string // non-empty while showing search results
	detail     *model.Recipe
	lastErr    *application.OperationError
	footer     []string

	width, height int
}

// New creates a Model. ctx bounds every command the model issues.
func New(
	ctx context.Context,
	ctrl *application.ListController,
	recipes *application.RecipeService,
	messages driven.MessageStore,
) Model {
	l := list.New(nil, itemDelegate{}, 76, 15)
	l.Title = "Recipes"
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("recipe", "recipes")
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	extra := func() []key.Binding { return []key.Binding{openKey, searchKey, deleteKey, refreshKey} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "recipe name..."
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		recipes:  recipes,
		messages: messages,
		list:     l,
		search:   ti,
		width:    80,
		height:   24,
	}
}

// Init loads the held list.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Init(m.ctx)
		return listLoadedMsg{err: m.ctrl.LastError()}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.width-4, m.listHeight())
		return m, nil

	case listLoadedMsg:
		m.lastErr = msg.err
		m.searchTerm = ""
		return m, tea.Batch(m.showHeld(), m.loadMessages())

	case searchDoneMsg:
		m.lastErr = msg.err
		m.searchTerm = msg.term
		return m, tea.Batch(m.showResults(msg.recipes), m.loadMessages())

	case detailMsg:
		m.lastErr = msg.err
		if msg.recipe != nil {
			m.detail = msg.recipe
			m.mode = modeDetail
		}
		return m, m.loadMessages()

	case deleteDoneMsg:
		m.lastErr = msg.err
		return m, m.loadMessages()

	case messagesMsg:
		m.footer = msg
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearchInput:
			return m.updateSearchInput(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.searchTerm != "" {
			m.searchTerm = ""
			return m, m.showHeld()
		}
		return m, tea.Quit
	case "r":
		return m, m.refresh()
	case "/":
		m.mode = modeSearchInput
		m.search.SetValue("")
		return m, m.search.Focus()
	case "enter":
		if it, ok := m.list.SelectedItem().(recipeItem); ok {
			return m, m.fetchDetail(it.recipe.ID)
		}
		return m, nil
	case "d":
		return m.deleteSelected()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		term := m.search.Value()
		m.search.Blur()
		m.mode = modeList
		if strings.TrimSpace(term) == "" {
			m.searchTerm = ""
			return m, m.showHeld()
		}
		return m, m.runSearch(term)
	case "esc":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "enter":
		m.mode = modeList
		m.detail = nil
	}
	return m, nil
}

// deleteSelected removes the selected recipe. Held recipes go through the
// controller's optimistic delete; search results not in the held list are
// deleted directly.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	it, ok := m.list.SelectedItem().(recipeItem)
	if !ok {
		return m, nil
	}

	target := it.recipe
	if !it.held {
		target = m.ctrl.Find(it.recipe.ID)
	}

	if target == nil {
		id := model.RecipeID(it.recipe.ID)
		m.list.RemoveItem(m.list.Index())
		return m, func() tea.Msg {
			return deleteDoneMsg{err: m.recipes.Delete(m.ctx, id).Err}
		}
	}

	m.ctrl.Delete(m.ctx, target)
	m.list.RemoveItem(m.list.Index())
	return m, m.waitDelete()
}

// waitDelete reports back once the background delete has finished so the
// footer picks up its status message.
func (m Model) waitDelete() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Wait()
		return deleteDoneMsg{}
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return listLoadedMsg{err: m.ctrl.Refresh(m.ctx)}
	}
}

func (m Model) runSearch(term string) tea.Cmd {
	return func() tea.Msg {
		res := m.recipes.Search(m.ctx, term)
		return searchDoneMsg{term: term, recipes: res.Value, err: res.Err}
	}
}

func (m Model) fetchDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		res := m.recipes.Get(m.ctx, id)
		return detailMsg{recipe: res.Value, err: res.Err}
	}
}

func (m Model) loadMessages() tea.Cmd {
	return func() tea.Msg {
		msgs, err := m.messages.List(m.ctx)
		if err != nil {
			return messagesMsg{"messages unavailable: " + err.Error()}
		}
		start := max(0, len(msgs)-footerMessages)
		texts := make([]string, 0, len(msgs)-start)
		for _, msg := range msgs[start:] {
			texts = append(texts, msg.Text)
		}
		return messagesMsg(texts)
	}
}

func (m *Model) showHeld() tea.Cmd {
	held := m.ctrl.Recipes()
	items := make([]list.Item, 0, len(held))
	for _, r := range held {
		items = append(items, recipeItem{recipe: r, held: true})
	}
	m.list.Title = "Recipes"
	return m.list.SetItems(items)
}

func (m *Model) showResults(recipes []model.Recipe) tea.Cmd {
	items := make([]list.Item, 0, len(recipes))
	for i := range recipes {
		items = append(items, recipeItem{recipe: &recipes[i]})
	}
	m.list.Title = fmt.Sprintf("Results for %q", m.searchTerm)
	return m.list.SetItems(items)
}

func (m Model) listHeight() int {
	// Border, footer and search bar.
	return max(3, m.height-4-footerMessages-2)
}
