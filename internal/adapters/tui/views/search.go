package views

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"navindex/internal/adapters/tui/styles"
	"navindex/internal/application/commands"
	"navindex/internal/ports"
)

const maxSearchResults = 10

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Copy   key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "jump to"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy key"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// SearchModel finds nodes of the current tree by a fragment of their key
type SearchModel struct {
	ViewState
	registry ports.NavigationRegistry
	tree     TreeRef
	input    textinput.Model
	results  []commands.SearchResult
	cursor   int
}

// NewSearchModel creates a new search view model
func NewSearchModel(registry ports.NavigationRegistry) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Key fragment..."
	input.Focus()

	return &SearchModel{
		registry: registry,
		input:    input,
	}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and targets a tree
func (m *SearchModel) Reset(tree TreeRef) {
	m.tree = tree
	m.input.SetValue("")
	m.results = nil
	m.cursor = 0
	m.ClearMessage()
	m.input.Focus()
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		// Drop answers to queries the user has already typed past
		if msg.query != m.input.Value() {
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }

		case key.Matches(msg, SearchKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			if m.cursor < min(len(m.results), maxSearchResults)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Copy):
			if r, ok := m.selected(); ok {
				if err := clipboard.WriteAll(r.Key.String()); err != nil {
					m.SetMessage(fmt.Sprintf("copy failed: %v", err), true)
				} else {
					m.SetMessage("Copied "+r.Key.String(), false)
				}
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if r, ok := m.selected(); ok {
				return m, func() tea.Msg { return SearchSelectMsg{Key: r.Key} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	query := m.input.Value()
	if len(query) >= 2 {
		return m, tea.Batch(cmd, m.search(query))
	}
	m.results = nil
	return m, cmd
}

func (m *SearchModel) selected() (commands.SearchResult, bool) {
	if m.cursor >= 0 && m.cursor < len(m.results) {
		return m.results[m.cursor], true
	}
	return commands.SearchResult{}, false
}

func (m *SearchModel) search(query string) tea.Cmd {
	cmd := commands.NewSearchCommand(m.registry, m.tree.Kind.String(), query, m.tree.Bin)
	return func() tea.Msg {
		results, err := cmd.Execute(context.Background())
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
	err     error
}

// View renders the search view
func (m *SearchModel) View() string {
	v := NewViewBuilder().Title("Search", styles.TreeBadge(m.tree.Kind, m.tree.Bin))
	v.Line(styles.InputFocused.Render(m.input.View())).BlankLine()

	switch {
	case len(m.results) > 0:
		v.Line(styles.Subtitle.Render(fmt.Sprintf("%d results", len(m.results)))).BlankLine()
		for i, r := range m.results[:min(len(m.results), maxSearchResults)] {
			v.Line(m.renderResult(r, i == m.cursor))
		}
		if extra := len(m.results) - maxSearchResults; extra > 0 {
			v.Muted(fmt.Sprintf("... and %d more", extra))
		}
	case len(m.input.Value()) >= 2:
		v.Muted("No results found")
	default:
		v.Muted("Type at least 2 characters to search")
	}

	v.BlankLine().Message(m.Message, m.MessageErr)
	v.Help(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Copy, SearchKeys.Cancel)
	return v.String()
}

func (m *SearchModel) renderResult(r commands.SearchResult, selected bool) string {
	if selected {
		return styles.NodeSelected.Render(fmt.Sprintf("L%d %s", r.Level, r.Key))
	}
	return fmt.Sprintf("%s %s", styles.MutedText.Render(fmt.Sprintf("L%d", r.Level)), HighlightMatch(r.Key, m.input.Value()))
}
