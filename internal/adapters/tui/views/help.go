package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"navindex/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		}
	}
	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	v := NewViewBuilder().Title("navindex Help")

	section(v, "Navigation",
		BrowserKeys.Up, BrowserKeys.Down, BrowserKeys.Left, BrowserKeys.Right,
		BrowserKeys.Enter, BrowserKeys.PageUp, BrowserKeys.PageDown)
	section(v, "Trees",
		BrowserKeys.SwitchBin, BrowserKeys.SwitchKind, BrowserKeys.Rebuild, BrowserKeys.Search)
	section(v, "Structure",
		BrowserKeys.Mark, BrowserKeys.Paste, BrowserKeys.PasteTop,
		BrowserKeys.Trash, BrowserKeys.Remove, BrowserKeys.Restore, BrowserKeys.Copy)
	section(v, "General", BrowserKeys.Help, BrowserKeys.Quit)

	v.Line(styles.InputLabel.Render("Moving and restoring"))
	v.Muted("  Mark a node with m, select the new parent and press p.")
	v.Muted("  A node marked in the bin is restored into the live tree.")
	v.Muted("  P pastes at the top level. d asks before trashing or purging.")
	v.BlankLine()

	v.Help(HelpKeys.Close)
	return v.String()
}

func section(v *ViewBuilder, title string, bindings ...key.Binding) {
	v.Line(styles.InputLabel.Render(title))
	for _, b := range bindings {
		h := b.Help()
		v.Line("  " + styles.HelpKey.Render(padRight(h.Key, 14)) + styles.HelpDesc.Render(h.Desc))
	}
	v.BlankLine()
}

func padRight(s string, length int) string {
	if n := len([]rune(s)); n < length {
		return s + strings.Repeat(" ", length-n)
	}
	return s
}
