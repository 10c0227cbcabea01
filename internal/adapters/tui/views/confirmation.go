package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"navindex/internal/adapters/tui/styles"
	"navindex/internal/application/commands"
	"navindex/internal/domain"
)

// ConfirmAction is a destructive change that needs a second keypress
type ConfirmAction int

const (
	ActionTrash ConfirmAction = iota
	ActionRemove
	ActionPurge
)

func (a ConfirmAction) String() string {
	switch a {
	case ActionTrash:
		return "Trash"
	case ActionRemove:
		return "Remove"
	case ActionPurge:
		return "Purge"
	default:
		return "Unknown"
	}
}

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// ConfirmModel asks before trashing, removing or purging a subtree
type ConfirmModel struct {
	ViewState
	env    commands.Env
	keys   ConfirmKeyMap
	action ConfirmAction
	tree   TreeRef
	node   *domain.TreeNode
}

// NewConfirmModel creates a new confirmation view model
func NewConfirmModel(env commands.Env) *ConfirmModel {
	return &ConfirmModel{
		env:  env,
		keys: DefaultConfirmKeys,
	}
}

// SetTarget sets the action and the node it applies to
func (m *ConfirmModel) SetTarget(action ConfirmAction, tree TreeRef, node *domain.TreeNode) {
	m.action = action
	m.tree = tree
	m.node = node
	m.ClearMessage()
}

// Init initializes the confirmation view
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the confirmation view
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		case key.Matches(msg, m.keys.Confirm):
			return m, m.execute
		}
	}
	return m, nil
}

func (m *ConfirmModel) execute() tea.Msg {
	if m.node == nil {
		return MutationDoneMsg{Err: fmt.Errorf("no target selected")}
	}

	kind, k := m.tree.Kind.String(), m.node.Key.String()
	var cmd interface {
		Execute(ctx context.Context) (*commands.MutationResult, error)
	}
	switch m.action {
	case ActionTrash:
		cmd = commands.NewTrashCommand(m.env, kind, k)
	case ActionRemove:
		cmd = commands.NewRemoveCommand(m.env, kind, k)
	case ActionPurge:
		cmd = commands.NewPurgeCommand(m.env, kind, k)
	default:
		return MutationDoneMsg{Err: fmt.Errorf("unknown action %d", m.action)}
	}

	result, err := cmd.Execute(context.Background())
	if err != nil {
		return MutationDoneMsg{Err: err}
	}
	return MutationDoneMsg{Message: result.Message}
}

// View renders the confirmation view
func (m *ConfirmModel) View() string {
	v := NewViewBuilder().Title(m.action.String()+" Confirmation", styles.TreeBadge(m.tree.Kind, m.tree.Bin))

	if m.action != ActionTrash {
		v.Line(styles.ErrorMsg.Render("This action cannot be undone!")).BlankLine()
	}

	if m.node != nil {
		v.Line(styles.InputLabel.Render(m.action.String() + " node:"))
		v.Line("  " + m.node.Key.String())
		if n := m.node.Count() - 1; n > 0 {
			v.Muted(fmt.Sprintf("  and %d descendants", n))
		}
		v.BlankLine()
	}

	v.Message(m.Message, m.MessageErr)
	v.Line(renderConfirmPrompt("Are you sure?"))
	return v.String()
}

func renderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}
