package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"navindex/internal/adapters/tui/styles"
	"navindex/internal/application/commands"
	"navindex/internal/domain"
)

// Rows taken by the title, status and help lines around the tree
const browserChrome = 10

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Enter      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	SwitchBin  key.Binding
	SwitchKind key.Binding
	Rebuild    key.Binding
	Copy       key.Binding
	Mark       key.Binding
	Paste      key.Binding
	PasteTop   key.Binding
	Trash      key.Binding
	Remove     key.Binding
	Restore    key.Binding
	Search     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	SwitchBin: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "live/bin"),
	),
	SwitchKind: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "kind"),
	),
	Rebuild: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rebuild"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy key"),
	),
	Mark: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark"),
	),
	Paste: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "paste under"),
	),
	PasteTop: key.NewBinding(
		key.WithKeys("P"),
		key.WithHelp("P", "paste at top"),
	),
	Trash: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "trash/purge"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
	Restore: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "restore"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// mark remembers a node cut for a later move or restore
type mark struct {
	tree TreeRef
	key  uuid.UUID
}

// BrowserModel is the model for the tree browser view
type BrowserModel struct {
	ViewState
	env        commands.Env
	tree       TreeRef
	root       *domain.TreeNode
	flatNodes  []*domain.TreeNode
	scroll     *Scroller
	expanded   map[TreeRef]map[uuid.UUID]bool
	marked     *mark
	selectKey  uuid.UUID // restore the cursor here after a reload
	rebuilding bool
	spinner    spinner.Model
}

// NewBrowserModel creates a new browser model over the live document tree
func NewBrowserModel(env commands.Env) *BrowserModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &BrowserModel{
		env:      env,
		tree:     TreeRef{Kind: domain.ItemKindDocument},
		scroll:   NewScroller(20),
		expanded: make(map[TreeRef]map[uuid.UUID]bool),
		spinner:  s,
	}
}

// Tree returns the tree currently shown
func (m *BrowserModel) Tree() TreeRef {
	return m.tree
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadTree()
}

func (m *BrowserModel) loadTree() tea.Cmd {
	tree := m.tree
	cmd := commands.NewBuildTreeCommand(m.env.Registry, tree.Kind.String(), tree.Bin)
	return func() tea.Msg {
		root, err := cmd.Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return treeLoadedMsg{tree: tree, root: root}
	}
}

type treeLoadedMsg struct {
	tree TreeRef
	root *domain.TreeNode
}

type errMsg struct {
	err error
}

type rebuildDoneMsg struct {
	result *commands.RebuildResult
	err    error
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case treeLoadedMsg:
		if msg.tree != m.tree {
			return m, nil // stale load from before a tree switch
		}
		m.applyTree(msg.root)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case MutationDoneMsg:
		if msg.Err != nil {
			m.SetMessage(msg.Err.Error(), true)
			return m, nil
		}
		m.SetMessage(msg.Message, false)
		return m, m.Reload()

	case rebuildDoneMsg:
		m.rebuilding = false
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		text := msg.result.Message
		if len(msg.result.NotifyErrors) > 0 {
			text += fmt.Sprintf(" (%d broadcasts failed)", len(msg.result.NotifyErrors))
		}
		m.SetMessage(text, false)
		return m, m.Reload()

	case spinner.TickMsg:
		if !m.rebuilding {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.ClearMessage()

	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		m.scroll.Up()

	case key.Matches(msg, BrowserKeys.Down):
		m.scroll.Down()

	case key.Matches(msg, BrowserKeys.PageUp):
		m.scroll.PageUp()

	case key.Matches(msg, BrowserKeys.PageDown):
		m.scroll.PageDown()

	case key.Matches(msg, BrowserKeys.Left):
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		if node.IsExpanded && !node.IsLeaf() {
			m.setExpanded(node, false)
			m.refreshFlatNodes()
		} else if node.Parent != nil && !node.Parent.IsSyntheticRoot() {
			m.selectNode(node.Parent)
		}

	case key.Matches(msg, BrowserKeys.Right):
		if node := m.selectedNode(); node != nil && !node.IsLeaf() {
			m.setExpanded(node, true)
			m.refreshFlatNodes()
		}

	case key.Matches(msg, BrowserKeys.Enter):
		if node := m.selectedNode(); node != nil && !node.IsLeaf() {
			m.setExpanded(node, !node.IsExpanded)
			m.refreshFlatNodes()
		}

	case key.Matches(msg, BrowserKeys.SwitchBin):
		return m.switchTree(TreeRef{Kind: m.tree.Kind, Bin: !m.tree.Bin})

	case key.Matches(msg, BrowserKeys.SwitchKind):
		return m.switchTree(TreeRef{Kind: nextKind(m.tree.Kind), Bin: m.tree.Bin})

	case key.Matches(msg, BrowserKeys.Rebuild):
		if m.rebuilding {
			return nil
		}
		m.rebuilding = true
		return tea.Batch(m.spinner.Tick, m.rebuild())

	case key.Matches(msg, BrowserKeys.Copy):
		if node := m.selectedNode(); node != nil {
			if err := clipboard.WriteAll(node.Key.String()); err != nil {
				m.SetMessage(fmt.Sprintf("copy failed: %v", err), true)
			} else {
				m.SetMessage("Copied "+node.Key.String(), false)
			}
		}

	case key.Matches(msg, BrowserKeys.Mark):
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		if m.marked != nil && m.marked.key == node.Key {
			m.marked = nil
			m.SetMessage("Mark cleared", false)
			return nil
		}
		m.marked = &mark{tree: m.tree, key: node.Key}
		m.SetMessage(fmt.Sprintf("Marked %s, select a parent and press p", ShortKey(node.Key)), false)

	case key.Matches(msg, BrowserKeys.Paste):
		if node := m.selectedNode(); node != nil {
			return m.paste(node.Key)
		}

	case key.Matches(msg, BrowserKeys.PasteTop):
		return m.paste(uuid.Nil)

	case key.Matches(msg, BrowserKeys.Restore):
		node := m.selectedNode()
		if node == nil || !m.tree.Bin {
			return nil
		}
		cmd := commands.NewRestoreCommand(m.env, m.tree.Kind.String(), node.Key.String(), "")
		return mutate(cmd.Execute)

	case key.Matches(msg, BrowserKeys.Trash):
		if node := m.selectedNode(); node != nil {
			action := ActionTrash
			if m.tree.Bin {
				action = ActionPurge
			}
			return m.confirm(action, node)
		}

	case key.Matches(msg, BrowserKeys.Remove):
		if node := m.selectedNode(); node != nil && !m.tree.Bin {
			return m.confirm(ActionRemove, node)
		}

	case key.Matches(msg, BrowserKeys.Search):
		tree := m.tree
		return func() tea.Msg { return SwitchToSearchMsg{Tree: tree} }

	case key.Matches(msg, BrowserKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}

	return nil
}

func (m *BrowserModel) confirm(action ConfirmAction, node *domain.TreeNode) tea.Cmd {
	tree := m.tree
	return func() tea.Msg {
		return SwitchToConfirmMsg{Action: action, Tree: tree, Node: node}
	}
}

// paste moves or restores the marked node under target, uuid.Nil meaning
// the top level. Marks from the bin are restored into the live tree.
func (m *BrowserModel) paste(target uuid.UUID) tea.Cmd {
	if m.marked == nil {
		m.SetMessage("Nothing marked, press m on a node first", true)
		return nil
	}
	if m.tree.Bin || m.tree.Kind != m.marked.tree.Kind {
		m.SetMessage(fmt.Sprintf("Paste into the live %s tree", m.marked.tree.Kind), true)
		return nil
	}

	kind, k := m.tree.Kind.String(), m.marked.key.String()
	t := ""
	if target != uuid.Nil {
		t = target.String()
	}

	mk := m.marked
	m.marked = nil
	m.selectKey = mk.key
	if mk.tree.Bin {
		return mutate(commands.NewRestoreCommand(m.env, kind, k, t).Execute)
	}
	return mutate(commands.NewMoveCommand(m.env, kind, k, t).Execute)
}

func mutate(execute func(context.Context) (*commands.MutationResult, error)) tea.Cmd {
	return func() tea.Msg {
		result, err := execute(context.Background())
		if err != nil {
			return MutationDoneMsg{Err: err}
		}
		msg := result.Message
		if result.Reconciled {
			msg += " (reconciled with store)"
		}
		return MutationDoneMsg{Message: msg}
	}
}

func (m *BrowserModel) rebuild() tea.Cmd {
	cmd := commands.NewRebuildCommand(m.env, m.tree.Kind.String(), m.tree.Bin)
	cmd.Broadcast = true
	return func() tea.Msg {
		result, err := cmd.Execute(context.Background())
		return rebuildDoneMsg{result: result, err: err}
	}
}

func (m *BrowserModel) switchTree(tree TreeRef) tea.Cmd {
	m.tree = tree
	m.root = nil
	m.flatNodes = nil
	m.selectKey = uuid.Nil
	m.scroll.SetTotal(0)
	return m.loadTree()
}

func nextKind(kind domain.ItemKind) domain.ItemKind {
	for i, k := range domain.ItemKinds {
		if k == kind {
			return domain.ItemKinds[(i+1)%len(domain.ItemKinds)]
		}
	}
	return domain.ItemKinds[0]
}

func (m *BrowserModel) setExpanded(node *domain.TreeNode, expanded bool) {
	set := m.expanded[m.tree]
	if set == nil {
		set = make(map[uuid.UUID]bool)
		m.expanded[m.tree] = set
	}
	if expanded {
		node.Expand()
		set[node.Key] = true
	} else {
		node.Collapse()
		delete(set, node.Key)
	}
}

// applyTree installs a freshly built tree, keeping expansion and selection
func (m *BrowserModel) applyTree(root *domain.TreeNode) {
	selected := m.selectKey
	if node := m.selectedNode(); selected == uuid.Nil && node != nil {
		selected = node.Key
	}

	for k := range m.expanded[m.tree] {
		if node := root.Find(k); node != nil {
			node.Expand()
		} else {
			delete(m.expanded[m.tree], k)
		}
	}
	m.root = root
	m.selectKey = uuid.Nil
	m.refreshFlatNodes()

	if selected != uuid.Nil {
		m.Reveal(selected)
	}
}

// Reveal expands the ancestors of key and moves the cursor onto it
func (m *BrowserModel) Reveal(k uuid.UUID) bool {
	if m.root == nil {
		return false
	}
	node := m.root.Find(k)
	if node == nil || node.IsSyntheticRoot() {
		return false
	}
	for p := node.Parent; p != nil && !p.IsSyntheticRoot(); p = p.Parent {
		m.setExpanded(p, true)
	}
	m.refreshFlatNodes()
	m.selectNode(node)
	return true
}

func (m *BrowserModel) selectNode(node *domain.TreeNode) {
	for i, n := range m.flatNodes {
		if n == node {
			m.scroll.SetCursor(i)
			return
		}
	}
}

func (m *BrowserModel) selectedNode() *domain.TreeNode {
	if c := m.scroll.Cursor(); c >= 0 && c < len(m.flatNodes) {
		return m.flatNodes[c]
	}
	return nil
}

func (m *BrowserModel) refreshFlatNodes() {
	if m.root == nil {
		return
	}
	m.flatNodes = m.root.Flatten()
	// Skip the synthetic root in display
	if len(m.flatNodes) > 0 {
		m.flatNodes = m.flatNodes[1:]
	}
	m.scroll.SetTotal(len(m.flatNodes))
}

// View renders the browser
func (m *BrowserModel) View() string {
	v := NewViewBuilder().Title("navindex", styles.TreeBadge(m.tree.Kind, m.tree.Bin))

	if m.root == nil {
		v.Muted("Loading...")
		return v.Message(m.Message, m.MessageErr).String()
	}

	v.Line(styles.Subtitle.Render(fmt.Sprintf("%d nodes, %d roots", m.root.Count(), len(m.root.Children)))).BlankLine()

	if len(m.flatNodes) == 0 {
		if m.tree.Bin {
			v.Muted("The recycle bin is empty")
		} else {
			v.Muted("No nodes")
		}
	}

	if n := m.scroll.Above(); n > 0 {
		v.Muted(fmt.Sprintf("  ↑ %d more", n))
	}
	start, end := m.scroll.VisibleRange()
	for i := start; i < end; i++ {
		v.Line(m.renderNode(m.flatNodes[i], i == m.scroll.Cursor()))
	}
	if n := m.scroll.Below(); n > 0 {
		v.Muted(fmt.Sprintf("  ↓ %d more", n))
	}
	v.BlankLine()

	if m.rebuilding {
		v.Line(m.spinner.View() + " Rebuilding " + m.tree.Kind.String() + "...")
	}
	if m.marked != nil {
		v.Line(styles.NodeMarked.Render("marked: " + m.marked.key.String()))
	}
	v.Message(m.Message, m.MessageErr)
	v.Help(BrowserKeys.Up, BrowserKeys.Right, BrowserKeys.SwitchBin, BrowserKeys.SwitchKind,
		BrowserKeys.Rebuild, BrowserKeys.Search, BrowserKeys.Help, BrowserKeys.Quit)
	return v.String()
}

func (m *BrowserModel) renderNode(node *domain.TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth()-1)

	var prefix string
	switch {
	case node.IsLeaf():
		prefix = styles.TreeLeaf
	case node.IsExpanded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.Key.String()
	if !node.IsLeaf() && !node.IsExpanded {
		text += fmt.Sprintf(" (%d)", len(node.Children))
	}

	var style lipgloss.Style
	switch {
	case m.marked != nil && m.marked.key == node.Key && m.marked.tree == m.tree:
		style = styles.NodeMarked
	case node.Trashed:
		style = styles.NodeTrashed
	case node.Level == 1:
		style = styles.NodeRoot.Foreground(styles.KindColor(node.Kind))
	case !node.IsLeaf():
		style = styles.NodeBranch
	default:
		style = styles.NodeLeaf
	}

	if selected {
		style = styles.NodeSelected
	}
	return indent + styles.TreeBranch.Render(prefix) + style.Render(text)
}

// SetSize updates the view dimensions
func (m *BrowserModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.scroll.SetHeight(height - browserChrome)
}

// Reload rebuilds the browser's view of the current tree
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadTree()
}
