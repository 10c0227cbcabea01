package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"navindex/internal/application/commands"
	"navindex/internal/domain"
	"navindex/internal/navigation"
)

var (
	keyA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	keyB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	keyC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	keyD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")

	pageType = uuid.MustParse("11111111-0000-0000-0000-000000000002")
)

// newTestEnv builds a document tree A -> (B -> C), D.
func newTestEnv(t *testing.T) (commands.Env, *navigation.Registry) {
	t.Helper()
	r := navigation.NewRegistry()
	docs, _ := r.Lookup(domain.ItemKindDocument, false)
	for _, add := range []struct{ key, parent uuid.UUID }{
		{keyA, uuid.Nil},
		{keyB, keyA},
		{keyC, keyB},
		{keyD, uuid.Nil},
	} {
		if !docs.Add(add.key, pageType, add.parent) {
			t.Fatalf("failed to add %s", add.key)
		}
	}
	return commands.Env{Registry: r}, r
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// feed runs cmd and hands its message to the model, returning the follow-up command.
func feed(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	_, next := m.Update(cmd())
	return next
}

func press(m *BrowserModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyPress(k))
	}
	return cmd
}

func loadedBrowser(t *testing.T) (*BrowserModel, *navigation.Registry) {
	t.Helper()
	env, r := newTestEnv(t)
	m := NewBrowserModel(env)
	m.SetSize(80, 40)
	feed(t, m, m.Init())
	return m, r
}

func visibleKeys(m *BrowserModel) []uuid.UUID {
	keys := make([]uuid.UUID, len(m.flatNodes))
	for i, n := range m.flatNodes {
		keys[i] = n.Key
	}
	return keys
}

func TestBrowser_LoadShowsCollapsedRoots(t *testing.T) {
	m, _ := loadedBrowser(t)

	got := visibleKeys(m)
	if len(got) != 2 || got[0] != keyA || got[1] != keyD {
		t.Fatalf("expected roots [A D], got %v", got)
	}

	view := m.View()
	if !strings.Contains(view, keyA.String()+" (1)") {
		t.Error("expected collapsed root with child count in view")
	}
	if !strings.Contains(view, "4 nodes, 2 roots") {
		t.Error("expected node summary in view")
	}
}

func TestBrowser_ExpandCollapseAndParentJump(t *testing.T) {
	m, _ := loadedBrowser(t)

	press(m, "l", "j", "l")
	got := visibleKeys(m)
	want := []uuid.UUID{keyA, keyB, keyC, keyD}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// On C (a leaf) h jumps to the parent, then collapses it
	press(m, "j", "h")
	if n := m.selectedNode(); n == nil || n.Key != keyB {
		t.Fatalf("expected cursor on B, got %v", n)
	}
	press(m, "h")
	if len(m.flatNodes) != 3 {
		t.Errorf("expected B collapsed, got %v", visibleKeys(m))
	}
}

func TestBrowser_ExpansionSurvivesReload(t *testing.T) {
	m, _ := loadedBrowser(t)

	press(m, "l")
	feed(t, m, m.Reload())

	if len(m.flatNodes) != 3 {
		t.Errorf("expected A to stay expanded after reload, got %v", visibleKeys(m))
	}
}

func TestBrowser_MarkAndPasteMovesNode(t *testing.T) {
	m, r := loadedBrowser(t)

	press(m, "j", "m")
	if m.marked == nil || m.marked.key != keyD {
		t.Fatal("expected D to be marked")
	}
	cmd := press(m, "k", "p")

	// Mutation result, then the reload it triggers
	reload := feed(t, m, cmd)
	if m.MessageErr {
		t.Fatalf("unexpected error: %s", m.Message)
	}
	feed(t, m, reload)

	docs, _ := r.Lookup(domain.ItemKindDocument, false)
	if parent, _ := docs.ParentKey(keyD); parent != keyA {
		t.Errorf("expected D under A, got %s", parent)
	}
	if n := m.selectedNode(); n == nil || n.Key != keyD {
		t.Errorf("expected cursor to follow the moved node, got %v", n)
	}
	if m.marked != nil {
		t.Error("expected mark cleared after paste")
	}
}

func TestBrowser_PasteRequiresMark(t *testing.T) {
	m, _ := loadedBrowser(t)

	if cmd := press(m, "p"); cmd != nil {
		t.Error("expected no command without a mark")
	}
	if !m.MessageErr || !strings.Contains(m.Message, "Nothing marked") {
		t.Errorf("unexpected message %q", m.Message)
	}
}

func TestBrowser_TrashAndRestore(t *testing.T) {
	m, r := loadedBrowser(t)

	msg := press(m, "d")()
	confirm, ok := msg.(SwitchToConfirmMsg)
	if !ok {
		t.Fatalf("expected SwitchToConfirmMsg, got %T", msg)
	}
	if confirm.Action != ActionTrash || confirm.Node.Key != keyA {
		t.Fatalf("unexpected confirm request %+v", confirm)
	}

	c := NewConfirmModel(m.env)
	c.SetTarget(confirm.Action, confirm.Tree, confirm.Node)
	if !strings.Contains(c.View(), "and 2 descendants") {
		t.Error("expected descendant count in confirmation")
	}
	_, cmd := c.Update(keyPress("y"))
	done, ok := cmd().(MutationDoneMsg)
	if !ok || done.Err != nil {
		t.Fatalf("expected successful trash, got %+v", done)
	}

	bin, _ := r.Lookup(domain.ItemKindDocument, true)
	if !bin.Contains(keyC) {
		t.Fatal("expected subtree in the bin")
	}

	// Switch to the bin and restore A to the top level
	feed(t, m, press(m, "tab"))
	if !m.Tree().Bin || len(m.flatNodes) != 1 {
		t.Fatalf("expected bin with one root, got %v", visibleKeys(m))
	}
	if msg := press(m, "d")(); msg.(SwitchToConfirmMsg).Action != ActionPurge {
		t.Error("expected d to purge in the bin")
	}
	feed(t, m, press(m, "u"))
	if bin.Len() != 0 {
		t.Errorf("expected empty bin after restore, got %d", bin.Len())
	}
}

func TestBrowser_PasteIntoBinRejected(t *testing.T) {
	m, _ := loadedBrowser(t)

	press(m, "m")
	feed(t, m, press(m, "tab"))
	if cmd := press(m, "P"); cmd != nil {
		t.Error("expected paste into the bin to be refused")
	}
	if !m.MessageErr {
		t.Error("expected an error message")
	}
}

func TestBrowser_SwitchKind(t *testing.T) {
	m, _ := loadedBrowser(t)

	feed(t, m, press(m, "K"))
	if m.Tree().Kind != domain.ItemKindMedia {
		t.Fatalf("expected media tree, got %s", m.Tree().Kind)
	}
	if len(m.flatNodes) != 0 || !strings.Contains(m.View(), "No nodes") {
		t.Error("expected empty media tree")
	}

	feed(t, m, press(m, "K"))
	if m.Tree().Kind != domain.ItemKindDocument {
		t.Errorf("expected kinds to wrap around, got %s", m.Tree().Kind)
	}
}

func TestBrowser_StaleLoadIgnored(t *testing.T) {
	m, _ := loadedBrowser(t)

	stale := m.Reload()
	press(m, "K") // switch away before the load lands
	m.Update(stale())
	if m.root != nil {
		t.Error("expected load for the previous tree to be dropped")
	}
}

func TestBrowser_Reveal(t *testing.T) {
	m, _ := loadedBrowser(t)

	if !m.Reveal(keyC) {
		t.Fatal("expected C to be revealed")
	}
	if n := m.selectedNode(); n == nil || n.Key != keyC {
		t.Errorf("expected cursor on C, got %v", n)
	}
	if m.Reveal(uuid.New()) {
		t.Error("expected unknown key not to be revealed")
	}
}

func TestNextKind(t *testing.T) {
	if got := nextKind(domain.ItemKindDocument); got != domain.ItemKindMedia {
		t.Errorf("expected media, got %s", got)
	}
	if got := nextKind(domain.ItemKindUnknown); got != domain.ItemKindDocument {
		t.Errorf("expected document, got %s", got)
	}
}
