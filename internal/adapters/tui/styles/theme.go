package styles

import (
	"github.com/charmbracelet/lipgloss"

	"navindex/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")

	// Kind colors
	DocumentColor = lipgloss.Color("#60A5FA") // Blue
	MediaColor    = lipgloss.Color("#EC4899") // Pink

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tree node styles, by position in the tree
	NodeRoot = lipgloss.NewStyle().
			Bold(true)

	NodeBranch = lipgloss.NewStyle().
			Foreground(Secondary)

	NodeLeaf = lipgloss.NewStyle()

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	// Marked for a move or restore
	NodeMarked = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	NodeTrashed = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tree indicators
	TreeBranch    = lipgloss.NewStyle().Foreground(Muted)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "

	// Tree badge in the header
	Badge = lipgloss.NewStyle().
		Foreground(White).
		Padding(0, 1).
		MarginRight(1)

	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SearchMatch = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// KindColor returns the accent color of an item kind
func KindColor(kind domain.ItemKind) lipgloss.Color {
	switch kind {
	case domain.ItemKindDocument:
		return DocumentColor
	case domain.ItemKindMedia:
		return MediaColor
	default:
		return Primary
	}
}

// TreeBadge renders the "document" / "media bin" label of a tree
func TreeBadge(kind domain.ItemKind, trashed bool) string {
	label := kind.String()
	bg := KindColor(kind)
	if trashed {
		label += " bin"
		bg = Muted
	}
	return Badge.Background(bg).Render(label)
}
