package views

import (
	"github.com/google/uuid"

	"navindex/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// TreeRef names one of the four navigation trees
type TreeRef struct {
	Kind domain.ItemKind
	Bin  bool
}

// Messages for view switching

type SwitchToBrowserMsg struct {
	// Reload asks the browser to rebuild its view of the tree
	Reload bool
}

type SwitchToHelpMsg struct{}

type SwitchToSearchMsg struct {
	Tree TreeRef
}

// SwitchToConfirmMsg asks for confirmation before a destructive action
type SwitchToConfirmMsg struct {
	Action ConfirmAction
	Tree   TreeRef
	Node   *domain.TreeNode
}

// SearchSelectMsg is sent when a search result is chosen
type SearchSelectMsg struct {
	Key uuid.UUID
}

// MutationDoneMsg reports the outcome of a structural change
type MutationDoneMsg struct {
	Message string
	Err     error
}
