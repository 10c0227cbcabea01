package application

import (
	"github.com/google/uuid"

	"navindex/internal/domain"
)

// Re-export domain types for use by adapters
type (
	ItemKind       = domain.ItemKind
	TreeNode       = domain.TreeNode
	RebuildStats   = domain.RebuildStats
	RebuildRequest = domain.RebuildRequest
)

const (
	ItemKindDocument = domain.ItemKindDocument
	ItemKindMedia    = domain.ItemKindMedia
)

// TreeName returns the display name of a live or bin tree
func TreeName(kind domain.ItemKind, trashed bool) string {
	if trashed {
		return kind.String() + " bin"
	}
	return kind.String()
}

// FormatKey renders a key for output, "-" for the top level
func FormatKey(key uuid.UUID) string {
	if key == uuid.Nil {
		return "-"
	}
	return key.String()
}
