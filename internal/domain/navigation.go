package domain

import (
	"time"

	"github.com/google/uuid"
)

// RootParentID is the persisted parent id of a top-level node
const RootParentID int64 = -1

// NavigationRecord is one persisted node as read from the store
type NavigationRecord struct {
	ID             int64     // Store-local numeric id
	Key            uuid.UUID // Identity
	ContentTypeKey uuid.UUID
	ParentID       int64 // RootParentID for roots
	SortOrder      int
	Trashed        bool
}

// IsRoot reports whether the record sits at the top of its tree
func (r NavigationRecord) IsRoot() bool {
	return r.ParentID == RootParentID
}

// RebuildStats holds statistics from a rebuild of one navigation tree
type RebuildStats struct {
	Kind     ItemKind
	Trashed  bool
	Records  int // Records returned by the store
	Nodes    int // Nodes in the rebuilt tree
	Roots    int
	Orphans  int // Records re-rooted because their parent was missing or cyclic
	Skipped  int // Duplicate or nil identities
	Duration time.Duration
}

// RebuildRequest asks every listening process to rebuild a tree
type RebuildRequest struct {
	Kind    ItemKind `json:"kind"`
	Trashed bool     `json:"trashed"`
	Origin  string   `json:"origin,omitempty"`
}
