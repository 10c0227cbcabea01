package domain

import (
	"fmt"
	"strings"
)

// ItemKind identifies which collection of items a navigation tree mirrors
type ItemKind int

const (
	ItemKindUnknown ItemKind = iota
	ItemKindDocument
	ItemKindMedia
)

// ItemKinds lists every indexable kind in a stable order
var ItemKinds = []ItemKind{ItemKindDocument, ItemKindMedia}

func (k ItemKind) String() string {
	switch k {
	case ItemKindDocument:
		return "document"
	case ItemKindMedia:
		return "media"
	default:
		return "unknown"
	}
}

// ParseItemKind parses a kind name ("document", "content", "media")
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "documents", "content":
		return ItemKindDocument, nil
	case "media":
		return ItemKindMedia, nil
	default:
		return ItemKindUnknown, fmt.Errorf("unknown item kind: %q", s)
	}
}

// MarshalText encodes the kind by name
func (k ItemKind) MarshalText() ([]byte, error) {
	if k == ItemKindUnknown {
		return nil, fmt.Errorf("cannot encode unknown item kind")
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *ItemKind) UnmarshalText(text []byte) error {
	parsed, err := ParseItemKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Lock returns the tree lock guarding the persisted structure of this kind
func (k ItemKind) Lock() LockID {
	switch k {
	case ItemKindDocument:
		return LockContentTree
	case ItemKindMedia:
		return LockMediaTree
	default:
		return LockNone
	}
}

// LockID names a consistency-guard resource in the store
type LockID int

const (
	LockNone LockID = iota
	LockContentTree
	LockMediaTree
)

func (l LockID) String() string {
	switch l {
	case LockContentTree:
		return "ContentTree"
	case LockMediaTree:
		return "MediaTree"
	default:
		return "None"
	}
}
