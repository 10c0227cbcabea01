package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// Relation names a structural query
type Relation string

const (
	RelationParent            Relation = "parent"
	RelationChildren          Relation = "children"
	RelationDescendants       Relation = "descendants"
	RelationDescendantsOrSelf Relation = "descendants-or-self"
	RelationAncestors         Relation = "ancestors"
	RelationAncestorsOrSelf   Relation = "ancestors-or-self"
	RelationSiblings          Relation = "siblings"
	RelationRoots             Relation = "roots"
	RelationLevel             Relation = "level"
)

// Relations lists every supported relation
var Relations = []Relation{
	RelationParent,
	RelationChildren,
	RelationDescendants,
	RelationDescendantsOrSelf,
	RelationAncestors,
	RelationAncestorsOrSelf,
	RelationSiblings,
	RelationRoots,
	RelationLevel,
}

// ParseRelation parses a relation name
func ParseRelation(s string) (Relation, error) {
	r := Relation(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Relations {
		if r == known {
			return r, nil
		}
	}
	return "", &application.ValidationError{
		Field:   "relation",
		Message: fmt.Sprintf("unknown relation: %s", s),
	}
}

// QueryResult contains the answer to a structural query
type QueryResult struct {
	Kind     domain.ItemKind
	Bin      bool
	Relation Relation
	Key      uuid.UUID // uuid.Nil for roots
	Keys     []uuid.UUID
	Level    int // Set for RelationLevel
	Message  string
}

// QueryCommand answers one structural question about a tree
type QueryCommand struct {
	registry    ports.NavigationRegistry
	Kind        string
	Relation    string
	Key         string // Ignored for roots
	ContentType string // Optional content type filter
	Bin         bool

	kind        domain.ItemKind
	relation    Relation
	key         uuid.UUID
	contentType uuid.UUID
}

// NewQueryCommand creates a new QueryCommand
func NewQueryCommand(registry ports.NavigationRegistry, kind, relation, key string, bin bool) *QueryCommand {
	return &QueryCommand{
		registry: registry,
		Kind:     kind,
		Relation: relation,
		Key:      key,
		Bin:      bin,
	}
}

// Validate checks if the query is valid
func (c *QueryCommand) Validate() error {
	var err error
	if c.kind, err = application.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.relation, err = ParseRelation(c.Relation); err != nil {
		return err
	}
	if c.relation != RelationRoots {
		if c.key, err = application.ParseKey("key", c.Key); err != nil {
			return err
		}
	}
	if c.contentType, err = application.ParseOptionalKey("contentTypeKey", c.ContentType); err != nil {
		return err
	}
	if c.contentType != uuid.Nil {
		switch c.relation {
		case RelationParent, RelationLevel, RelationDescendantsOrSelf, RelationAncestorsOrSelf:
			return &application.ValidationError{
				Field:   "contentTypeKey",
				Message: fmt.Sprintf("%s does not support a content type filter", c.relation),
			}
		}
	}
	return nil
}

// Execute runs the query
func (c *QueryCommand) Execute(ctx context.Context) (*QueryResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	svc, ok := c.registry.Service(c.kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrUnknownKind, c.kind)
	}
	tree := svc.Tree(c.Bin)

	result := &QueryResult{
		Kind:     c.kind,
		Bin:      c.Bin,
		Relation: c.relation,
		Key:      c.key,
	}

	var found bool
	switch c.relation {
	case RelationParent:
		var parent uuid.UUID
		if parent, found = tree.ParentKey(c.key); found && parent != uuid.Nil {
			result.Keys = []uuid.UUID{parent}
		}
	case RelationLevel:
		result.Level, found = tree.Level(c.key)
	default:
		result.Keys, found = c.keys(tree)
	}
	if !found {
		return nil, notFound(c.key, c.kind, c.Bin)
	}

	result.Message = c.describe(result)
	return result, nil
}

func (c *QueryCommand) keys(tree ports.NavigationQueries) ([]uuid.UUID, bool) {
	filtered := c.contentType != uuid.Nil
	switch c.relation {
	case RelationChildren:
		if filtered {
			return tree.ChildrenKeysOfType(c.key, c.contentType)
		}
		return tree.ChildrenKeys(c.key)
	case RelationDescendants:
		if filtered {
			return tree.DescendantKeysOfType(c.key, c.contentType)
		}
		return tree.DescendantKeys(c.key)
	case RelationDescendantsOrSelf:
		return tree.DescendantOrSelfKeys(c.key)
	case RelationAncestors:
		if filtered {
			return tree.AncestorKeysOfType(c.key, c.contentType)
		}
		return tree.AncestorKeys(c.key)
	case RelationAncestorsOrSelf:
		return tree.AncestorOrSelfKeys(c.key)
	case RelationSiblings:
		if filtered {
			return tree.SiblingKeysOfType(c.key, c.contentType)
		}
		return tree.SiblingKeys(c.key)
	case RelationRoots:
		if filtered {
			return tree.RootKeysOfType(c.contentType)
		}
		return tree.RootKeys()
	default:
		return nil, false
	}
}

func (c *QueryCommand) describe(r *QueryResult) string {
	tree := application.TreeName(r.Kind, r.Bin)
	switch r.Relation {
	case RelationLevel:
		return fmt.Sprintf("%s is at level %d of the %s tree", r.Key, r.Level, tree)
	case RelationRoots:
		return fmt.Sprintf("%d roots in the %s tree", len(r.Keys), tree)
	case RelationParent:
		if len(r.Keys) == 0 {
			return fmt.Sprintf("%s is a root of the %s tree", r.Key, tree)
		}
		return fmt.Sprintf("parent of %s is %s", r.Key, r.Keys[0])
	default:
		return fmt.Sprintf("%d %s of %s", len(r.Keys), r.Relation, r.Key)
	}
}
