package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// AddCommand inserts a new node into a live tree
type AddCommand struct {
	env         Env
	Kind        string
	Key         string // Generated when empty
	ContentType string
	Parent      string // Empty for a new root

	kind        domain.ItemKind
	key         uuid.UUID
	contentType uuid.UUID
	parent      uuid.UUID
}

// NewAddCommand creates a new AddCommand
func NewAddCommand(env Env, kind, key, contentType, parent string) *AddCommand {
	return &AddCommand{
		env:         env,
		Kind:        kind,
		Key:         key,
		ContentType: contentType,
		Parent:      parent,
	}
}

// Validate checks if the add operation is valid
func (c *AddCommand) Validate() error {
	var err error
	if c.kind, err = application.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.Key != "" {
		if c.key, err = application.ParseKey("key", c.Key); err != nil {
			return err
		}
	}
	if c.contentType, err = application.ParseOptionalKey("contentTypeKey", c.ContentType); err != nil {
		return err
	}
	if c.parent, err = application.ParseOptionalKey("parentKey", c.Parent); err != nil {
		return err
	}
	return nil
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context) (*MutationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.key == uuid.Nil {
		c.key = uuid.New()
	}

	svc, err := c.env.service(c.kind)
	if err != nil {
		return nil, err
	}
	live := svc.Tree(false)
	if live.Contains(c.key) {
		return nil, fmt.Errorf("%w: %s already exists", application.ErrInvalidOperation, c.key)
	}
	if c.parent != uuid.Nil && !live.Contains(c.parent) {
		return nil, notFound(c.parent, c.kind, false)
	}

	var inserted *domain.NavigationRecord
	err = c.env.persist(ctx, func(tx ports.NavigationTx) error {
		var err error
		if inserted, err = tx.InsertNode(ctx, c.kind, c.key, c.contentType, c.parent); err != nil {
			return fmt.Errorf("failed to insert %s: %w", c.key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Mirror the position the store chose so roots order the same way
	// before and after the next rebuild
	var ok bool
	if inserted != nil {
		ok = svc.AddWithSortOrder(c.key, c.contentType, c.parent, inserted.SortOrder)
	} else {
		ok = svc.Add(c.key, c.contentType, c.parent)
	}
	reconciled, err := c.env.applied(ctx, svc, ok, false)
	if err != nil {
		return nil, err
	}

	return &MutationResult{
		Kind:         c.kind,
		Key:          c.key.String(),
		Parent:       application.FormatKey(c.parent),
		Message:      fmt.Sprintf("Added %s under %s", c.key, application.FormatKey(c.parent)),
		NotifyErrors: c.env.notify(ctx, c.kind, false),
		Reconciled:   reconciled,
	}, nil
}
