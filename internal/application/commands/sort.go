package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// SortCommand changes the position of a live node among its siblings
type SortCommand struct {
	env       Env
	Kind      string
	Key       string
	SortOrder int

	kind domain.ItemKind
	key  uuid.UUID
}

// NewSortCommand creates a new SortCommand
func NewSortCommand(env Env, kind, key string, sortOrder int) *SortCommand {
	return &SortCommand{env: env, Kind: kind, Key: key, SortOrder: sortOrder}
}

// Validate checks if the sort operation is valid
func (c *SortCommand) Validate() error {
	var err error
	if c.kind, err = application.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.key, err = application.ParseKey("key", c.Key); err != nil {
		return err
	}
	if c.SortOrder < 0 {
		return &application.ValidationError{Field: "sortOrder", Message: "must not be negative"}
	}
	return nil
}

// Execute runs the sort command
func (c *SortCommand) Execute(ctx context.Context) (*MutationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	svc, err := c.env.service(c.kind)
	if err != nil {
		return nil, err
	}
	live := svc.Tree(false)
	parent, ok := live.ParentKey(c.key)
	if !ok {
		return nil, notFound(c.key, c.kind, false)
	}

	err = c.env.persist(ctx, func(tx ports.NavigationTx) error {
		if err := tx.SetSortOrder(ctx, c.key, c.SortOrder); err != nil {
			return fmt.Errorf("failed to reorder %s: %w", c.key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reconciled, err := c.env.applied(ctx, svc, svc.UpdateSortOrder(c.key, c.SortOrder), false)
	if err != nil {
		return nil, err
	}

	return &MutationResult{
		Kind:         c.kind,
		Key:          c.key.String(),
		Parent:       application.FormatKey(parent),
		Message:      fmt.Sprintf("Set sort order of %s to %d", c.key, c.SortOrder),
		NotifyErrors: c.env.notify(ctx, c.kind, false),
		Reconciled:   reconciled,
	}, nil
}
