package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// RemoveCommand deletes a node and its subtree, from the live tree or,
// when Bin is set, permanently from the recycle bin
type RemoveCommand struct {
	env  Env
	Kind string
	Key  string
	Bin  bool

	kind domain.ItemKind
	key  uuid.UUID
}

// NewRemoveCommand creates a RemoveCommand for the live tree
func NewRemoveCommand(env Env, kind, key string) *RemoveCommand {
	return &RemoveCommand{env: env, Kind: kind, Key: key}
}

// NewPurgeCommand creates a RemoveCommand for the recycle bin
func NewPurgeCommand(env Env, kind, key string) *RemoveCommand {
	return &RemoveCommand{env: env, Kind: kind, Key: key, Bin: true}
}

// Validate checks if the remove operation is valid
func (c *RemoveCommand) Validate() error {
	var err error
	if c.kind, err = application.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.key, err = application.ParseKey("key", c.Key); err != nil {
		return err
	}
	return nil
}

// Execute runs the remove command
func (c *RemoveCommand) Execute(ctx context.Context) (*MutationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	svc, err := c.env.service(c.kind)
	if err != nil {
		return nil, err
	}
	tree := svc.Tree(c.Bin)
	if !tree.Contains(c.key) {
		return nil, notFound(c.key, c.kind, c.Bin)
	}
	descendants, _ := tree.DescendantKeys(c.key)

	err = c.env.persist(ctx, func(tx ports.NavigationTx) error {
		if err := tx.DeleteNode(ctx, c.key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", c.key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var ok bool
	if c.Bin {
		ok = svc.RemoveFromBin(c.key)
	} else {
		ok = svc.Remove(c.key)
	}
	reconciled, err := c.env.applied(ctx, svc, ok, c.Bin)
	if err != nil {
		return nil, err
	}

	verb := "Removed"
	if c.Bin {
		verb = "Purged"
	}
	return &MutationResult{
		Kind:         c.kind,
		Key:          c.key.String(),
		Message:      fmt.Sprintf("%s %s and %d descendants", verb, c.key, len(descendants)),
		NotifyErrors: c.env.notify(ctx, c.kind, c.Bin),
		Reconciled:   reconciled,
	}, nil
}
