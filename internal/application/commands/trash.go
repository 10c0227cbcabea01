package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// TrashCommand moves a live subtree into the recycle bin
type TrashCommand struct {
	env  Env
	Kind string
	Key  string

	kind domain.ItemKind
	key  uuid.UUID
}

// NewTrashCommand creates a new TrashCommand
func NewTrashCommand(env Env, kind, key string) *TrashCommand {
	return &TrashCommand{env: env, Kind: kind, Key: key}
}

// Validate checks if the trash operation is valid
func (c *TrashCommand) Validate() error {
	var err error
	if c.kind, err = application.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.key, err = application.ParseKey("key", c.Key); err != nil {
		return err
	}
	return nil
}

// Execute runs the trash command
func (c *TrashCommand) Execute(ctx context.Context) (*MutationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	svc, err := c.env.service(c.kind)
	if err != nil {
		return nil, err
	}
	if !svc.Tree(false).Contains(c.key) {
		return nil, notFound(c.key, c.kind, false)
	}

	err = c.env.persist(ctx, func(tx ports.NavigationTx) error {
		if err := tx.TrashNode(ctx, c.key); err != nil {
			return fmt.Errorf("failed to trash %s: %w", c.key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reconciled, err := c.env.applied(ctx, svc, svc.MoveToBin(c.key), false, true)
	if err != nil {
		return nil, err
	}

	return &MutationResult{
		Kind:         c.kind,
		Key:          c.key.String(),
		Parent:       application.FormatKey(uuid.Nil),
		Message:      fmt.Sprintf("Moved %s to the %s", c.key, application.TreeName(c.kind, true)),
		NotifyErrors: c.env.notify(ctx, c.kind, false, true),
		Reconciled:   reconciled,
	}, nil
}

// RestoreCommand moves a subtree from the recycle bin back into the live tree
type RestoreCommand struct {
	env    Env
	Kind   string
	Key    string
	Target string // Empty restores to the top level

	kind   domain.ItemKind
	key    uuid.UUID
	target uuid.UUID
}

// NewRestoreCommand creates a new RestoreCommand
func NewRestoreCommand(env Env, kind, key, target string) *RestoreCommand {
	return &RestoreCommand{env: env, Kind: kind, Key: key, Target: target}
}

// Validate checks if the restore operation is valid
func (c *RestoreCommand) Validate() error {
	var err error
	if c.kind, err = application.ParseKind(c.Kind); err != nil {
		return err
	}
	if c.key, err = application.ParseKey("key", c.Key); err != nil {
		return err
	}
	if c.target, err = application.ParseOptionalKey("targetKey", c.Target); err != nil {
		return err
	}
	if c.key == c.target {
		return &application.MoveError{
			SourceKey: c.Key,
			DestKey:   c.Target,
			Reason:    "a node cannot be restored under itself",
		}
	}
	return nil
}

// Execute runs the restore command
func (c *RestoreCommand) Execute(ctx context.Context) (*MutationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	svc, err := c.env.service(c.kind)
	if err != nil {
		return nil, err
	}
	bin, live := svc.Tree(true), svc.Tree(false)
	if !bin.Contains(c.key) {
		return nil, notFound(c.key, c.kind, true)
	}
	if c.target != uuid.Nil && !live.Contains(c.target) {
		return nil, notFound(c.target, c.kind, false)
	}
	subtree, _ := bin.DescendantOrSelfKeys(c.key)
	for _, k := range subtree {
		if live.Contains(k) {
			return nil, &application.MoveError{
				SourceKey: c.key.String(),
				DestKey:   application.FormatKey(c.target),
				Reason:    fmt.Sprintf("%s already exists in the live tree", k),
			}
		}
	}

	err = c.env.persist(ctx, func(tx ports.NavigationTx) error {
		if err := tx.RestoreNode(ctx, c.key, c.target); err != nil {
			return fmt.Errorf("failed to restore %s: %w", c.key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reconciled, err := c.env.applied(ctx, svc, svc.RestoreFromBin(c.key, c.target), false, true)
	if err != nil {
		return nil, err
	}

	return &MutationResult{
		Kind:         c.kind,
		Key:          c.key.String(),
		Parent:       application.FormatKey(c.target),
		Message:      fmt.Sprintf("Restored %s under %s", c.key, application.FormatKey(c.target)),
		NotifyErrors: c.env.notify(ctx, c.kind, false, true),
		Reconciled:   reconciled,
	}, nil
}
