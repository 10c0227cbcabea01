package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// MoveCommand re-parents a node inside a live tree
type MoveCommand struct {
	env    Env
	Kind   string
	Key    string
	Target string // Empty moves the node to the top level

	kind   domain.ItemKind
	key    uuid.UUID
	target uuid.UUID
}

// NewMoveCommand creates a new MoveCommand
func NewMoveCommand(env Env, kind, key, target string) *MoveCommand {
	return &MoveCommand{
		env:    env,
		Kind:   kind,
		Key:    key,
		Target: target,
	}
}

// Validate checks if the move operation is valid
func (c *MoveCommand) Validate() error {
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
			Reason:    "a node cannot be its own parent",
		}
	}
	return nil
}

// Execute runs the move command
func (c *MoveCommand) Execute(ctx context.Context) (*MutationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	svc, err := c.env.service(c.kind)
	if err != nil {
		return nil, err
	}
	live := svc.Tree(false)
	if !live.Contains(c.key) {
		return nil, notFound(c.key, c.kind, false)
	}
	if c.target != uuid.Nil {
		if !live.Contains(c.target) {
			return nil, notFound(c.target, c.kind, false)
		}
		if descendants, _ := live.DescendantKeys(c.key); slices.Contains(descendants, c.target) {
			return nil, &application.MoveError{
				SourceKey: c.key.String(),
				DestKey:   c.target.String(),
				Reason:    "target is inside the moved subtree",
			}
		}
	}

	err = c.env.persist(ctx, func(tx ports.NavigationTx) error {
		if err := tx.MoveNode(ctx, c.key, c.target); err != nil {
			return fmt.Errorf("failed to move %s: %w", c.key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reconciled, err := c.env.applied(ctx, svc, svc.Move(c.key, c.target), false)
	if err != nil {
		return nil, err
	}

	return &MutationResult{
		Kind:         c.kind,
		Key:          c.key.String(),
		Parent:       application.FormatKey(c.target),
		Message:      fmt.Sprintf("Moved %s under %s", c.key, application.FormatKey(c.target)),
		NotifyErrors: c.env.notify(ctx, c.kind, false),
		Reconciled:   reconciled,
	}, nil
}
