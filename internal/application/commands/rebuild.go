package commands

import (
	"context"
	"fmt"
	"time"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// RebuildResult contains the outcome of reloading one or more trees
type RebuildResult struct {
	Stats        []domain.RebuildStats
	NotifyErrors []error
	Message      string
}

// RebuildCommand reloads trees from the store. With All set every tree of
// every kind is rebuilt and Kind and Bin are ignored.
type RebuildCommand struct {
	env       Env
	Kind      string
	Bin       bool
	All       bool
	Broadcast bool // Also ask other processes to rebuild
}

// NewRebuildCommand creates a RebuildCommand for one tree
func NewRebuildCommand(env Env, kind string, bin bool) *RebuildCommand {
	return &RebuildCommand{env: env, Kind: kind, Bin: bin}
}

// NewRebuildAllCommand creates a RebuildCommand for every tree
func NewRebuildAllCommand(env Env) *RebuildCommand {
	return &RebuildCommand{env: env, All: true}
}

// Validate checks if the rebuild request is valid
func (c *RebuildCommand) Validate() error {
	if c.All {
		return nil
	}
	_, err := application.ParseKind(c.Kind)
	return err
}

// Execute runs the rebuild command. Trees are rebuilt one after the other;
// the first failure stops the run.
func (c *RebuildCommand) Execute(ctx context.Context) (*RebuildResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	type target struct {
		svc     ports.NavigationService
		trashed bool
	}
	var targets []target
	if c.All {
		for _, svc := range c.env.Registry.Services() {
			targets = append(targets, target{svc, false}, target{svc, true})
		}
	} else {
		kind, _ := application.ParseKind(c.Kind)
		svc, err := c.env.service(kind)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{svc, c.Bin})
	}

	start := time.Now()
	result := &RebuildResult{}
	for _, t := range targets {
		var (
			stats *domain.RebuildStats
			err   error
		)
		if t.trashed {
			stats, err = t.svc.RebuildBin(ctx)
		} else {
			stats, err = t.svc.Rebuild(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild %s tree: %w", application.TreeName(t.svc.Kind(), t.trashed), err)
		}
		result.Stats = append(result.Stats, *stats)

		if c.Broadcast {
			result.NotifyErrors = append(result.NotifyErrors, c.env.notify(ctx, t.svc.Kind(), t.trashed)...)
		}
	}

	nodes := 0
	for _, s := range result.Stats {
		nodes += s.Nodes
	}
	result.Message = fmt.Sprintf("Rebuilt %d trees (%d nodes) in %s", len(result.Stats), nodes, time.Since(start).Round(time.Millisecond))
	return result, nil
}

// BootstrapResult contains the outcome of the startup rebuild
type BootstrapResult struct {
	AlreadyReady bool
	Message      string
}

// BootstrapCommand runs the one-shot startup rebuild of every tree
type BootstrapCommand struct {
	bootstrapper ports.NavigationBootstrapper
}

// NewBootstrapCommand creates a new BootstrapCommand
func NewBootstrapCommand(bootstrapper ports.NavigationBootstrapper) *BootstrapCommand {
	return &BootstrapCommand{bootstrapper: bootstrapper}
}

// Execute runs the bootstrap command
func (c *BootstrapCommand) Execute(ctx context.Context) (*BootstrapResult, error) {
	if c.bootstrapper.Ready() {
		return &BootstrapResult{AlreadyReady: true, Message: "Navigation already loaded"}, nil
	}
	if err := c.bootstrapper.Run(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", application.ErrNotReady, err)
	}
	return &BootstrapResult{Message: "Navigation loaded"}, nil
}
