package commands

import (
	"context"
	"fmt"

	"navindex/internal/application"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// Env is what every command runs against. Writer and Notifier are
// optional: without a writer changes stay in memory, without a notifier
// other processes are not told to rebuild.
type Env struct {
	Registry ports.NavigationRegistry
	Writer   ports.NavigationWriter
	Notifier ports.RebuildNotifier
	Origin   string // Identifies this process in published rebuild requests
}

func (e Env) service(kind domain.ItemKind) (ports.NavigationService, error) {
	if e.Registry == nil {
		return nil, fmt.Errorf("no navigation registry configured")
	}
	svc, ok := e.Registry.Service(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrUnknownKind, kind)
	}
	return svc, nil
}

// persist runs fn in a store transaction when a writer is configured.
func (e Env) persist(ctx context.Context, fn func(tx ports.NavigationTx) error) error {
	if e.Writer == nil {
		return nil
	}
	tx, err := e.Writer.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notify asks other processes to rebuild the given trees of kind.
// Publishing is best effort: the local change has already been applied.
func (e Env) notify(ctx context.Context, kind domain.ItemKind, trashed ...bool) []error {
	if e.Notifier == nil {
		return nil
	}
	var errs []error
	for _, t := range trashed {
		req := domain.RebuildRequest{Kind: kind, Trashed: t, Origin: e.Origin}
		if err := e.Notifier.Publish(ctx, req); err != nil {
			errs = append(errs, fmt.Errorf("publish rebuild request: %w", err))
		}
	}
	return errs
}

// reconcile reloads a tree after the store and the index disagreed, which
// happens when another writer changed the tree between check and apply.
func reconcile(ctx context.Context, svc ports.NavigationService, trashed bool) error {
	var err error
	if trashed {
		_, err = svc.RebuildBin(ctx)
	} else {
		_, err = svc.Rebuild(ctx)
	}
	return err
}

// MutationResult is returned by every structural command
type MutationResult struct {
	Kind         domain.ItemKind
	Key          string
	Parent       string
	Message      string
	NotifyErrors []error // Rebuild requests that could not be published
	Reconciled   bool    // The tree was reloaded from the store after a conflict
}

// applied finishes a mutation that has already been persisted. When the
// index refused the change the affected trees are reloaded from the store.
// It reports whether a reload happened.
func (e Env) applied(ctx context.Context, svc ports.NavigationService, ok bool, trees ...bool) (bool, error) {
	if ok {
		return false, nil
	}
	if e.Writer == nil {
		return false, fmt.Errorf("%w: tree changed concurrently", application.ErrInvalidOperation)
	}
	for _, trashed := range trees {
		if err := reconcile(ctx, svc, trashed); err != nil {
			return false, fmt.Errorf("failed to reload %s tree: %w", application.TreeName(svc.Kind(), trashed), err)
		}
	}
	return true, nil
}

func notFound(key fmt.Stringer, kind domain.ItemKind, trashed bool) error {
	return &application.NotFoundError{Key: key.String(), Tree: application.TreeName(kind, trashed)}
}
